package relation

// Seed is a trusted entity pair asserted to hold the target relation.
// It is a comparable value: equality and map hashing are by the pair.
type Seed struct {
	E1 string
	E2 string
}

// NewSeed creates a seed
func NewSeed(e1, e2 string) Seed {
	return Seed{E1: e1, E2: e2}
}

func (s Seed) String() string {
	return s.E1 + ";" + s.E2
}

// SeedSet is a set of seeds that remembers insertion order, so that
// iterating it is deterministic across runs.
type SeedSet struct {
	index map[Seed]struct{}
	order []Seed
}

// NewSeedSet creates a set holding the given seeds; duplicates collapse.
func NewSeedSet(seeds ...Seed) *SeedSet {
	s := &SeedSet{index: make(map[Seed]struct{}, len(seeds))}
	for _, seed := range seeds {
		s.Add(seed)
	}
	return s
}

// Add inserts a seed and reports whether it was new.
func (s *SeedSet) Add(seed Seed) bool {
	if _, ok := s.index[seed]; ok {
		return false
	}
	s.index[seed] = struct{}{}
	s.order = append(s.order, seed)
	return true
}

// Contains reports whether the exact pair is in the set.
func (s *SeedSet) Contains(seed Seed) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[seed]
	return ok
}

// Len returns the number of seeds. A nil set is empty.
func (s *SeedSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Seeds returns the seeds in insertion order.
func (s *SeedSet) Seeds() []Seed {
	if s == nil {
		return nil
	}
	out := make([]Seed, len(s.order))
	copy(out, s.order)
	return out
}

// Clone returns an independent copy of the set.
func (s *SeedSet) Clone() *SeedSet {
	if s == nil {
		return NewSeedSet()
	}
	return NewSeedSet(s.order...)
}
