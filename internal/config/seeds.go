package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/todmy/snowball/internal/relation"
)

// SeedFile is the content of a seed file: the declared entity types and
// the seed pairs in file order.
type SeedFile struct {
	E1Type string
	E2Type string
	Seeds  []relation.Seed
}

// ReadSeeds parses a seed file:
//
//	# comment
//	e1:ORG
//	e2:LOC
//	Nokia;Espoo
//
// Blank lines and lines starting with # are ignored. Both sides of a seed
// are trimmed. Extra ;-separated fields are ignored.
func ReadSeeds(r io.Reader) (*SeedFile, error) {
	sf := &SeedFile{}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}

		switch {
		case strings.HasPrefix(line, "e1:"):
			sf.E1Type = strings.TrimSpace(strings.TrimPrefix(line, "e1:"))
		case strings.HasPrefix(line, "e2:"):
			sf.E2Type = strings.TrimSpace(strings.TrimPrefix(line, "e2:"))
		default:
			parts := strings.Split(line, ";")
			if len(parts) < 2 {
				return nil, fmt.Errorf("%w: line %d: %q", ErrMalformedSeed, lineNo, line)
			}
			e1 := strings.TrimSpace(parts[0])
			e2 := strings.TrimSpace(parts[1])
			if e1 == "" || e2 == "" {
				return nil, fmt.Errorf("%w: line %d: empty entity", ErrMalformedSeed, lineNo)
			}
			sf.Seeds = append(sf.Seeds, relation.NewSeed(e1, e2))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read seeds: %w", err)
	}

	return sf, nil
}

// ReadSeedsFile reads and parses the seed file at path.
func ReadSeedsFile(path string) (*SeedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seeds: %w", err)
	}
	defer f.Close()

	sf, err := ReadSeeds(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sf, nil
}

// Set returns the seeds as an insertion-ordered set.
func (sf *SeedFile) Set() *relation.SeedSet {
	return relation.NewSeedSet(sf.Seeds...)
}

// ApplyTypes copies the declared entity types into the configuration.
// A later seed file overrides types set by an earlier one. It fails when
// either type is still undeclared afterwards.
func (c *Config) ApplyTypes(files ...*SeedFile) error {
	for _, sf := range files {
		if sf == nil {
			continue
		}
		if sf.E1Type != "" {
			c.E1Type = sf.E1Type
		}
		if sf.E2Type != "" {
			c.E2Type = sf.E2Type
		}
	}
	if c.E1Type == "" || c.E2Type == "" {
		return ErrMissingEntityType
	}
	return nil
}
