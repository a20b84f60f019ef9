package models

// Relationship is one extracted relation instance
type Relationship struct {
	E1           string  `json:"e1" yaml:"e1"`
	E2           string  `json:"e2" yaml:"e2"`
	Confidence   float64 `json:"confidence" yaml:"confidence"`
	Sentence     string  `json:"sentence" yaml:"sentence"`
	PassiveVoice bool    `json:"passive_voice" yaml:"passive_voice"`
}

// Keyword is a weighted centroid term
type Keyword struct {
	Word   string  `json:"word" yaml:"word"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// PatternSummary describes a pattern's support and confidence
type PatternSummary struct {
	ID             int       `json:"id" yaml:"id"`
	Size           int       `json:"size" yaml:"size"`
	Positive       int       `json:"positive" yaml:"positive"`
	Negative       int       `json:"negative" yaml:"negative"`
	Unknown        int       `json:"unknown" yaml:"unknown"`
	Confidence     float64   `json:"confidence" yaml:"confidence"`
	BetweenPhrases []string  `json:"between_phrases" yaml:"between_phrases"`
	Keywords       []Keyword `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

// IterationSummary records what one bootstrapping iteration produced
type IterationSummary struct {
	Iteration  int `json:"iteration" yaml:"iteration"`
	Seeds      int `json:"seeds" yaml:"seeds"`
	Matches    int `json:"matches" yaml:"matches"`
	Patterns   int `json:"patterns" yaml:"patterns"`
	Candidates int `json:"candidates" yaml:"candidates"`
	Promoted   int `json:"promoted" yaml:"promoted"`
}
