package report

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/todmy/snowball/pkg/models"
)

// WriteRelationships writes one block per relationship in the given order:
//
//	instance: <e1>\t<e2>\tscore:<confidence>
//	sentence: <sentence>
//	passive voice: True|False
//
// followed by a blank line.
func WriteRelationships(w io.Writer, rels []models.Relationship) error {
	bw := bufio.NewWriter(w)
	for _, r := range rels {
		fmt.Fprintf(bw, "instance: %s\t%s\tscore:%s\n", r.E1, r.E2, FormatScore(r.Confidence))
		fmt.Fprintf(bw, "sentence: %s\n", r.Sentence)
		if r.PassiveVoice {
			bw.WriteString("passive voice: True\n")
		} else {
			bw.WriteString("passive voice: False\n")
		}
		bw.WriteString("\n")
	}
	return bw.Flush()
}

// FormatScore prints a confidence with the shortest representation that
// round-trips, always keeping a decimal point: 1 is "1.0", 0.5 is "0.5".
func FormatScore(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if strings.ContainsAny(s, ".eEnN") {
		return s
	}
	return s + ".0"
}

// PatternReport is the YAML document written by WritePatterns
type PatternReport struct {
	Iterations []models.IterationSummary `yaml:"iterations,omitempty"`
	Patterns   []models.PatternSummary   `yaml:"patterns"`
}

// WritePatterns writes the pattern selectivity report as YAML
func WritePatterns(w io.Writer, iterations []models.IterationSummary, patterns []models.PatternSummary) error {
	if patterns == nil {
		patterns = []models.PatternSummary{}
	}
	out, err := yaml.Marshal(PatternReport{Iterations: iterations, Patterns: patterns})
	if err != nil {
		return fmt.Errorf("failed to encode patterns: %w", err)
	}
	_, err = w.Write(out)
	return err
}
