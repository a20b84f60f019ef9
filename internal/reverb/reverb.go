// Package reverb detects ReVerb relational phrases in Penn Treebank tagged
// text (Fader, Soderland and Etzioni, "Identifying Relations for Open
// Information Extraction").
//
// A relational phrase matches V | V P | V W* P where
//
//	V = verb particle? adv?
//	W = noun | adj | adv | pron | det
//	P = prep | particle | inf. marker
package reverb

import (
	"strings"

	"github.com/todmy/snowball/internal/relation"
)

type tagSet map[string]struct{}

func newTagSet(tags ...string) tagSet {
	s := make(tagSet, len(tags))
	for _, t := range tags {
		s[t] = struct{}{}
	}
	return s
}

func (s tagSet) has(tag string) bool {
	_, ok := s[tag]
	return ok
}

var (
	verbs       = newTagSet("VB", "VBD", "VBD|VBN", "VBG", "VBG|NN", "VBN", "VBP", "VBP|TO", "VBZ", "VP")
	adverbs     = newTagSet("RB", "RBR", "RBS", "RB|RP", "RB|VBG", "WRB")
	particles   = newTagSet("POS", "PRT", "TO", "RP")
	nouns       = newTagSet("NN", "NNP", "NNPS", "NNS", "NN|NNS", "NN|SYM", "NN|VBG", "NP")
	adjectives  = newTagSet("JJ", "JJR", "JJRJR", "JJS", "JJ|RB", "JJ|VBG")
	pronouns    = newTagSet("WP", "WP$", "PRP", "PRP$", "PRP|VBP")
	determiners = newTagSet("DT", "EX", "PDT", "WDT")
	adpositions = newTagSet("IN", "IN|RP")
)

func isVerbGroup(tag string) bool {
	return verbs.has(tag) || adverbs.has(tag) || particles.has(tag)
}

func isWord(tag string) bool {
	return nouns.has(tag) || adjectives.has(tag) || adverbs.has(tag) || pronouns.has(tag) || determiners.has(tag)
}

func isPreposition(tag string) bool {
	return adpositions.has(tag) || particles.has(tag)
}

// Phrases returns every relational phrase found in tokens, in text order.
func Phrases(tokens []relation.TaggedToken) [][]relation.TaggedToken {
	var phrases [][]relation.TaggedToken

	for i := 0; i < len(tokens); i++ {
		if !verbs.has(tokens[i].Tag) {
			continue
		}

		start := i
		i++
		for i < len(tokens) && isVerbGroup(tokens[i].Tag) {
			i++
		}
		for i < len(tokens) && isWord(tokens[i].Tag) {
			i++
		}
		for i < len(tokens) && isPreposition(tokens[i].Tag) {
			i++
		}

		phrase := make([]relation.TaggedToken, i-start)
		copy(phrase, tokens[start:i])
		phrases = append(phrases, phrase)
		// the token that ended the phrase is skipped by the loop increment
	}

	return phrases
}

// Extract merges all relational phrases of tokens into a single phrase, so
// that adjacent verb groups such as "wants to extend" form one relation.
// Returns nil when no phrase is found.
func Extract(tokens []relation.TaggedToken) []relation.TaggedToken {
	var merged []relation.TaggedToken
	for _, p := range Phrases(tokens) {
		merged = append(merged, p...)
	}
	return merged
}

// beForms are the inflections of the auxiliary "be".
var beForms = map[string]bool{
	"be": true, "am": true, "is": true, "are": true, "was": true,
	"were": true, "been": true, "being": true,
}

func isPastVerb(tag string) bool {
	return tag == "VBN" || tag == "VBD"
}

// endsWithPastBy reports whether the phrase ends in "<past verb> by".
func endsWithPastBy(p []relation.TaggedToken) bool {
	n := len(p)
	return n >= 2 && isPastVerb(p[n-2].Tag) && p[n-1].Word == "by"
}

// IsPassive detects the passive voice in a relational phrase:
// "be" + past verb + ... + "by", or a past verb directly followed by "by".
func IsPassive(p []relation.TaggedToken) bool {
	switch {
	case len(p) >= 3:
		if !strings.HasPrefix(p[0].Tag, "V") {
			return false
		}
		if beForms[strings.ToLower(p[0].Word)] && isPastVerb(p[1].Tag) && p[len(p)-1].Word == "by" {
			return true
		}
		return endsWithPastBy(p)
	case len(p) == 2:
		return endsWithPastBy(p)
	}
	return false
}

// Voice classifies the between context of a tuple. It reports
// VoiceUnknown when the context holds no relational phrase.
func Voice(between []relation.TaggedToken) relation.Voice {
	phrase := Extract(between)
	if len(phrase) == 0 {
		return relation.VoiceUnknown
	}
	if IsPassive(phrase) {
		return relation.VoicePassive
	}
	return relation.VoiceActive
}
