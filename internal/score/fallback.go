package score

import (
	"strings"
	"unicode"

	"github.com/avoelkl/mietscout/internal/rubric"
)

// FallbackParse scores the raw response text with the rubric's keyword
// lexicons. Every criterion starts at the neutral score; positive terms raise
// it to the criterion's boost value, negative terms lower it to the penalty
// value. It never fails.
func FallbackParse(text string, r *rubric.Rubric) *Record {
	lower := strings.ToLower(text)
	words := tokenize(lower)

	per := make(map[string]float64, len(r.Criteria))
	for _, c := range r.Criteria {
		value := float64(NeutralScore)

		if lex, ok := r.Lexicon(c.Name); ok {
			if containsAny(lower, lex.Positive) {
				value = lex.Boost
			}
			// The negative check runs independently and overrides a positive
			// boost. Negative terms match whole words only: a compound like
			// "nichtraucher" must not trip its own "raucher" negation.
			if containsNegative(lower, words, lex.Negative) {
				value = lex.Penalty
			}
		}

		per[c.Name] = clampScore(value)
	}

	return &Record{
		PerCriterion: per,
		Total:        WeightedTotal(r, per, 0),
		BonusPoints:  0,
		Reasoning:    FallbackReasoning,
		RedFlags:     []string{RedFlagFallback},
	}
}

func containsAny(lower string, terms []string) bool {
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" && strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

func containsNegative(lower string, words map[string]bool, terms []string) bool {
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		// Multi-word terms cannot be matched against single tokens.
		if strings.Contains(term, " ") {
			if strings.Contains(lower, term) {
				return true
			}
			continue
		}
		if words[term] {
			return true
		}
	}
	return false
}

func tokenize(lower string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	}) {
		words[w] = true
	}
	return words
}
