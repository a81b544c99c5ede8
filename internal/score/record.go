package score

import (
	"fmt"
	"math"

	"github.com/avoelkl/mietscout/internal/rubric"
)

const (
	// NeutralScore is substituted for criteria the model response does not
	// cover. Missing evidence is not negative evidence.
	NeutralScore = 50

	// DefaultReasoning is used when the response carries no reasoning field.
	DefaultReasoning = "No reasoning provided"

	// FallbackReasoning is set on records produced by the keyword scorer.
	FallbackReasoning = "Emergency keyword parsing - model response was not valid JSON"

	// RedFlagFallback marks records produced by the keyword fallback scorer.
	RedFlagFallback = "PARSING_ERROR"

	// RedFlagEvaluationError marks records produced after a failed model call.
	RedFlagEvaluationError = "AI_EVALUATION_ERROR"
)

// Record is the structured result of one applicant evaluation. It is created
// once and never mutated afterwards.
type Record struct {
	PerCriterion map[string]float64
	Total        float64
	BonusPoints  int
	Reasoning    string
	RedFlags     []string
}

// Criterion returns the stored value for the named criterion, zero when the
// record does not carry it.
func (r *Record) Criterion(name string) float64 {
	if r == nil {
		return 0
	}
	return r.PerCriterion[name]
}

// Flagged reports whether the record carries the given red flag.
func (r *Record) Flagged(flag string) bool {
	if r == nil {
		return false
	}
	for _, f := range r.RedFlags {
		if f == flag {
			return true
		}
	}
	return false
}

// WeightedTotal aggregates per-criterion values into the overall score:
// sum of value*weight/100 over the rubric, plus bonus points, capped at 100,
// floored at 0, rounded to one decimal.
func WeightedTotal(r *rubric.Rubric, per map[string]float64, bonus int) float64 {
	var sum float64
	for _, c := range r.Criteria {
		sum += per[c.Name] * float64(c.Weight) / 100
	}

	total := sum + float64(bonus)
	if total > 100 {
		total = 100
	}
	if total < 0 {
		total = 0
	}

	return round1(total)
}

// ErrorRecord is the sentinel record for a failed model call: every criterion
// and the total at zero, flagged so the ledger and reports can tell these
// apart from genuinely weak applications.
func ErrorRecord(r *rubric.Rubric, cause error) *Record {
	per := make(map[string]float64, len(r.Criteria))
	for _, c := range r.Criteria {
		per[c.Name] = 0
	}

	reasoning := "Error during evaluation"
	if cause != nil {
		reasoning = fmt.Sprintf("Error during evaluation: %v", cause)
	}

	return &Record{
		PerCriterion: per,
		Total:        0,
		BonusPoints:  0,
		Reasoning:    reasoning,
		RedFlags:     []string{RedFlagEvaluationError},
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
