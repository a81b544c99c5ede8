package score

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/avoelkl/mietscout/internal/rubric"
)

// Outcome is the result of one parse attempt. NeedsFallback marks responses
// whose payload could not be decoded at all; the caller routes the original
// text to FallbackParse. A decodable response always yields a Record, even
// when every field is missing.
type Outcome struct {
	Record        *Record
	NeedsFallback bool
}

// Parse converts normalized model output into a Record. Missing criteria
// default to the neutral score, present values are coerced and clamped to
// the 0-100 range, and the total follows the weighted aggregation in
// WeightedTotal.
func Parse(text string, r *rubric.Rubric) Outcome {
	cleaned := extractJSON(text)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return Outcome{NeedsFallback: true}
	}

	per := make(map[string]float64, len(r.Criteria))
	for _, c := range r.Criteria {
		per[c.Name] = criterionScore(data, c.Name)
	}

	bonus := 0
	if v, ok := data["bonus_points"]; ok {
		if f := coerceFloat(v); !math.IsNaN(f) {
			bonus = int(f)
		}
	}

	reasoning := coerceString(data["reasoning"])
	if reasoning == "" {
		reasoning = DefaultReasoning
	}

	return Outcome{Record: &Record{
		PerCriterion: per,
		Total:        WeightedTotal(r, per, bonus),
		BonusPoints:  bonus,
		Reasoning:    reasoning,
		RedFlags:     coerceStringList(data["red_flags"]),
	}}
}

func criterionScore(data map[string]any, name string) float64 {
	v, ok := data[name]
	if !ok {
		return NeutralScore
	}

	f := coerceFloat(v)
	if math.IsNaN(f) {
		return NeutralScore
	}

	return clampScore(f)
}

// extractJSON strips fenced code block markers and slices the text to the
// outermost braces, so prose wrapped around the JSON object does not break
// decoding.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	raw = strings.TrimSpace(raw)

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start != -1 && end > start {
		raw = raw[start : end+1]
	}

	return strings.TrimSpace(raw)
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

// coerceStringList converts an optional list field into a deduplicated
// string slice, preserving order. The result is never nil.
func coerceStringList(v any) []string {
	var raw []any
	switch val := v.(type) {
	case []any:
		raw = val
	case string:
		raw = []any{val}
	}

	seen := make(map[string]bool, len(raw))
	flags := make([]string, 0, len(raw))
	for _, item := range raw {
		s := coerceString(item)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		flags = append(flags, s)
	}

	return flags
}
