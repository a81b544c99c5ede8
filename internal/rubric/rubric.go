package rubric

import (
	"fmt"
	"strings"
)

// Criterion names used by the default rubric. The prompt, the fallback
// lexicons, and the report classification all key off these.
const (
	FieldFinancial  = "financial_capability"
	FieldNonSmoking = "non_smoking"
	FieldTiming     = "timing_alignment"
	FieldResidency  = "german_residency"
	FieldTidiness   = "tidiness_cleanliness"
)

// Criterion is one named, weighted scoring dimension. Weight is an integer
// percent; the weights of a rubric must sum to exactly 100.
type Criterion struct {
	Name        string `mapstructure:"name"`
	Weight      int    `mapstructure:"weight"`
	Description string `mapstructure:"description"`
	// Hint is rendered into the prompt as a "Look for:" line.
	Hint string `mapstructure:"hint"`
}

// Lexicon holds the keyword data the fallback scorer uses for one criterion.
// Boost and Penalty are hand-tuned fixed values, not computed ones.
type Lexicon struct {
	Positive []string `mapstructure:"keywords"`
	Boost    float64  `mapstructure:"boost"`
	Negative []string `mapstructure:"negative-keywords"`
	Penalty  float64  `mapstructure:"penalty"`
}

// Rubric is the complete scoring configuration for one evaluation run. It is
// built once at startup, validated, and passed explicitly to every component
// that needs it.
type Rubric struct {
	Criteria []Criterion
	Lexicons map[string]Lexicon

	// BonusHints and RedFlagHints are free-text prompt material: things the
	// model should award bonus points for or flag.
	BonusHints   []string
	RedFlagHints []string
}

// CriterionConfig is the flat per-criterion shape used in the configuration
// file, combining the criterion itself with its fallback lexicon.
type CriterionConfig struct {
	Name             string   `mapstructure:"name"`
	Weight           int      `mapstructure:"weight"`
	Description      string   `mapstructure:"description"`
	Hint             string   `mapstructure:"hint"`
	Keywords         []string `mapstructure:"keywords"`
	Boost            float64  `mapstructure:"boost"`
	NegativeKeywords []string `mapstructure:"negative-keywords"`
	Penalty          float64  `mapstructure:"penalty"`
}

// Config is the optional rubric section of the configuration file.
type Config struct {
	Criteria     []CriterionConfig `mapstructure:"criteria"`
	BonusHints   []string          `mapstructure:"bonus-hints"`
	RedFlagHints []string          `mapstructure:"red-flag-hints"`
}

// FromConfig builds a Rubric from the configuration section. A nil config or
// one without criteria yields the default rubric. The result is not yet
// validated; callers must call Validate before use.
func FromConfig(cfg *Config) *Rubric {
	if cfg == nil || len(cfg.Criteria) == 0 {
		return Default()
	}

	r := &Rubric{
		Criteria:     make([]Criterion, 0, len(cfg.Criteria)),
		Lexicons:     make(map[string]Lexicon, len(cfg.Criteria)),
		BonusHints:   cfg.BonusHints,
		RedFlagHints: cfg.RedFlagHints,
	}

	for _, c := range cfg.Criteria {
		name := strings.TrimSpace(c.Name)
		r.Criteria = append(r.Criteria, Criterion{
			Name:        name,
			Weight:      c.Weight,
			Description: c.Description,
			Hint:        c.Hint,
		})

		if len(c.Keywords) == 0 && len(c.NegativeKeywords) == 0 {
			continue
		}
		r.Lexicons[name] = Lexicon{
			Positive: c.Keywords,
			Boost:    c.Boost,
			Negative: c.NegativeKeywords,
			Penalty:  c.Penalty,
		}
	}

	return r
}

// Validate checks the rubric invariants: at least one criterion, unique
// non-empty names, and weights summing to exactly 100. It must pass before
// any evaluation runs.
func (r *Rubric) Validate() error {
	if r == nil || len(r.Criteria) == 0 {
		return fmt.Errorf("rubric has no criteria")
	}

	seen := make(map[string]bool, len(r.Criteria))
	sum := 0
	for _, c := range r.Criteria {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return fmt.Errorf("rubric criterion with empty name")
		}
		if seen[name] {
			return fmt.Errorf("duplicate rubric criterion %q", name)
		}
		seen[name] = true

		if c.Weight < 0 {
			return fmt.Errorf("criterion %q has negative weight %d", name, c.Weight)
		}
		sum += c.Weight
	}

	if sum != 100 {
		return fmt.Errorf("rubric weights sum to %d, must sum to 100", sum)
	}

	return nil
}

// Names returns the criterion names in rubric order.
func (r *Rubric) Names() []string {
	names := make([]string, 0, len(r.Criteria))
	for _, c := range r.Criteria {
		names = append(names, c.Name)
	}
	return names
}

// Lexicon returns the fallback lexicon for the named criterion, if any.
func (r *Rubric) Lexicon(name string) (Lexicon, bool) {
	lex, ok := r.Lexicons[name]
	return lex, ok
}

// Default returns the canonical five-criterion rubric with its fallback
// lexicons and prompt hints.
func Default() *Rubric {
	return &Rubric{
		Criteria: []Criterion{
			{
				Name:        FieldFinancial,
				Weight:      30,
				Description: "Ability to reliably pay rent and deposit",
				Hint:        "stable income, scholarship or BAföG, parental support, savings",
			},
			{
				Name:        FieldNonSmoking,
				Weight:      25,
				Description: "Non-smoking household requirement",
				Hint:        "explicit non-smoker statement, smoke-free lifestyle",
			},
			{
				Name:        FieldTiming,
				Weight:      20,
				Description: "Match with the rental period",
				Hint:        "move-in and move-out dates matching the offered period, semester stays",
			},
			{
				Name:        FieldResidency,
				Weight:      15,
				Description: "Residency or reachability in Germany",
				Hint:        "already in Germany or Munich, German language, local registration",
			},
			{
				Name:        FieldTidiness,
				Weight:      10,
				Description: "Tidiness and care of the flat",
				Hint:        "mentions of cleanliness, order, careful handling of furniture",
			},
		},
		Lexicons: map[string]Lexicon{
			FieldFinancial: {
				Positive: []string{"income", "salary", "job", "bafög", "eltern", "parents", "money"},
				Boost:    70,
			},
			FieldNonSmoking: {
				Positive: []string{"nichtraucher", "non-smoker", "rauchfrei"},
				Boost:    90,
				Negative: []string{"raucher", "smoking"},
				Penalty:  10,
			},
			FieldTiming: {
				Positive: []string{"september", "march", "semester", "temporary"},
				Boost:    75,
			},
			FieldResidency: {
				Positive: []string{"deutschland", "germany", "münchen", "deutsch"},
				Boost:    80,
			},
			FieldTidiness: {
				Positive: []string{"sauber", "clean", "ordentlich", "tidy"},
				Boost:    75,
			},
		},
		BonusHints: []string{
			"move-in and move-out dates match the offered period exactly",
			"exchange or visiting student for exactly one semester",
			"asks to take over the flat as-is with all furniture",
			"offers deposit and first rent upfront",
			"warm, personal application that addresses the listing details",
		},
		RedFlagHints: []string{
			"wants a longer or permanent stay instead of the offered period",
			"wants to bring own furniture into the furnished flat",
			"mentions frequent parties or a loud lifestyle",
			"asks to lower the rent or skip the deposit",
			"evasive about income or refuses proof of funds",
			"wants to sublet to someone else",
		},
	}
}
