package ai

import (
	"context"

	"github.com/avoelkl/mietscout/internal/score"
)

// Request is the immutable input to one applicant evaluation.
type Request struct {
	Sender  string
	Subject string
	Body    string
}

// Listing carries the rental terms embedded into every evaluation prompt.
type Listing struct {
	Address        string `mapstructure:"address"`
	MonthlyRent    int    `mapstructure:"monthly-rent"`
	Deposit        int    `mapstructure:"deposit"`
	AvailableFrom  string `mapstructure:"available-from"`
	AvailableUntil string `mapstructure:"available-until"`
	Furnished      bool   `mapstructure:"furnished"`
	Notes          string `mapstructure:"notes"`
}

// Evaluator scores one applicant email against the configured rubric. An
// implementation always produces exactly one record per request: upstream
// failures yield the zero-score error record instead of an error, so a bad
// candidate never aborts the batch.
type Evaluator interface {
	Evaluate(ctx context.Context, req Request) *score.Record
}
