package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/avoelkl/mietscout/internal/ledger"
)

// Classic optimal-stopping split: observe the first 37% of arrivals without
// committing, then take the first later candidate beating both the observed
// best and the quality floor.
const (
	secretaryMinCandidates = 5
	observationRatio       = 0.37
	qualityFloor           = 75.0
)

type SecretaryPlan struct {
	Ready            bool
	Total            int
	ObservationCount int
	Baseline         float64
	Pick             *ledger.Entry
}

// PlanSecretary evaluates the stopping rule over entries in arrival order,
// not ranked order.
func PlanSecretary(entries []*ledger.Entry) *SecretaryPlan {
	plan := &SecretaryPlan{Total: len(entries)}

	if plan.Total < secretaryMinCandidates {
		return plan
	}

	plan.Ready = true
	plan.ObservationCount = int(math.Ceil(float64(plan.Total) * observationRatio))

	plan.Baseline = qualityFloor
	for _, entry := range entries[:plan.ObservationCount] {
		if entry.Score.Total > plan.Baseline {
			plan.Baseline = entry.Score.Total
		}
	}

	for _, entry := range entries[plan.ObservationCount:] {
		if entry.Score.Total > plan.Baseline {
			plan.Pick = entry
			break
		}
	}

	return plan
}

func (p *SecretaryPlan) Render() string {
	var b strings.Builder

	if !p.Ready {
		fmt.Fprintf(&b, "secretary rule: need at least %d candidates, have %d\n",
			secretaryMinCandidates, p.Total)
		return b.String()
	}

	fmt.Fprintf(&b, "secretary rule: observe the first %d of %d candidates\n",
		p.ObservationCount, p.Total)
	fmt.Fprintf(&b, "baseline to beat: %.1f/100\n", p.Baseline)

	if p.Pick != nil {
		fmt.Fprintf(&b, "pick: %s (%.1f/100)\n", p.Pick.Sender, p.Pick.Score.Total)
	} else {
		b.WriteString("no later candidate beats the baseline yet\n")
	}

	return b.String()
}
