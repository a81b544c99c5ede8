package report

import (
	"fmt"
	"strings"

	"github.com/avoelkl/mietscout/internal/ai"
	"github.com/avoelkl/mietscout/internal/ledger"
	"github.com/avoelkl/mietscout/internal/rubric"
)

const topCandidates = 5

// Score gates, on the 0-100 scale. Timing and financial capability gate the
// shortlist because a candidate who cannot pay or cannot move in on time is
// not worth an interview regardless of the rest.
const (
	scoreExcellent = 80
	scoreGood      = 65

	timingTop      = 80
	timingPerfect  = 75
	timingRequired = 70
	timingGood     = 60

	financialStrong   = 70
	financialPerfect  = 65
	financialRequired = 60
	financialGood     = 50
)

type Class int

const (
	Perfect Class = iota
	Good
	Problematic
)

func (c Class) String() string {
	switch c {
	case Perfect:
		return "perfect"
	case Good:
		return "good"
	default:
		return "problematic"
	}
}

// Classify buckets one candidate by total score, the two gating criteria
// and red flags.
func Classify(entry *ledger.Entry) Class {
	rec := entry.Score
	timing := rec.Criterion(rubric.FieldTiming)
	financial := rec.Criterion(rubric.FieldFinancial)

	switch {
	case rec.Total >= scoreExcellent && timing >= timingPerfect && financial >= financialPerfect && len(rec.RedFlags) == 0:
		return Perfect
	case rec.Total >= scoreGood && timing >= timingGood && financial >= financialGood:
		return Good
	default:
		return Problematic
	}
}

// Summary aggregates a ledger for presentation. Ranked holds every entry,
// best first.
type Summary struct {
	Total       int
	Best        float64
	Average     float64
	Ranked      []*ledger.Entry
	Perfect     []*ledger.Entry
	Good        []*ledger.Entry
	Problematic []*ledger.Entry
}

func Summarize(l *ledger.Ledger) *Summary {
	s := &Summary{Ranked: l.Rankings()}
	s.Total = len(s.Ranked)

	if s.Total == 0 {
		return s
	}

	s.Best = s.Ranked[0].Score.Total

	for _, entry := range s.Ranked {
		s.Average += entry.Score.Total

		switch Classify(entry) {
		case Perfect:
			s.Perfect = append(s.Perfect, entry)
		case Good:
			s.Good = append(s.Good, entry)
		default:
			s.Problematic = append(s.Problematic, entry)
		}
	}
	s.Average /= float64(s.Total)

	return s
}

// Dashboard renders the ranked overview for the terminal.
func (s *Summary) Dashboard(listing *ai.Listing) string {
	var b strings.Builder

	b.WriteString("CANDIDATE DASHBOARD\n")

	if s.Total == 0 {
		b.WriteString("no candidates processed yet\n")
		return b.String()
	}

	fmt.Fprintf(&b, "total candidates: %d\n", s.Total)
	fmt.Fprintf(&b, "best score: %.1f/100\n", s.Best)
	fmt.Fprintf(&b, "average score: %.1f/100\n", s.Average)
	if listing != nil {
		fmt.Fprintf(&b, "rent: %d EUR/month + %d EUR deposit\n", listing.MonthlyRent, listing.Deposit)
		fmt.Fprintf(&b, "period: %s to %s\n", listing.AvailableFrom, listing.AvailableUntil)
	}

	b.WriteString("\ntop candidates:\n")
	for i, entry := range s.Ranked {
		if i == topCandidates {
			break
		}

		rec := entry.Score

		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, marker(rec.Total), entry.Sender)

		fmt.Fprintf(&b, "   score: %.1f/100", rec.Total)
		if len(rec.RedFlags) > 0 {
			fmt.Fprintf(&b, " | red flags: %d", len(rec.RedFlags))
		}
		if rec.BonusPoints > 0 {
			fmt.Fprintf(&b, " | bonus: +%d", rec.BonusPoints)
		}
		b.WriteString("\n")

		if !entry.Date.IsZero() {
			fmt.Fprintf(&b, "   date: %s\n", entry.Date.Format("2006-01-02"))
		}

		fmt.Fprintf(&b, "   timing: %.0f/100 | financial: %.0f/100\n",
			rec.Criterion(rubric.FieldTiming), rec.Criterion(rubric.FieldFinancial))

		if issues := entryIssues(entry); len(issues) > 0 {
			fmt.Fprintf(&b, "   issues: %s\n", strings.Join(issues, " | "))
		} else {
			b.WriteString("   no major issues detected\n")
		}
	}

	fmt.Fprintf(&b, "\nbuckets: %d perfect / %d good / %d problematic\n",
		len(s.Perfect), len(s.Good), len(s.Problematic))

	return b.String()
}

// Detailed renders the per-criterion breakdown and the interview shortlist.
func (s *Summary) Detailed() string {
	var b strings.Builder

	b.WriteString("DETAILED ANALYSIS\n")

	if s.Total == 0 {
		b.WriteString("no candidates to analyze yet\n")
		return b.String()
	}

	var timingTopN, timingGoodN, timingPoorN int
	var financialStrongN, financialWeakN int
	var flagged, qualified []*ledger.Entry

	for _, entry := range s.Ranked {
		timing := entry.Score.Criterion(rubric.FieldTiming)
		financial := entry.Score.Criterion(rubric.FieldFinancial)

		switch {
		case timing >= timingTop:
			timingTopN++
		case timing >= timingGood:
			timingGoodN++
		default:
			timingPoorN++
		}

		if financial >= financialStrong {
			financialStrongN++
		}
		if financial < financialGood {
			financialWeakN++
		}

		if len(entry.Score.RedFlags) > 0 {
			flagged = append(flagged, entry)
		}

		if timing >= timingRequired && financial >= financialRequired && len(entry.Score.RedFlags) == 0 {
			qualified = append(qualified, entry)
		}
	}

	fmt.Fprintf(&b, "timing (%s):\n", rubric.FieldTiming)
	fmt.Fprintf(&b, "  excellent (%d+): %d\n", timingTop, timingTopN)
	fmt.Fprintf(&b, "  good (%d-%d): %d\n", timingGood, timingTop-1, timingGoodN)
	fmt.Fprintf(&b, "  poor (<%d): %d\n", timingGood, timingPoorN)

	fmt.Fprintf(&b, "financial (%s):\n", rubric.FieldFinancial)
	fmt.Fprintf(&b, "  strong (%d+): %d\n", financialStrong, financialStrongN)
	fmt.Fprintf(&b, "  weak (<%d): %d\n", financialGood, financialWeakN)

	if len(flagged) > 0 {
		fmt.Fprintf(&b, "red flags: %d candidates\n", len(flagged))
		for i, entry := range flagged {
			if i == 3 {
				break
			}
			fmt.Fprintf(&b, "  - %s: %s\n", entry.Sender, strings.Join(entry.Score.RedFlags, ", "))
		}
	}

	if len(qualified) > 0 {
		b.WriteString("interview shortlist:\n")
		for i, entry := range qualified {
			if i == 3 {
				break
			}
			fmt.Fprintf(&b, "  %d. %s (%.1f/100)\n", i+1, entry.Sender, entry.Score.Total)
		}
	} else {
		b.WriteString("no candidates meet the basic requirements yet\n")
	}

	return b.String()
}

func entryIssues(entry *ledger.Entry) []string {
	rec := entry.Score

	var issues []string
	if rec.Criterion(rubric.FieldTiming) < timingRequired {
		issues = append(issues, "timing mismatch")
	}
	if rec.Criterion(rubric.FieldFinancial) < financialRequired {
		issues = append(issues, "financial concerns")
	}

	return append(issues, rec.RedFlags...)
}

func marker(total float64) string {
	switch {
	case total >= scoreExcellent:
		return "excellent"
	case total >= scoreGood:
		return "good"
	default:
		return "weak"
	}
}
