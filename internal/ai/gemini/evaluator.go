package gemini

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/avoelkl/mietscout/internal/ai"
	"github.com/avoelkl/mietscout/internal/logger"
	"github.com/avoelkl/mietscout/internal/rubric"
	"github.com/avoelkl/mietscout/internal/score"
	"go.uber.org/zap"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (any, error)
}

//go:embed prompt.md
var promptTemplate string

const (
	defaultMaxLogLength = 200
	maxBodyRunes        = 600
)

// Evaluator runs the scoring pipeline for one applicant email: prompt,
// model call, text extraction, structured parse. The keyword fallback and
// the zero-score error record cover the degraded branches.
type Evaluator struct {
	generator contentGenerator
	rubric    *rubric.Rubric
	listing   *ai.Listing
	logger    *zap.Logger
	maxLogLen int
}

func NewEvaluator(generator contentGenerator, r *rubric.Rubric, listing *ai.Listing, log *zap.Logger, maxLogLength int) *Evaluator {
	if log == nil {
		log = zap.NewNop()
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Evaluator{
		generator: generator,
		rubric:    r,
		listing:   listing,
		logger:    log,
		maxLogLen: maxLogLength,
	}
}

// Evaluate always returns exactly one record. A model call failure is
// terminal for this candidate only and yields the zero-score error record.
func (e *Evaluator) Evaluate(ctx context.Context, req ai.Request) *score.Record {
	prompt := e.buildPrompt(req)

	e.logger.Debug("gemini generate content request",
		zap.String(logger.FieldSender, req.Sender),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, e.maxLogLen)),
	)

	resp, err := e.generator.GenerateContent(ctx, prompt)
	if err != nil {
		e.logger.Warn("model call failed, recording evaluation error",
			zap.String(logger.FieldSender, req.Sender),
			zap.Error(err),
		)
		return score.ErrorRecord(e.rubric, err)
	}

	text := ai.ExtractText(resp)

	e.logger.Debug("gemini generate content response",
		zap.String(logger.FieldSender, req.Sender),
		zap.Int("response_length", utf8.RuneCountInString(text)),
		zap.String("response_preview", logger.TruncateForLog(text, e.maxLogLen)),
	)

	out := score.Parse(text, e.rubric)
	if !out.NeedsFallback {
		return out.Record
	}

	e.logger.Warn("structured parse failed, using keyword fallback",
		zap.String(logger.FieldSender, req.Sender),
	)

	return score.FallbackParse(text, e.rubric)
}

func (e *Evaluator) buildPrompt(req ai.Request) string {
	prompt := promptTemplate
	prompt = strings.ReplaceAll(prompt, "{{SENDER}}", req.Sender)
	prompt = strings.ReplaceAll(prompt, "{{SUBJECT}}", req.Subject)
	prompt = strings.ReplaceAll(prompt, "{{BODY}}", truncateRunes(req.Body, maxBodyRunes))
	prompt = strings.ReplaceAll(prompt, "{{RENTAL_TERMS}}", renderListing(e.listing))
	prompt = strings.ReplaceAll(prompt, "{{CRITERIA}}", renderCriteria(e.rubric))
	prompt = strings.ReplaceAll(prompt, "{{RED_FLAGS}}", renderHintList(e.rubric.RedFlagHints))
	prompt = strings.ReplaceAll(prompt, "{{BONUS_HINTS}}", renderHintList(e.rubric.BonusHints))
	prompt = strings.ReplaceAll(prompt, "{{JSON_FIELDS}}", renderJSONFields(e.rubric))
	return prompt
}

func renderListing(l *ai.Listing) string {
	if l == nil {
		return "- not specified"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "- Address: %s\n", l.Address)
	fmt.Fprintf(&b, "- Monthly rent (incl. utilities): %d EUR\n", l.MonthlyRent)
	fmt.Fprintf(&b, "- Deposit: %d EUR\n", l.Deposit)
	fmt.Fprintf(&b, "- Rental period: %s to %s\n", l.AvailableFrom, l.AvailableUntil)
	if l.Furnished {
		b.WriteString("- Fully furnished, the furniture stays in the flat\n")
	}
	if l.Notes != "" {
		fmt.Fprintf(&b, "- %s\n", l.Notes)
	}

	return strings.TrimRight(b.String(), "\n")
}

func renderCriteria(r *rubric.Rubric) string {
	var b strings.Builder
	for _, c := range r.Criteria {
		fmt.Fprintf(&b, "- %s (%d%%): %s\n", c.Name, c.Weight, c.Description)
		if c.Hint != "" {
			fmt.Fprintf(&b, "  Look for: %s\n", c.Hint)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderHintList(hints []string) string {
	if len(hints) == 0 {
		return "- none"
	}

	var b strings.Builder
	for _, hint := range hints {
		fmt.Fprintf(&b, "- %s\n", hint)
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderJSONFields builds the response contract from the rubric so the
// criteria stay data, not prompt text.
func renderJSONFields(r *rubric.Rubric) string {
	var b strings.Builder
	b.WriteString("{\n")
	for _, c := range r.Criteria {
		fmt.Fprintf(&b, "  %q: <score 0-100>,\n", c.Name)
	}
	b.WriteString("  \"bonus_points\": <integer 0-15>,\n")
	b.WriteString("  \"reasoning\": \"<short explanation>\",\n")
	b.WriteString("  \"red_flags\": [\"<flag>\", ...]\n")
	b.WriteString("}")
	return b.String()
}

// truncateRunes silently bounds the email body embedded into the prompt.
func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
