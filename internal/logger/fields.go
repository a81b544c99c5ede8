package logger

import (
	"strings"

	"go.uber.org/zap"
)

// Field keys shared by every log line of the evaluation pipeline, so a run
// can be filtered by candidate or by the model that scored it.
const (
	FieldProvider = "ai_provider"
	FieldModel    = "ai_model"
	FieldEmailID  = "email_id"
	FieldSender   = "sender"
)

// CommonFields identifies the model behind an evaluation log line. Blank
// values are dropped to keep entries compact.
func CommonFields(provider, model string) []zap.Field {
	return compact(
		zap.String(FieldProvider, strings.TrimSpace(provider)),
		zap.String(FieldModel, strings.TrimSpace(model)),
	)
}

// CandidateFields identifies one applicant email in a log line.
func CandidateFields(emailID, sender string) []zap.Field {
	return compact(
		zap.String(FieldEmailID, strings.TrimSpace(emailID)),
		zap.String(FieldSender, strings.TrimSpace(sender)),
	)
}

// WithCommonFields attaches the provider and model fields to the logger.
// A nil logger degrades to a no-op logger instead of panicking.
func WithCommonFields(log *zap.Logger, provider, model string) *zap.Logger {
	if log == nil {
		log = zap.NewNop()
	}

	fields := CommonFields(provider, model)
	if len(fields) == 0 {
		return log
	}

	return log.With(fields...)
}

// compact drops string fields holding an empty value.
func compact(fields ...zap.Field) []zap.Field {
	kept := fields[:0]
	for _, f := range fields {
		if f.String == "" {
			continue
		}
		kept = append(kept, f)
	}

	return kept
}
