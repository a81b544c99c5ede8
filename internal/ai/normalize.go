package ai

import (
	"fmt"
	"strings"
)

// BlockedResponseText is returned when the provider reports that safety
// filters blocked the response.
const BlockedResponseText = "Response was blocked by safety filters"

// ResponseCandidate is one alternative completion inside a model response.
type ResponseCandidate interface {
	ContentParts() []string
}

// Capability probes for the shapes different provider versions expose. A
// response object implements whichever subset it actually has; everything
// else falls through.
type (
	candidateLister interface{ ResponseCandidates() []ResponseCandidate }
	textAccessor    interface{ ResponseText() (string, error) }
	partLister      interface{ ResponseParts() []string }
	blockReporter   interface{ BlockReason() string }
	resolvable      interface{ Resolve() (any, error) }
	rawWrapper      interface{ RawResult() any }
)

// ExtractText pulls the plain response text out of a model response of
// unknown shape. Probes run in order, first non-empty result wins, and each
// probe is isolated: a failing or panicking accessor falls through to the
// next probe instead of aborting the extraction. The final generic
// conversion cannot fail, so ExtractText never does.
func ExtractText(resp any) string {
	if text := textFromCandidates(resp); text != "" {
		return text
	}
	if text := textDirect(resp); text != "" {
		return text
	}
	if text := textFromParts(resp); text != "" {
		return text
	}
	if text := blockNotice(resp); text != "" {
		return text
	}
	if text := textFromResolved(resp); text != "" {
		return text
	}
	if text := textFromRaw(resp); text != "" {
		return text
	}
	return fmt.Sprintf("%v", resp)
}

// textFromCandidates returns the first part text of the first candidate.
func textFromCandidates(resp any) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()

	lister, ok := resp.(candidateLister)
	if !ok {
		return ""
	}

	candidates := lister.ResponseCandidates()
	if len(candidates) == 0 || candidates[0] == nil {
		return ""
	}

	parts := candidates[0].ContentParts()
	if len(parts) == 0 {
		return ""
	}

	return strings.TrimSpace(parts[0])
}

// textDirect asks the response for its aggregated text. Providers raise here
// when the response has multiple or ambiguous parts; that error means "try
// the next probe", never a failed extraction.
func textDirect(resp any) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()

	accessor, ok := resp.(textAccessor)
	if !ok {
		return ""
	}

	value, err := accessor.ResponseText()
	if err != nil {
		return ""
	}

	return strings.TrimSpace(value)
}

func textFromParts(resp any) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()

	lister, ok := resp.(partLister)
	if !ok {
		return ""
	}

	parts := lister.ResponseParts()
	if len(parts) == 0 {
		return ""
	}

	return strings.TrimSpace(parts[0])
}

func blockNotice(resp any) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()

	reporter, ok := resp.(blockReporter)
	if !ok {
		return ""
	}

	if strings.TrimSpace(reporter.BlockReason()) == "" {
		return ""
	}

	return BlockedResponseText
}

// textFromResolved resolves a deferred/streaming handle once and retries the
// direct text probe against the resolved value.
func textFromResolved(resp any) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()

	handle, ok := resp.(resolvable)
	if !ok {
		return ""
	}

	resolved, err := handle.Resolve()
	if err != nil || resolved == nil {
		return ""
	}

	return textDirect(resolved)
}

// textFromRaw repeats the candidate walk against an internal result wrapper.
func textFromRaw(resp any) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()

	wrapper, ok := resp.(rawWrapper)
	if !ok {
		return ""
	}

	raw := wrapper.RawResult()
	if raw == nil {
		return ""
	}

	return textFromCandidates(raw)
}
