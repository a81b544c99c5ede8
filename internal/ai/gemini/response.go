package gemini

import (
	"errors"
	"strings"

	"github.com/avoelkl/mietscout/internal/ai"
	"google.golang.org/genai"
)

// modelResponse adapts the genai response shape to the text extraction
// probes without leaking the SDK types upward.
type modelResponse struct {
	resp *genai.GenerateContentResponse
}

func (r *modelResponse) ResponseCandidates() []ai.ResponseCandidate {
	if r == nil || r.resp == nil {
		return nil
	}

	candidates := make([]ai.ResponseCandidate, 0, len(r.resp.Candidates))
	for _, candidate := range r.resp.Candidates {
		if candidate == nil {
			continue
		}
		candidates = append(candidates, candidateView{candidate: candidate})
	}

	return candidates
}

func (r *modelResponse) ResponseText() (string, error) {
	if r == nil || r.resp == nil {
		return "", errors.New("gemini api returned empty response")
	}
	return r.resp.Text(), nil
}

// ResponseParts flattens the text parts of every candidate into one list.
func (r *modelResponse) ResponseParts() []string {
	if r == nil || r.resp == nil {
		return nil
	}

	var parts []string
	for _, candidate := range r.resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			if text := strings.TrimSpace(part.Text); text != "" {
				parts = append(parts, text)
			}
		}
	}

	return parts
}

func (r *modelResponse) BlockReason() string {
	if r == nil || r.resp == nil || r.resp.PromptFeedback == nil {
		return ""
	}
	return string(r.resp.PromptFeedback.BlockReason)
}

type candidateView struct {
	candidate *genai.Candidate
}

func (c candidateView) ContentParts() []string {
	if c.candidate == nil || c.candidate.Content == nil {
		return nil
	}

	var texts []string
	for _, part := range c.candidate.Content.Parts {
		if part == nil {
			continue
		}
		if text := strings.TrimSpace(part.Text); text != "" {
			texts = append(texts, text)
		}
	}

	return texts
}
