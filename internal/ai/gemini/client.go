package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

const (
	defaultModel           = "gemini-1.5-flash"
	defaultMaxOutputTokens = 800
	defaultTemperature     = 0.1
	defaultTimeout         = 30 * time.Second
)

// Generator wraps the Google GenAI client to provide prompt-based
// interactions with fixed generation parameters.
type Generator struct {
	client      *genai.Client
	modelName   string
	maxTokens   int32
	temperature float32
}

// Params bundles the generation settings for one Generator. Zero values fall
// back to the package defaults.
type Params struct {
	Model           string
	MaxOutputTokens int
	Temperature     float64
	Timeout         time.Duration
}

// NewGenerator creates a Generator for the Gemini API backend. The timeout
// is enforced on the underlying HTTP transport; no other layer bounds the
// model call.
func NewGenerator(ctx context.Context, apiKey string, params Params) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	timeout := params.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	model := strings.TrimSpace(params.Model)
	if model == "" {
		model = defaultModel
	}

	maxTokens := int32(params.MaxOutputTokens)
	if maxTokens <= 0 {
		maxTokens = defaultMaxOutputTokens
	}

	temperature := float32(params.Temperature)
	if temperature <= 0 {
		temperature = defaultTemperature
	}

	return &Generator{
		client:      client,
		modelName:   model,
		maxTokens:   maxTokens,
		temperature: temperature,
	}, nil
}

// GenerateContent sends the prompt to Gemini and returns the provider's raw
// response for downstream normalization. The response shape is not
// interpreted here.
func (g *Generator) GenerateContent(ctx context.Context, prompt string) (any, error) {
	if g == nil || g.client == nil {
		return nil, errors.New("gemini generator is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, errors.New("prompt must not be empty")
	}

	temperature := g.temperature
	cfg := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: g.maxTokens,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), cfg)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	return &modelResponse{resp: resp}, nil
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.modelName
}
