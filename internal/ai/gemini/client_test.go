package gemini

import (
	"context"
	"testing"
	"time"
)

func TestNewGeneratorRequiresAPIKey(t *testing.T) {
	if _, err := NewGenerator(context.Background(), "   ", Params{}); err == nil {
		t.Fatal("expected error for blank api key")
	}
}

func TestNewGeneratorDefaults(t *testing.T) {
	g, err := NewGenerator(context.Background(), "test-key", Params{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if g.Model() != defaultModel {
		t.Fatalf("expected default model %q, got %q", defaultModel, g.Model())
	}

	if g.maxTokens != defaultMaxOutputTokens {
		t.Fatalf("expected default max tokens %d, got %d", defaultMaxOutputTokens, g.maxTokens)
	}

	if g.temperature != float32(defaultTemperature) {
		t.Fatalf("expected default temperature %v, got %v", defaultTemperature, g.temperature)
	}
}

func TestNewGeneratorOverrides(t *testing.T) {
	g, err := NewGenerator(context.Background(), "test-key", Params{
		Model:           "gemini-2.0-flash",
		MaxOutputTokens: 1024,
		Temperature:     0.7,
		Timeout:         5 * time.Second,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if g.Model() != "gemini-2.0-flash" {
		t.Fatalf("unexpected model: %q", g.Model())
	}

	if g.maxTokens != 1024 {
		t.Fatalf("unexpected max tokens: %d", g.maxTokens)
	}
}

func TestGenerateContentRejectsEmptyPrompt(t *testing.T) {
	g, err := NewGenerator(context.Background(), "test-key", Params{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if _, err := g.GenerateContent(context.Background(), "  \n "); err == nil {
		t.Fatal("expected error for empty prompt")
	}
}

func TestGenerateContentUninitializedGenerator(t *testing.T) {
	var g *Generator

	if _, err := g.GenerateContent(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error for uninitialized generator")
	}

	if g.Model() != "" {
		t.Fatalf("expected empty model name, got %q", g.Model())
	}
}
