package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	defaultOpenRouterModel = "google/gemini-2.0-flash-001"
	defaultOpenRouterURL   = "https://openrouter.ai/api/v1"
)

// openRouterGenerator talks to OpenRouter through its OpenAI-compatible API.
type openRouterGenerator struct {
	llm       llms.Model
	modelName string
}

func NewOpenRouterGenerator(apiKey, model, baseURL string) (TextGenerator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("openrouter api key is required")
	}
	if model = strings.TrimSpace(model); model == "" {
		model = defaultOpenRouterModel
	}
	if baseURL = strings.TrimSpace(baseURL); baseURL == "" {
		baseURL = defaultOpenRouterURL
	}

	llm, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithBaseURL(baseURL),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create openrouter client: %w", err)
	}

	return newOpenRouterGenerator(llm, model), nil
}

func newOpenRouterGenerator(llm llms.Model, model string) TextGenerator {
	return &openRouterGenerator{llm: llm, modelName: model}
}

func (g *openRouterGenerator) Provider() string { return "openrouter" }

func (g *openRouterGenerator) Model() string { return g.modelName }

// Generate implements TextGenerator.
func (g *openRouterGenerator) Generate(ctx context.Context, prompt string, opts ...GenerateOption) (string, error) {
	o := applyOptions(opts)

	var callOpts []llms.CallOption
	if o.jsonResponse {
		callOpts = append(callOpts, llms.WithJSONMode())
	}
	if o.temperature != nil {
		callOpts = append(callOpts, llms.WithTemperature(float64(*o.temperature)))
	}

	text, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt, callOpts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("openrouter returned empty response")
	}
	return text, nil
}
