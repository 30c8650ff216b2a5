package ranking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	defaultOpenAIModel = "gpt-4o-mini"
	systemPrompt       = "You rank job candidates and answer with strict JSON only."
)

// OpenAIGenerator talks to any OpenAI-compatible chat completion endpoint.
type OpenAIGenerator struct {
	client      openai.Client
	modelName   string
	temperature float64
}

func NewOpenAIGenerator(apiKey, baseURL, model string) (*OpenAIGenerator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}

	options := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}
	// the orchestrator owns the deadline and never retries
	options = append(options, option.WithMaxRetries(0))

	if model = strings.TrimSpace(model); model == "" {
		model = defaultOpenAIModel
	}

	return &OpenAIGenerator{
		client:      openai.NewClient(options...),
		modelName:   model,
		temperature: 0.1,
	}, nil
}

func (g *OpenAIGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if g == nil {
		return "", errors.New("openai generator is not initialized")
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	body := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.modelName),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(g.temperature),
	}

	resp, err := g.client.Chat.Completions.New(ctx, body)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai api returned no choices")
	}

	output := strings.TrimSpace(resp.Choices[0].Message.Content)
	if output == "" {
		return "", errors.New("openai api returned empty response")
	}
	return output, nil
}

func (g *OpenAIGenerator) Model() string {
	if g == nil {
		return ""
	}
	return g.modelName
}
