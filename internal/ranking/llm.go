package ranking

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"hire/internal/logger"

	"go.uber.org/zap"
)

type generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

// LLMRanker asks a language model to score candidates and parses its answer.
type LLMRanker struct {
	generator generator
	logger    *zap.Logger
	maxLogLen int
}

func NewLLMRanker(gen generator, provider string, log *zap.Logger) *LLMRanker {
	return &LLMRanker{
		generator: gen,
		logger:    logger.WithRanker(log, provider, gen.Model()),
		maxLogLen: defaultMaxLogLength,
	}
}

func (r *LLMRanker) Rank(ctx context.Context, req Request) (Response, error) {
	if len(req.Candidates) == 0 {
		return Response{}, nil
	}

	candidatesJSON, err := json.MarshalIndent(req.Candidates, "", "  ")
	if err != nil {
		return Response{}, fmt.Errorf("marshal candidates: %w", err)
	}

	prompt := buildPrompt(req.Query, string(candidatesJSON))

	r.logger.Debug("ranking request",
		zap.Int("candidates", len(req.Candidates)),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, r.maxLogLen)),
	)

	raw, err := r.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return Response{}, err
	}

	r.logger.Debug("ranking response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, r.maxLogLen)),
	)

	return ParseResponse(raw)
}

func buildPrompt(query, candidatesJSON string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Query:\n{{QUERY}}\n\nCandidates:\n{{CANDIDATES_JSON}}\n\nJSON Response:"
	}
	prompt := strings.ReplaceAll(template, "{{QUERY}}", strings.TrimSpace(query))
	prompt = strings.ReplaceAll(prompt, "{{CANDIDATES_JSON}}", candidatesJSON)
	return prompt
}
