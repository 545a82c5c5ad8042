package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/mikey/support-triage/internal/config"
	"github.com/mikey/support-triage/internal/core"
	"github.com/mikey/support-triage/internal/utils"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const systemPrompt = "You are a customer support assistant."

// Gateway is an implementation of core.Gateway using the OpenAI chat API
type Gateway struct {
	client        *openai.Client
	modelName     string
	maxTokens     int
	temperature   float32
	topP          float32
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewGateway creates a new OpenAI gateway. BaseURL overrides the API
// endpoint when set, for proxies and compatible servers.
func NewGateway(cfg config.OpenAIConfig, logger *zap.Logger, textProcessor *utils.TextProcessor) (*Gateway, error) {
	if err := core.RequireCredential("openai.api_key", cfg.APIKey); err != nil {
		return nil, err
	}

	clientCfg := openai.DefaultConfig(strings.TrimSpace(cfg.APIKey))
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Gateway{
		client:        openai.NewClientWithConfig(clientCfg),
		modelName:     cfg.ModelName,
		maxTokens:     cfg.MaxTokens,
		temperature:   cfg.Temperature,
		topP:          cfg.TopP,
		logger:        logger,
		textProcessor: textProcessor,
	}, nil
}

// Complete sends prompt as a single chat turn and returns the cleaned reply
func (g *Gateway) Complete(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: g.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
		TopP:        g.topP,
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create chat completion with OpenAI: %w", core.ErrGatewayFailure, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response from OpenAI", core.ErrGatewayFailure)
	}

	cleaned := g.textProcessor.CleanCompletion(resp.Choices[0].Message.Content)
	if cleaned == "" {
		return "", fmt.Errorf("%w: empty completion from %s", core.ErrGatewayFailure, g.modelName)
	}

	g.logger.Debug("OpenAI completion received",
		zap.String("model", g.modelName),
		zap.Int("total_tokens", resp.Usage.TotalTokens))
	return cleaned, nil
}
