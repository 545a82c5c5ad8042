// Package claude implements core.Gateway with the Anthropic Messages API.
package claude

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/mikey/support-triage/internal/config"
	"github.com/mikey/support-triage/internal/core"
	"github.com/mikey/support-triage/internal/utils"
	"go.uber.org/zap"
)

const systemPrompt = "You are a customer support assistant."

// Gateway is an implementation of core.Gateway using the Anthropic SDK
type Gateway struct {
	client        anthropic.Client
	modelName     string
	maxTokens     int
	temperature   float32
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewGateway creates a new Anthropic gateway. Requests are single shot, the
// SDK's automatic retries are disabled.
func NewGateway(cfg config.AnthropicConfig, logger *zap.Logger, textProcessor *utils.TextProcessor) (*Gateway, error) {
	if err := core.RequireCredential("anthropic.api_key", cfg.APIKey); err != nil {
		return nil, err
	}

	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Gateway{
		client:        anthropic.NewClient(opts...),
		modelName:     cfg.ModelName,
		maxTokens:     cfg.MaxTokens,
		temperature:   cfg.Temperature,
		logger:        logger,
		textProcessor: textProcessor,
	}, nil
}

// Complete sends prompt as a single user turn and returns the cleaned reply
func (g *Gateway) Complete(ctx context.Context, prompt string) (string, error) {
	msg, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(g.modelName),
		MaxTokens:   int64(g.maxTokens),
		System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))},
		Temperature: anthropic.Float(float64(g.temperature)),
	})
	if err != nil {
		return "", fmt.Errorf("%w: failed to create message with Anthropic: %w", core.ErrGatewayFailure, err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	cleaned := g.textProcessor.CleanCompletion(sb.String())
	if cleaned == "" {
		return "", fmt.Errorf("%w: empty completion from %s", core.ErrGatewayFailure, g.modelName)
	}

	g.logger.Debug("Anthropic completion received",
		zap.String("model", g.modelName),
		zap.Int64("input_tokens", msg.Usage.InputTokens),
		zap.Int64("output_tokens", msg.Usage.OutputTokens))
	return cleaned, nil
}
