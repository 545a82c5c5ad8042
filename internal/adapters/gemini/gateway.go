package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/mikey/support-triage/internal/config"
	"github.com/mikey/support-triage/internal/core"
	"github.com/mikey/support-triage/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Gateway is an implementation of core.Gateway using Google Gemini
type Gateway struct {
	client        *genai.Client
	model         *genai.GenerativeModel
	modelName     string
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewGateway creates a new Gemini gateway. The API key is checked before any
// client is created. Requests go through singleShotTransport so a failed call
// is never retried; opts are appended after it (for example WithEndpoint).
func NewGateway(
	ctx context.Context,
	cfg config.GeminiConfig,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
	opts ...option.ClientOption,
) (*Gateway, error) {
	if err := core.RequireCredential("gemini.api_key", cfg.APIKey); err != nil {
		return nil, err
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	httpClient := &http.Client{Transport: &singleShotTransport{apiKey: apiKey, base: http.DefaultTransport}}
	clientOpts := append([]option.ClientOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(httpClient),
	}, opts...)

	client, err := genai.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.ModelName)
	model.SetTemperature(cfg.Temperature)
	model.SetTopP(cfg.TopP)
	model.SetMaxOutputTokens(int32(cfg.MaxTokens))

	return &Gateway{
		client:        client,
		model:         model,
		modelName:     cfg.ModelName,
		logger:        logger,
		textProcessor: textProcessor,
	}, nil
}

// Close closes the Gemini client
func (g *Gateway) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// Complete sends prompt to Gemini and returns the cleaned completion
func (g *Gateway) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("%w: failed to generate content with Gemini: %w", core.ErrGatewayFailure, err)
	}

	text, err := completionText(resp)
	if err != nil {
		return "", err
	}

	cleaned := g.textProcessor.CleanCompletion(text)
	if cleaned == "" {
		return "", fmt.Errorf("%w: empty completion from %s", core.ErrGatewayFailure, g.modelName)
	}
	return cleaned, nil
}

// completionText joins the text parts of the first candidate
func completionText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty response from Gemini", core.ErrGatewayFailure)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}
