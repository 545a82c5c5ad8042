package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mikey/support-triage/internal/config"
	"github.com/mikey/support-triage/internal/core"
	"github.com/mikey/support-triage/internal/utils"
	"go.uber.org/zap"
)

// ModelInvoker is the part of the Bedrock runtime client the gateway uses
type ModelInvoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Gateway is an implementation of core.Gateway using Amazon Bedrock
type Gateway struct {
	client        ModelInvoker
	modelID       string
	maxTokens     int
	temperature   float32
	topP          float32
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewGateway creates a new Bedrock gateway. Credentials come from the AWS
// default chain, so only the region and model are checked here.
func NewGateway(
	client ModelInvoker,
	cfg config.BedrockConfig,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) (*Gateway, error) {
	if strings.TrimSpace(cfg.Region) == "" {
		return nil, &core.ConfigurationError{Setting: "bedrock.region", Reason: "is required"}
	}
	if strings.TrimSpace(cfg.ModelID) == "" {
		return nil, &core.ConfigurationError{Setting: "bedrock.model_id", Reason: "is required"}
	}

	return &Gateway{
		client:        client,
		modelID:       cfg.ModelID,
		maxTokens:     cfg.MaxTokens,
		temperature:   cfg.Temperature,
		topP:          cfg.TopP,
		logger:        logger,
		textProcessor: textProcessor,
	}, nil
}

// Complete invokes the configured model with prompt and returns the cleaned completion
func (g *Gateway) Complete(ctx context.Context, prompt string) (string, error) {
	payload, err := g.requestBody(prompt)
	if err != nil {
		return "", fmt.Errorf("%w: failed to marshal request payload: %w", core.ErrGatewayFailure, err)
	}

	resp, err := g.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(g.modelID),
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("%w: failed to invoke Bedrock model: %w", core.ErrGatewayFailure, err)
	}

	text, err := g.responseText(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrGatewayFailure, err)
	}

	cleaned := g.textProcessor.CleanCompletion(text)
	if cleaned == "" {
		return "", fmt.Errorf("%w: empty completion from %s", core.ErrGatewayFailure, g.modelID)
	}
	return cleaned, nil
}

func (g *Gateway) requestBody(prompt string) ([]byte, error) {
	switch {
	case g.isAnthropicModel():
		return json.Marshal(map[string]interface{}{
			"prompt":               "\n\nHuman: " + prompt + "\n\nAssistant:",
			"max_tokens_to_sample": g.maxTokens,
			"temperature":          g.temperature,
			"top_p":                g.topP,
		})
	case g.isAmazonTitanModel():
		return json.Marshal(map[string]interface{}{
			"inputText": prompt,
			"textGenerationConfig": map[string]interface{}{
				"maxTokenCount": g.maxTokens,
				"temperature":   g.temperature,
				"topP":          g.topP,
			},
		})
	default:
		return json.Marshal(map[string]interface{}{
			"prompt":      prompt,
			"max_tokens":  g.maxTokens,
			"temperature": g.temperature,
			"top_p":       g.topP,
		})
	}
}

func (g *Gateway) responseText(body []byte) (string, error) {
	switch {
	case g.isAnthropicModel():
		var claudeResp struct {
			Completion string `json:"completion"`
		}
		if err := json.Unmarshal(body, &claudeResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Claude response: %w", err)
		}
		return claudeResp.Completion, nil
	case g.isAmazonTitanModel():
		var titanResp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(body, &titanResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Titan response: %w", err)
		}
		if len(titanResp.Results) == 0 {
			return "", fmt.Errorf("empty response from Titan model")
		}
		return titanResp.Results[0].OutputText, nil
	default:
		var genericResp struct {
			Output   string `json:"output"`
			Text     string `json:"text"`
			Response string `json:"response"`
		}
		if err := json.Unmarshal(body, &genericResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal generic response: %w", err)
		}
		switch {
		case genericResp.Output != "":
			return genericResp.Output, nil
		case genericResp.Text != "":
			return genericResp.Text, nil
		default:
			return genericResp.Response, nil
		}
	}
}

// isAnthropicModel checks if the model is an Anthropic Claude model
func (g *Gateway) isAnthropicModel() bool {
	return strings.HasPrefix(g.modelID, "anthropic.claude")
}

// isAmazonTitanModel checks if the model is an Amazon Titan model
func (g *Gateway) isAmazonTitanModel() bool {
	return strings.HasPrefix(g.modelID, "amazon.titan")
}
