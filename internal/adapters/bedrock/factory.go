package bedrock

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mikey/support-triage/internal/config"
	"github.com/mikey/support-triage/internal/core"
	"github.com/mikey/support-triage/internal/utils"
	"go.uber.org/zap"
)

// Factory creates Bedrock gateways
type Factory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewFactory creates a new Bedrock factory
func NewFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *Factory {
	return &Factory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateGateway loads the AWS configuration and creates a Bedrock gateway
func (f *Factory) CreateGateway(ctx context.Context) (core.Gateway, error) {
	bedrockCfg := f.cfg.GetBedrock()
	if bedrockCfg.Region == "" {
		return nil, &core.ConfigurationError{Setting: "bedrock.region", Reason: "is required"}
	}

	awsCfg, err := loadAWSConfig(ctx, bedrockCfg.Region)
	if err != nil {
		return nil, err
	}

	return NewGateway(bedrockruntime.NewFromConfig(awsCfg), bedrockCfg, f.logger, f.textProcessor)
}

// loadAWSConfig resolves the default AWS configuration for region with SDK
// retries switched off, so every InvokeModel is a single attempt.
func loadAWSConfig(ctx context.Context, region string, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
	opts := append([]func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
		awsconfig.WithRetryer(func() aws.Retryer { return aws.NopRetryer{} }),
	}, optFns...)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return awsCfg, nil
}
