package agent

import (
	"context"
	"fmt"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/bedrock"
	"github.com/anthropics/anthropic-sdk-go/option"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"github.com/reedwhitmont/swarm/pkg/models"
)

// ClientConfig configures the Anthropic-backed agent factory.
type ClientConfig struct {
	// Model is the default model; a role's Model field overrides it.
	Model string
	// APIKey is the Anthropic API key. If empty, ANTHROPIC_API_KEY is used.
	APIKey string
	// UseAWSBedrock routes requests through AWS Bedrock instead of the
	// direct API.
	UseAWSBedrock bool
	// AWSRegion is the AWS region for Bedrock.
	AWSRegion string
	// AWSProfile is the optional AWS profile name to use.
	AWSProfile string
}

// DefaultModel is used when neither the config nor the role names one.
const DefaultModel = string(anthropic.ModelClaudeSonnet4_20250514)

// AnthropicFactory creates role-configured agents backed by the
// Anthropic API.
type AnthropicFactory struct {
	client anthropic.Client
	model  string
}

// NewAnthropicFactory creates the factory, resolving credentials from
// the config, the environment, or AWS Bedrock.
func NewAnthropicFactory(cfg ClientConfig) (*AnthropicFactory, error) {
	var opts []option.RequestOption

	if cfg.UseAWSBedrock {
		ctx := context.Background()

		var loadOpts []func(*awsconfig.LoadOptions) error
		if cfg.AWSRegion != "" {
			loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.AWSRegion))
		}
		if cfg.AWSProfile != "" {
			loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(cfg.AWSProfile))
		}

		opts = append(opts, bedrock.WithLoadDefaultConfig(ctx, loadOpts...))
	} else {
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is not set")
		}
		opts = append(opts, option.WithAPIKey(apiKey))
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &AnthropicFactory{
		client: anthropic.NewClient(opts...),
		model:  model,
	}, nil
}

// NewAgent implements Factory.
func (f *AnthropicFactory) NewAgent(role *models.Role) Agent {
	model := f.model
	if role.Model != "" {
		model = role.Model
	}
	return &anthropicAgent{
		client: f.client,
		role:   role,
		model:  model,
	}
}

type anthropicAgent struct {
	client anthropic.Client
	role   *models.Role
	model  string
}

// Converse sends one prompt under the role's system prompt and returns
// the concatenated text blocks. Thinking blocks, when the model emits
// them, become the reasoning trace.
func (a *anthropicAgent) Converse(ctx context.Context, prompt string) (Reply, error) {
	maxTokens := int64(a.role.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: a.role.SystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if a.role.Temperature > 0 {
		params.Temperature = anthropic.Float(a.role.Temperature)
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return Reply{}, fmt.Errorf("anthropic message: %w", err)
	}

	var reply Reply
	for _, block := range resp.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			reply.Text += variant.Text
		case anthropic.ThinkingBlock:
			reply.Thinking += variant.Thinking
		}
	}
	return reply, nil
}
