package langchain

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/poiesic/lorekeeper/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/bedrock"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// newOpenAI creates an OpenAI client. A custom host without a key is treated
// as a local OpenAI-compatible server and authenticates with the token "none".
func newOpenAI(config *ai.Config) (llms.Model, error) {
	token := config.APIKey
	if token == "" {
		if config.Host == "" {
			return nil, fmt.Errorf("openai: %w", ai.ErrMissingAPIKey)
		}
		token = "none"
	}

	opts := []openai.Option{
		openai.WithToken(token),
		openai.WithModel(config.Model),
	}
	if config.Host != "" {
		opts = append(opts, openai.WithBaseURL(config.Host))
	}
	return openai.New(opts...)
}

func newOllama(config *ai.Config) (llms.Model, error) {
	opts := []ollama.Option{
		ollama.WithModel(config.Model),
	}
	if config.Host != "" {
		opts = append(opts, ollama.WithServerURL(config.Host))
	}
	return ollama.New(opts...)
}

func newAnthropic(config *ai.Config) (llms.Model, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("anthropic: %w", ai.ErrMissingAPIKey)
	}

	opts := []anthropic.Option{
		anthropic.WithToken(config.APIKey),
		anthropic.WithModel(config.Model),
	}
	if config.Host != "" {
		opts = append(opts, anthropic.WithBaseURL(config.Host))
	}
	return anthropic.New(opts...)
}

// newBedrock creates a Bedrock client from the default AWS credential chain.
func newBedrock(ctx context.Context, config *ai.Config) (llms.Model, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if config.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(config.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := bedrockruntime.NewFromConfig(awsCfg)
	return bedrock.New(
		bedrock.WithClient(client),
		bedrock.WithModel(config.Model),
	)
}
