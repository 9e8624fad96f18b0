package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, 0.3, cfg.Temperature)
	assert.Equal(t, 4096, cfg.MaxTokens)
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()

		assert.NotNil(t, cfg)
		assert.Equal(t, ProviderOpenAI, cfg.Provider)
		assert.Equal(t, 4096, cfg.MaxTokens)
	})

	t.Run("with multiple options", func(t *testing.T) {
		cfg := NewConfig(
			WithProvider(ProviderOllama),
			WithModel("qwen2.5:7b"),
			WithHost("http://localhost:11434"),
			WithAPIKey("secret"),
			WithRegion("us-east-1"),
			WithDefaultTemperature(0.1),
			WithDefaultMaxTokens(1024),
		)

		assert.Equal(t, ProviderOllama, cfg.Provider)
		assert.Equal(t, "qwen2.5:7b", cfg.Model)
		assert.Equal(t, "http://localhost:11434", cfg.Host)
		assert.Equal(t, "secret", cfg.APIKey)
		assert.Equal(t, "us-east-1", cfg.Region)
		assert.Equal(t, 0.1, cfg.Temperature)
		assert.Equal(t, 1024, cfg.MaxTokens)
	})
}

func TestConfig_Normalize(t *testing.T) {
	t.Run("provider lower-cased and host trimmed", func(t *testing.T) {
		cfg := NewConfig(WithProvider(" OpenAI "), WithHost("http://localhost:8080/v1/"), WithAPIKey("k"))
		cfg.Normalize()

		assert.Equal(t, ProviderOpenAI, cfg.Provider)
		assert.Equal(t, "http://localhost:8080/v1", cfg.Host)
	})

	t.Run("openai key from environment", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "env-key")
		t.Setenv("OPENAI_BASE_URL", "http://proxy/v1/")
		cfg := NewConfig()
		cfg.Normalize()

		assert.Equal(t, "env-key", cfg.APIKey)
		assert.Equal(t, "http://proxy/v1", cfg.Host)
	})

	t.Run("explicit key wins over environment", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "env-key")
		cfg := NewConfig(WithProvider(ProviderAnthropic), WithAPIKey("flag-key"))
		cfg.Normalize()

		assert.Equal(t, "flag-key", cfg.APIKey)
	})

	t.Run("ollama host from environment", func(t *testing.T) {
		t.Setenv("OLLAMA_HOST", "http://gpu-box:11434")
		cfg := NewConfig(WithProvider(ProviderOllama))
		cfg.Normalize()

		assert.Equal(t, "http://gpu-box:11434", cfg.Host)
	})

	t.Run("bedrock region from environment", func(t *testing.T) {
		t.Setenv("AWS_REGION", "eu-west-1")
		cfg := NewConfig(WithProvider(ProviderBedrock))
		cfg.Normalize()

		assert.Equal(t, "eu-west-1", cfg.Region)
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name:    "valid default",
			config:  NewConfig(),
			wantErr: false,
		},
		{
			name:    "unsupported provider",
			config:  NewConfig(WithProvider("watson")),
			wantErr: true,
		},
		{
			name:    "missing model",
			config:  NewConfig(WithModel("")),
			wantErr: true,
		},
		{
			name:    "negative temperature",
			config:  NewConfig(WithDefaultTemperature(-0.5)),
			wantErr: true,
		},
		{
			name:    "zero max tokens",
			config:  NewConfig(WithDefaultMaxTokens(0)),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}

	t.Run("unsupported provider is typed", func(t *testing.T) {
		err := NewConfig(WithProvider("watson")).Validate()
		assert.ErrorIs(t, err, ErrUnsupportedProvider)
	})
}

func TestApplyInvokeOptions(t *testing.T) {
	var got []string
	opts := ApplyInvokeOptions(
		WithTemperature(0),
		WithMaxTokens(256),
		WithStream(func(_ context.Context, chunk string) error {
			got = append(got, chunk)
			return nil
		}),
		nil,
	)

	require.NotNil(t, opts.Temperature)
	assert.Equal(t, 0.0, *opts.Temperature)
	assert.Equal(t, 256, opts.MaxTokens)
	require.NotNil(t, opts.Stream)
	require.NoError(t, opts.Stream(context.Background(), "hi"))
	assert.Equal(t, []string{"hi"}, got)
}

func TestMessageHelpers(t *testing.T) {
	assert.Equal(t, Message{Role: RoleSystem, Content: "s"}, System("s"))
	assert.Equal(t, Message{Role: RoleUser, Content: "u"}, User("u"))
	assert.Equal(t, Message{Role: RoleAssistant, Content: "a"}, Assistant("a"))
}
