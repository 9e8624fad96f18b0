// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
)

// Config holds configuration for a model provider.
type Config struct {
	// Provider selects the backend.
	// Default: "openai"
	Provider Provider

	// Model is the provider-specific model identifier.
	// Example: "gpt-4o-mini", "qwen2.5:7b", "claude-3-5-haiku-latest",
	// "anthropic.claude-3-haiku-20240307-v1:0"
	Model string

	// Host is the base URL of the service. Empty uses the provider default.
	// Example: "http://localhost:11434/v1" for a local OpenAI-compatible server
	Host string

	// APIKey authenticates hosted providers. Ollama and Bedrock ignore it.
	APIKey string

	// Region is the AWS region used by the Bedrock provider.
	Region string

	// Temperature is the sampling temperature.
	// Default: 0.3
	Temperature float64

	// MaxTokens bounds the length of each completion.
	// Default: 4096
	MaxTokens int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithProvider sets the backend.
func WithProvider(p Provider) ConfigOption {
	return func(c *Config) {
		c.Provider = p
	}
}

// WithModel sets the model identifier.
func WithModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

// WithHost sets the service base URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithRegion sets the AWS region for Bedrock.
func WithRegion(region string) ConfigOption {
	return func(c *Config) {
		c.Region = region
	}
}

// WithDefaultTemperature sets the sampling temperature used by every call.
func WithDefaultTemperature(t float64) ConfigOption {
	return func(c *Config) {
		c.Temperature = t
	}
}

// WithDefaultMaxTokens sets the completion length limit used by every call.
func WithDefaultMaxTokens(n int) ConfigOption {
	return func(c *Config) {
		c.MaxTokens = n
	}
}

// DefaultConfig returns a Config with defaults suited to extraction work.
func DefaultConfig() *Config {
	return &Config{
		Provider:    ProviderOpenAI,
		Model:       "gpt-4o-mini",
		Temperature: 0.3,
		MaxTokens:   4096,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithProvider(ProviderOllama),
//	    WithModel("qwen2.5:7b"),
//	    WithHost("http://localhost:11434"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize puts the configuration into canonical form and fills unset
// credentials from the environment:
// OPENAI_API_KEY, OPENAI_BASE_URL, ANTHROPIC_API_KEY, OLLAMA_HOST, AWS_REGION.
func (c *Config) Normalize() {
	c.Provider = Provider(strings.ToLower(strings.TrimSpace(string(c.Provider))))
	c.Host = strings.TrimSuffix(strings.TrimSpace(c.Host), "/")

	switch c.Provider {
	case ProviderOpenAI:
		if c.APIKey == "" {
			c.APIKey = os.Getenv("OPENAI_API_KEY")
		}
		if c.Host == "" {
			c.Host = strings.TrimSuffix(os.Getenv("OPENAI_BASE_URL"), "/")
		}
	case ProviderAnthropic:
		if c.APIKey == "" {
			c.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	case ProviderOllama:
		if c.Host == "" {
			c.Host = strings.TrimSuffix(os.Getenv("OLLAMA_HOST"), "/")
		}
	case ProviderBedrock:
		if c.Region == "" {
			c.Region = os.Getenv("AWS_REGION")
		}
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if !slices.Contains(Providers, c.Provider) {
		return fmt.Errorf("ai config: %w: %q", ErrUnsupportedProvider, c.Provider)
	}
	if c.Model == "" {
		return errors.New("ai config: Model is required")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return errors.New("ai config: Temperature must be between 0 and 2")
	}
	if c.MaxTokens <= 0 {
		return errors.New("ai config: MaxTokens must be greater than 0")
	}
	return nil
}
