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


package langchain

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/lorekeeper/ai"
	"github.com/tmc/langchaingo/llms"
)

// Model implements ai.Model on top of a langchaingo llms.Model.
type Model struct {
	llm         llms.Model
	provider    ai.Provider
	modelName   string
	temperature float64
	maxTokens   int
	logger      *slog.Logger
}

// NewModel creates a model for the provider named in config.
// The config is validated and normalized before use; the provider adapter is
// chosen here, once.
//
// Returns ai.Model interface (not *Model) to keep callers independent of the
// backend.
func NewModel(ctx context.Context, config *ai.Config) (ai.Model, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		llm llms.Model
		err error
	)
	switch config.Provider {
	case ai.ProviderOpenAI:
		llm, err = newOpenAI(config)
	case ai.ProviderOllama:
		llm, err = newOllama(config)
	case ai.ProviderAnthropic:
		llm, err = newAnthropic(config)
	case ai.ProviderBedrock:
		llm, err = newBedrock(ctx, config)
	default:
		return nil, fmt.Errorf("%w: %q", ai.ErrUnsupportedProvider, config.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s model: %w", config.Provider, err)
	}

	return NewFromLLM(llm, config), nil
}

// NewFromLLM wraps an already constructed langchaingo model. It is used by
// NewModel and by tests that substitute a fake backend.
func NewFromLLM(llm llms.Model, config *ai.Config) *Model {
	return &Model{
		llm:         llm,
		provider:    config.Provider,
		modelName:   config.Model,
		temperature: config.Temperature,
		maxTokens:   config.MaxTokens,
		logger:      slog.Default().With("component", "langchain-model", "provider", string(config.Provider)),
	}
}

// Invoke sends messages to the model and returns the first choice's text.
func (m *Model) Invoke(ctx context.Context, messages []ai.Message, opts ...ai.InvokeOption) (string, error) {
	o := ai.ApplyInvokeOptions(opts...)

	temperature := m.temperature
	if o.Temperature != nil {
		temperature = *o.Temperature
	}
	maxTokens := m.maxTokens
	if o.MaxTokens > 0 {
		maxTokens = o.MaxTokens
	}

	callOpts := []llms.CallOption{
		llms.WithTemperature(temperature),
		llms.WithMaxTokens(maxTokens),
	}
	if o.Stream != nil {
		stream := o.Stream
		callOpts = append(callOpts, llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
			return stream(ctx, string(chunk))
		}))
	}

	content := toMessageContent(messages)
	m.logger.Debug("invoking model", "model", m.modelName, "messages", len(content))

	response, err := m.llm.GenerateContent(ctx, content, callOpts...)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", ai.ErrEmptyResponse
	}
	return response.Choices[0].Content, nil
}

// Name returns the model identifier.
func (m *Model) Name() string {
	return m.modelName
}

// Provider returns the backend the model was created for.
func (m *Model) Provider() ai.Provider {
	return m.provider
}

func toMessageContent(messages []ai.Message) []llms.MessageContent {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		content = append(content, llms.TextParts(chatRole(msg.Role), msg.Content))
	}
	return content
}

func chatRole(role ai.Role) llms.ChatMessageType {
	switch role {
	case ai.RoleSystem:
		return llms.ChatMessageTypeSystem
	case ai.RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}
