package ai

import "errors"

var (
	// ErrUnsupportedProvider is returned for a provider name not in Providers.
	ErrUnsupportedProvider = errors.New("unsupported model provider")

	// ErrMissingAPIKey is returned when a hosted provider has no API key.
	ErrMissingAPIKey = errors.New("api key required")

	// ErrEmptyResponse is returned when the model produced no choices.
	ErrEmptyResponse = errors.New("model returned no choices")
)
