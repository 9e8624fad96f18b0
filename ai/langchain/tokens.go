package langchain

import (
	"github.com/tmc/langchaingo/llms"
)

// CountTokens estimates how many tokens text occupies for the named model.
// Unknown models fall back to a generic encoding.
func CountTokens(model, text string) int {
	return llms.CountTokens(model, text)
}
