package pipeline

import (
	"github.com/poiesic/lorekeeper/ai/langchain"
	"github.com/poiesic/lorekeeper/core"
	"github.com/poiesic/lorekeeper/extraction"
	"github.com/poiesic/lorekeeper/journal"
)

// TokenCounter counts the tokens text occupies for a model.
type TokenCounter func(model, text string) int

// Estimate is the projected model usage of a run. Output tokens are not
// included.
type Estimate struct {
	Files        int
	Chunks       int
	CachedChunks int
	Calls        int
	InputTokens  int
}

// EstimateUsage projects model calls and prompt tokens for docs. Chunks
// that idx already holds a matching successful record for cost nothing.
// A nil counter uses langchaingo's tokenizer.
func EstimateUsage(docs []Document, opts extraction.Options, model string, idx *journal.Index, counter TokenCounter) *Estimate {
	if counter == nil {
		counter = langchain.CountTokens
	}

	est := &Estimate{Files: len(docs)}
	system := counter(model, opts.Prompts.System)

	for _, doc := range docs {
		for i, chunk := range doc.Chunks {
			est.Chunks++
			if idx != nil {
				if _, ok := idx.Lookup(doc.Path, i, core.ChunkHash(chunk)); ok {
					est.CachedChunks++
					continue
				}
			}

			primary := system + counter(model, opts.Prompts.UserMessage(chunk))
			est.Calls++
			est.InputTokens += primary
			if opts.Gleaning {
				// the gleaning call replays the primary exchange
				est.Calls++
				est.InputTokens += primary + counter(model, opts.Prompts.GleaningMessage(chunk))
			}
		}
	}

	if opts.LLMMerge && len(docs) > 0 && est.Chunks > 1 {
		est.Calls++
	}
	return est
}
