package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/lorekeeper/ai"
	"github.com/poiesic/lorekeeper/ai/mock"
	"github.com/poiesic/lorekeeper/extraction"
	"github.com/poiesic/lorekeeper/journal"
	"github.com/poiesic/lorekeeper/segment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const story = "# One\nAria rides north.\n\n# Two\nBren forges a blade.\n"

var characters = []string{"Aria", "Bren", "Cael"}

// loreModel answers with one entry per known character mentioned in the
// last message. Messages mentioning "cursed" fail.
func loreModel() *mock.MockModel {
	m := mock.NewMockModel()
	m.InvokeFunc = func(ctx context.Context, messages []ai.Message, opts ai.InvokeOptions) (string, error) {
		text := messages[len(messages)-1].Content
		if strings.Contains(text, "cursed") {
			return "", errors.New("model unavailable")
		}
		var out []string
		for i, name := range characters {
			if strings.Contains(text, name) {
				out = append(out, fmt.Sprintf(`{"name":%q,"key":%q,"content":"%s appears.","priority":%d}`, name, name, name, 10*(i+1)))
			}
		}
		return "[" + strings.Join(out, ",") + "]", nil
	}
	return m
}

func newController(t *testing.T, model ai.Model, journalPath string, opts ...Option) *Controller {
	t.Helper()
	idx, err := journal.LoadIndex(journalPath)
	require.NoError(t, err)
	j, err := journal.Open(journalPath)
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })

	extractor := extraction.NewExtractor(model, extraction.WithGleaning(false))
	merger := extraction.NewMerger(model)
	c, err := NewController(extractor, merger, j, append([]Option{WithIndex(idx), WithPoolSize(2)}, opts...)...)
	require.NoError(t, err)
	return c
}

func names(t *testing.T, r *Report) []string {
	t.Helper()
	var out []string
	for _, e := range r.Entries {
		out = append(out, e.Name)
	}
	return out
}

func TestController_SingleFile(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, filepath.Join(dir, "story.md"), story)
	log := filepath.Join(dir, "resume.jsonl")
	model := loreModel()

	report, err := newController(t, model, log).Run(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, StatusOK, report.Status)
	assert.True(t, report.Merged)
	assert.Equal(t, []string{"Bren", "Aria"}, names(t, report), "sorted by priority")
	assert.Equal(t, 2, model.CallCount())

	require.Len(t, report.Files, 1)
	assert.Equal(t, "chapters", report.Files[0].Strategy)
	assert.Equal(t, 2, report.Files[0].Attempted)

	idx, err := journal.LoadIndex(log)
	require.NoError(t, err)
	assert.Equal(t, 2, idx.Len())
	for _, r := range idx.Records() {
		assert.True(t, r.Success)
		assert.Equal(t, 1, r.Attempts)
	}
}

func TestController_RerunIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, filepath.Join(dir, "story.md"), story)
	log := filepath.Join(dir, "resume.jsonl")

	first, err := newController(t, loreModel(), log).Run(context.Background(), input)
	require.NoError(t, err)

	model := loreModel()
	second, err := newController(t, model, log).Run(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, 0, model.CallCount(), "every chunk is replayed from the journal")
	assert.Equal(t, first.Entries, second.Entries)
	assert.Equal(t, 2, second.Files[0].CacheHits)

	idx, err := journal.LoadIndex(log)
	require.NoError(t, err)
	assert.Equal(t, 2, idx.Lines, "cache hits append nothing")
}

func TestController_EditedChunkIsReextracted(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, filepath.Join(dir, "story.md"), story)
	log := filepath.Join(dir, "resume.jsonl")

	_, err := newController(t, loreModel(), log).Run(context.Background(), input)
	require.NoError(t, err)

	writeFile(t, input, strings.Replace(story, "Bren forges a blade.", "Bren forges a blade!", 1))

	model := loreModel()
	report, err := newController(t, model, log).Run(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, 1, model.CallCount())
	assert.Equal(t, 1, report.Files[0].CacheHits)
	assert.Equal(t, 1, report.Files[0].Attempted)
}

func TestController_RetriesUntilSuccess(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, filepath.Join(dir, "short.txt"), "Aria waits.")
	log := filepath.Join(dir, "resume.jsonl")

	model := mock.NewScriptedModel(
		mock.Reply{Err: errors.New("rate limited")},
		mock.Reply{Text: "not json"},
		mock.Reply{Text: `[{"name":"Aria","key":"Aria","content":"Waits."}]`},
	)

	report, err := newController(t, model, log).Run(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, StatusOK, report.Status)
	assert.Equal(t, []string{"Aria"}, names(t, report))
	assert.Equal(t, 3, model.CallCount())

	idx, err := journal.LoadIndex(log)
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Lines, "one record per attempted chunk")
	rec := idx.Records()[0]
	assert.True(t, rec.Success)
	assert.Equal(t, 3, rec.Attempts)
	assert.Empty(t, rec.Error)
}

func TestController_RetriesExhausted(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, filepath.Join(dir, "short.txt"), "A cursed tale of Aria.")
	log := filepath.Join(dir, "resume.jsonl")
	model := loreModel()

	report, err := newController(t, model, log, WithMaxRetries(2)).Run(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, StatusPartialFailure, report.Status)
	assert.False(t, report.Merged)
	assert.Empty(t, report.Entries)
	assert.Equal(t, 2, model.CallCount())

	failures := report.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, input, failures[0].Source)
	assert.Equal(t, 0, failures[0].ChunkIndex)
	assert.Equal(t, 2, failures[0].Attempts)
	assert.Contains(t, failures[0].Error, "model unavailable")

	idx, err := journal.LoadIndex(log)
	require.NoError(t, err)
	rec, ok := idx.Get(input, 0)
	require.True(t, ok)
	assert.False(t, rec.Success)
	assert.Equal(t, 2, rec.Attempts)
	assert.Empty(t, rec.Entries)

	t.Run("failed chunks are retried on the next run", func(t *testing.T) {
		healthy := mock.NewMockModel(`[{"name":"Aria","key":"Aria","content":"Cursed."}]`)
		report, err := newController(t, healthy, log).Run(context.Background(), input)
		require.NoError(t, err)
		assert.Equal(t, StatusOK, report.Status)
		assert.Equal(t, 1, healthy.CallCount())
	})
}

func TestController_BlankChunksSucceed(t *testing.T) {
	dir := t.TempDir()
	text := "Aria rides north. Bren forges a blade. Cael keeps watch. Aria sleeps. Bren wakes.\n\n" +
		strings.Repeat("\n", 120)
	input := writeFile(t, filepath.Join(dir, "story.txt"), text)
	log := filepath.Join(dir, "resume.jsonl")

	opts := segment.DefaultOptions()
	opts.Strategy = segment.StrategyFixed
	opts.ChunkSize = 100
	opts.Overlap = 0

	chunks, err := segment.Segment(text, opts)
	require.NoError(t, err)
	nonBlank := 0
	for _, c := range chunks {
		if strings.TrimSpace(c) != "" {
			nonBlank++
		}
	}
	require.Less(t, nonBlank, len(chunks), "input must produce blank chunks")

	model := loreModel()
	report, err := newController(t, model, log, WithSegmentOptions(opts)).Run(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, StatusOK, report.Status)
	assert.Empty(t, report.Failures())
	assert.Equal(t, nonBlank, model.CallCount(), "blank chunks never reach the model")
	assert.Equal(t, []string{"Cael", "Bren", "Aria"}, names(t, report))

	rerun := loreModel()
	again, err := newController(t, rerun, log, WithSegmentOptions(opts)).Run(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, StatusOK, again.Status)
	assert.Equal(t, 0, rerun.CallCount())
	assert.Equal(t, len(chunks), again.Files[0].CacheHits)
}

func TestController_Directory(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "lore")
	writeFile(t, filepath.Join(root, "b.md"), "Bren and Aria meet.")
	writeFile(t, filepath.Join(root, "a.md"), "Aria sets out.")
	writeFile(t, filepath.Join(root, "deep", "c.txt"), "Cael watches.")
	log := filepath.Join(dir, "resume.jsonl")
	model := loreModel()

	report, err := newController(t, model, log).Run(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, StatusOK, report.Status)
	require.Len(t, report.Files, 3)
	assert.Equal(t, filepath.Join(root, "a.md"), report.Files[0].Path)
	assert.Equal(t, filepath.Join(root, "b.md"), report.Files[1].Path)
	assert.Equal(t, filepath.Join(root, "deep", "c.txt"), report.Files[2].Path)
	assert.Len(t, report.Files[1].Entries, 2)

	assert.Equal(t, []string{"Cael", "Bren", "Aria"}, names(t, report), "deduplicated across files")
	assert.Equal(t, 3, model.CallCount(), "local merges never call the model")
}

func TestController_DirectoryWithFailedFile(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "lore")
	writeFile(t, filepath.Join(root, "a.md"), "Aria sets out.")
	writeFile(t, filepath.Join(root, "b.md"), "# Bren\nBren smiles.\n\n# Curse\nA cursed relic.\n")
	log := filepath.Join(dir, "resume.jsonl")

	report, err := newController(t, loreModel(), log).Run(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, StatusPartialFailure, report.Status)
	assert.False(t, report.Merged)
	assert.Nil(t, report.Entries)
	assert.Equal(t, []string{filepath.Join(root, "b.md")}, report.FailedFiles())

	failures := report.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, 1, failures[0].ChunkIndex)
	assert.Equal(t, 3, failures[0].Attempts)

	chunks, cacheHits, attempted, failed := report.Totals()
	assert.Equal(t, 3, chunks)
	assert.Equal(t, 0, cacheHits)
	assert.Equal(t, 3, attempted)
	assert.Equal(t, 1, failed)
}

func TestController_InputNotFound(t *testing.T) {
	dir := t.TempDir()
	model := loreModel()

	report, err := newController(t, model, filepath.Join(dir, "resume.jsonl")).Run(context.Background(), filepath.Join(dir, "nope.md"))
	require.NoError(t, err)
	assert.Equal(t, StatusInputNotFound, report.Status)
	assert.Equal(t, 2, report.Status.ExitCode())
	assert.Equal(t, 0, model.CallCount())
}

func TestController_JournalFailureIsFatal(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, filepath.Join(dir, "story.md"), story)

	j, err := journal.Open(filepath.Join(dir, "resume.jsonl"))
	require.NoError(t, err)
	require.NoError(t, j.Close())

	model := loreModel()
	c, err := NewController(extraction.NewExtractor(model, extraction.WithGleaning(false)), extraction.NewMerger(model), j)
	require.NoError(t, err)

	_, err = c.Run(context.Background(), input)
	assert.ErrorIs(t, err, journal.ErrPersistence)
	assert.Equal(t, 1, model.CallCount(), "the run stops at the first failed write")
}

func TestController_CancelStopsBetweenChunks(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, filepath.Join(dir, "story.md"), story)
	log := filepath.Join(dir, "resume.jsonl")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	model := mock.NewMockModel()
	model.InvokeFunc = func(context.Context, []ai.Message, ai.InvokeOptions) (string, error) {
		cancel()
		return `[{"name":"Aria","key":"Aria","content":"Rides."}]`, nil
	}

	report, err := newController(t, model, log).Run(ctx, input)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, model.CallCount())
	require.Len(t, report.Files, 1)
	assert.Equal(t, 1, report.Files[0].Attempted)

	idx, err := journal.LoadIndex(log)
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Len(), "the finished chunk is durable")
}

func TestController_Estimate(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, filepath.Join(dir, "story.md"), story)
	model := loreModel()

	words := func(_, text string) int { return len(strings.Fields(text)) }
	c := newController(t, model, filepath.Join(dir, "resume.jsonl"), WithTokenCounter("gpt-4o-mini", words))

	est, err := c.Estimate(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 1, est.Files)
	assert.Equal(t, 2, est.Chunks)
	assert.Equal(t, 2, est.Calls)
	assert.Positive(t, est.InputTokens)
	assert.Equal(t, 0, model.CallCount())
}

func TestNewController_Validation(t *testing.T) {
	model := loreModel()
	ext := extraction.NewExtractor(model)
	mer := extraction.NewMerger(model)
	j, err := journal.Open(filepath.Join(t.TempDir(), "resume.jsonl"))
	require.NoError(t, err)
	defer j.Close()

	_, err = NewController(nil, mer, j)
	assert.ErrorIs(t, err, ErrExtractorRequired)
	_, err = NewController(ext, nil, j)
	assert.ErrorIs(t, err, ErrMergerRequired)
	_, err = NewController(ext, mer, nil)
	assert.ErrorIs(t, err, ErrJournalRequired)
	_, err = NewController(ext, mer, j, WithMaxRetries(0))
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
	_, err = NewController(ext, mer, j, WithRetryDelay(-1))
	assert.Error(t, err)
	_, err = NewController(ext, mer, j, WithPoolSize(0))
	assert.Error(t, err)
}
