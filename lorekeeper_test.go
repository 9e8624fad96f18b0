package lorekeeper

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/lorekeeper/ai/mock"
	"github.com/poiesic/lorekeeper/config"
	"github.com/poiesic/lorekeeper/export"
	"github.com/poiesic/lorekeeper/pipeline"
	"github.com/poiesic/lorekeeper/sink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ariaReply = `[{"name":"Aria","key":"Aria,knight","content":"A knight of the north.","priority":50}]`

func testConfig(t *testing.T, input string) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Input = input
	cfg.Gleaning = false
	cfg.ResumeLog = filepath.Join(t.TempDir(), "resume.jsonl")
	return cfg
}

func writeInput(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "saga.md")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestRun_WritesOutputsAndImports(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, writeInput(t, "Aria rides north."))
	cfg.Output = filepath.Join(dir, "out", "lore.json")
	cfg.OutputJSONL = filepath.Join(dir, "out", "lore.jsonl")
	cfg.OutputXLSX = filepath.Join(dir, "out", "lore.xlsx")
	cfg.Import = "sqlite:" + filepath.Join(dir, "content.db")
	cfg.Tags = []string{"saga"}

	model := mock.NewMockModel(ariaReply)
	report, err := Run(context.Background(), Options{Config: cfg, Model: model})
	require.NoError(t, err)

	assert.Equal(t, pipeline.StatusOK, report.Status)
	require.Len(t, report.Entries, 1)
	assert.Equal(t, []string{cfg.Output, cfg.OutputJSONL, cfg.OutputXLSX}, report.Outputs)
	assert.Equal(t, 1, report.Imported)

	n, err := export.VerifyFile(cfg.Output)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	store, err := OpenSink(context.Background(), cfg.Import)
	require.NoError(t, err)
	defer store.Close()
	rec, err := store.Get(context.Background(), sink.EntryType, "Aria")
	require.NoError(t, err)
	assert.Equal(t, []string{sink.ExtractedTag, "saga"}, rec.Tags)
}

func TestRun_ResumesFromLog(t *testing.T) {
	cfg := testConfig(t, writeInput(t, "Aria rides north."))

	_, err := Run(context.Background(), Options{Config: cfg, Model: mock.NewMockModel(ariaReply)})
	require.NoError(t, err)

	model := mock.NewMockModel()
	report, err := Run(context.Background(), Options{Config: cfg, Model: model})
	require.NoError(t, err)
	assert.Equal(t, 0, model.CallCount())
	assert.Len(t, report.Entries, 1)
}

func TestRun_PartialFailureWritesNothing(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, writeInput(t, "Aria rides north."))
	cfg.RetryMax = 2
	cfg.Output = filepath.Join(dir, "lore.json")
	cfg.Import = "badger:" + filepath.Join(dir, "store")

	model := mock.NewScriptedModel(mock.Reply{Err: errors.New("down")}, mock.Reply{Err: errors.New("down")})
	report, err := Run(context.Background(), Options{Config: cfg, Model: model})
	require.NoError(t, err)

	assert.Equal(t, pipeline.StatusPartialFailure, report.Status)
	assert.Equal(t, 1, report.Status.ExitCode())
	assert.NoFileExists(t, cfg.Output)
	assert.NoDirExists(t, filepath.Join(dir, "store"))
}

func TestRun_InputNotFound(t *testing.T) {
	cfg := testConfig(t, filepath.Join(t.TempDir(), "missing.md"))

	report, err := Run(context.Background(), Options{Config: cfg, Model: mock.NewMockModel()})
	require.NoError(t, err)
	assert.Equal(t, pipeline.StatusInputNotFound, report.Status)

	cfg.EstimateOnly = true
	report, err = Run(context.Background(), Options{Config: cfg})
	require.NoError(t, err)
	assert.Equal(t, pipeline.StatusInputNotFound, report.Status)
}

func TestRun_EstimateOnly(t *testing.T) {
	cfg := testConfig(t, writeInput(t, "# One\nAria.\n\n# Two\nBren.\n"))
	cfg.EstimateOnly = true

	report, err := Run(context.Background(), Options{Config: cfg})
	require.NoError(t, err)
	require.NotNil(t, report.Estimate)
	assert.Equal(t, 2, report.Estimate.Chunks)
	assert.Equal(t, 2, report.Estimate.Calls)
	assert.Positive(t, report.Estimate.InputTokens)
	assert.NoFileExists(t, cfg.ResumeLog, "estimation does not touch the resume log")
}

func TestRun_ConfigErrors(t *testing.T) {
	cfg := testConfig(t, "")
	_, err := Run(context.Background(), Options{Config: cfg})
	assert.ErrorIs(t, err, ErrNoInput)

	cfg = testConfig(t, "x.md")
	cfg.RetryMax = 0
	_, err = Run(context.Background(), Options{Config: cfg})
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestOpenSink(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	for _, target := range []string{"badger:" + filepath.Join(dir, "kv"), "SQLITE:" + filepath.Join(dir, "c.db")} {
		store, err := OpenSink(ctx, target)
		require.NoError(t, err, target)
		require.NoError(t, store.Close())
	}

	for _, target := range []string{"postgres:db", "badger:", "nocolon"} {
		_, err := OpenSink(ctx, target)
		assert.ErrorIs(t, err, ErrUnknownSink, target)
	}
}
