package extraction

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/lorekeeper/ai/mock"
	"github.com/poiesic/lorekeeper/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okResult(entries ...core.Entry) core.ExtractionResult {
	return core.ExtractionResult{Success: true, Data: entries}
}

func TestMerger_LocalDedup(t *testing.T) {
	m := NewMerger(nil)
	results := []core.ExtractionResult{
		okResult(entry("A", "short", 10)),
		{Success: false, Err: "boom", Data: []core.Entry{entry("Ghost", "ignored", 99)}},
		okResult(entry("a", "much longer description", 10), entry("B", "b", 30)),
	}

	out := m.Merge(context.Background(), results)
	require.Len(t, out, 2)
	assert.Equal(t, "B", out[0].Name)
	assert.Equal(t, "A", out[1].Name)
	assert.Equal(t, "much longer description", out[1].Content)
}

func TestMerger_ModelMerge(t *testing.T) {
	model := mock.NewMockModel(`[
		{"name": "Aria", "key": "Aria,knight", "content": "Combined description.", "priority": 10},
		{"name": "Aria (elder)", "key": "Aria", "content": "Her grandmother.", "priority": 90}
	]`)
	m := NewMerger(model, WithLLMMerge(true))

	out := m.Merge(context.Background(), []core.ExtractionResult{
		okResult(entry("Aria", "A knight.", 10)),
		okResult(entry("Aria", "An old woman.", 90)),
	})

	assert.Equal(t, 1, model.CallCount())
	require.Len(t, out, 2)
	// order-preserving because model merge is enabled
	assert.Equal(t, "Aria", out[0].Name)
	assert.Equal(t, "Aria (elder)", out[1].Name)

	call := model.Calls()[0]
	require.Len(t, call, 2)
	assert.Contains(t, call[1].Content, `"content": "An old woman."`)
}

func TestMerger_ModelMergeFallsBack(t *testing.T) {
	results := []core.ExtractionResult{
		okResult(entry("A", "short", 10)),
		okResult(entry("a", "much longer description", 10)),
	}

	tests := []struct {
		name  string
		model *mock.MockModel
	}{
		{"model error", mock.NewScriptedModel(mock.Reply{Err: errors.New("timeout")})},
		{"unparseable", mock.NewMockModel("I merged them for you.")},
		{"empty array", mock.NewMockModel("[]")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := NewMerger(tt.model, WithLLMMerge(true)).Merge(context.Background(), results)
			require.Len(t, out, 1)
			assert.Equal(t, "A", out[0].Name)
			assert.Equal(t, "much longer description", out[0].Content)
		})
	}
}

func TestMerger_ModelSkipped(t *testing.T) {
	t.Run("single result", func(t *testing.T) {
		model := mock.NewMockModel()
		out := NewMerger(model, WithLLMMerge(true)).Merge(context.Background(), []core.ExtractionResult{
			okResult(entry("A", "x", 1)),
		})
		assert.Len(t, out, 1)
		assert.Equal(t, 0, model.CallCount())
	})

	t.Run("no entries", func(t *testing.T) {
		model := mock.NewMockModel()
		out := NewMerger(model, WithLLMMerge(true)).Merge(context.Background(), []core.ExtractionResult{
			okResult(), okResult(),
		})
		assert.Empty(t, out)
		assert.Equal(t, 0, model.CallCount())
	})

	t.Run("disabled", func(t *testing.T) {
		model := mock.NewMockModel()
		out := NewMerger(model).Merge(context.Background(), []core.ExtractionResult{
			okResult(entry("A", "x", 1)), okResult(entry("B", "y", 2)),
		})
		assert.Len(t, out, 2)
		assert.Equal(t, 0, model.CallCount())
	})

	t.Run("merge local", func(t *testing.T) {
		model := mock.NewMockModel()
		out := NewMerger(model, WithLLMMerge(true)).MergeLocal([]core.ExtractionResult{
			okResult(entry("A", "x", 1)), okResult(entry("B", "y", 2)),
		})
		assert.Len(t, out, 2)
		assert.Equal(t, "A", out[0].Name, "order preserved")
		assert.Equal(t, 0, model.CallCount())
	})
}
