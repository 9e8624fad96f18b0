package mock

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/lorekeeper/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockModel_ScriptedReplies(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	m := NewScriptedModel(Reply{Err: boom}, Reply{Text: "ok"})

	_, err := m.Invoke(ctx, []ai.Message{ai.User("one")})
	assert.ErrorIs(t, err, boom)

	out, err := m.Invoke(ctx, []ai.Message{ai.User("two")})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)

	_, err = m.Invoke(ctx, []ai.Message{ai.User("three")})
	assert.ErrorIs(t, err, ErrNoResponse)

	assert.Equal(t, 3, m.CallCount())
	calls := m.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "two", calls[1][0].Content)
}

func TestMockModel_InvokeFunc(t *testing.T) {
	m := NewMockModel()
	m.InvokeFunc = func(_ context.Context, msgs []ai.Message, _ ai.InvokeOptions) (string, error) {
		return msgs[len(msgs)-1].Content + "!", nil
	}

	out, err := m.Invoke(context.Background(), []ai.Message{ai.User("hi")})
	require.NoError(t, err)
	assert.Equal(t, "hi!", out)
	assert.Equal(t, 1, m.CallCount())
}

func TestMockModel_Stream(t *testing.T) {
	m := NewMockModel("streamed")
	var got string
	out, err := m.Invoke(context.Background(), nil, ai.WithStream(func(_ context.Context, chunk string) error {
		got += chunk
		return nil
	}))
	require.NoError(t, err)
	assert.Equal(t, "streamed", out)
	assert.Equal(t, "streamed", got)
}

func TestMockModel_CancelledContext(t *testing.T) {
	m := NewMockModel("unused")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Invoke(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)

	out, err := m.Invoke(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "unused", out)
}

func TestMockModel_Reset(t *testing.T) {
	m := NewMockModel("a")
	m.AddResponse("b")
	m.AddError(errors.New("c"))

	_, _ = m.Invoke(context.Background(), nil)
	m.Reset()

	assert.Equal(t, 0, m.CallCount())
	assert.Empty(t, m.Calls())
	out, err := m.Invoke(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "a", out)
}
