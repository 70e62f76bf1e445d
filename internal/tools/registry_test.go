package tools

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type echoTool struct {
	name  string
	delay time.Duration
	fail  bool
}

func (e *echoTool) Name() string        { return e.name }
func (e *echoTool) Description() string { return "echoes its input" }
func (e *echoTool) Parameters() map[string]interface{} {
	return map[string]interface{}{"type": "object"}
}

func (e *echoTool) Execute(ctx context.Context, params map[string]interface{}) (*ToolResult, error) {
	if e.fail {
		return nil, errors.New("echo failed")
	}
	select {
	case <-time.After(e.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	text, _ := params["text"].(string)
	return &ToolResult{Success: true, Output: text}, nil
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	require.NoError(t, r.Register(&echoTool{name: "echo"}))
	assert.Error(t, r.Register(&echoTool{name: "echo"}), "duplicate names must be rejected")

	tool, err := r.Get("echo")
	require.NoError(t, err)
	assert.Equal(t, "echo", tool.Name())

	_, err = r.Get("missing")
	assert.Error(t, err)
	assert.Equal(t, map[string]string{"echo": "echoes its input"}, r.List())
}

func TestRegistry_ToolsSorted(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, r.Register(&echoTool{name: name}))
	}
	var names []string
	for _, tool := range r.Tools() {
		names = append(names, tool.Name())
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)
}

func TestRegistry_Execute(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	require.NoError(t, r.Register(&echoTool{name: "echo"}))
	require.NoError(t, r.Register(&echoTool{name: "slow", delay: time.Second}))
	require.NoError(t, r.Register(&echoTool{name: "broken", fail: true}))

	t.Run("success", func(t *testing.T) {
		res, err := r.Execute(context.Background(), "echo", map[string]interface{}{"text": "hi"}, ExecutionContext{})
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, "hi", res.Output)
	})

	t.Run("timeout", func(t *testing.T) {
		res, err := r.Execute(context.Background(), "slow", nil, ExecutionContext{Timeout: 20 * time.Millisecond})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.False(t, res.Success)
	})

	t.Run("tool error", func(t *testing.T) {
		res, err := r.Execute(context.Background(), "broken", nil, ExecutionContext{})
		assert.Error(t, err)
		assert.Equal(t, "echo failed", res.Error)
	})

	t.Run("unknown tool", func(t *testing.T) {
		res, err := r.Execute(context.Background(), "nope", nil, ExecutionContext{})
		assert.Error(t, err)
		assert.Nil(t, res)
	})
}
