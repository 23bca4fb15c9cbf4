package node

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/taskmesh/internal/infer"
)

func noop(context.Context, infer.Inputs) (any, error) { return nil, nil }

func TestDepCount(t *testing.T) {
	n := New("a", []string{"b", "c"}, noop)
	n.SetDepCount(2)

	assert.EqualValues(t, 1, n.DecrementDepCount())
	assert.EqualValues(t, 0, n.DecrementDepCount())
}

func TestStateTransitions(t *testing.T) {
	n := New("a", nil, noop)
	assert.Equal(t, Pending, n.GetState())
	assert.False(t, n.Terminal())

	n.SetState(Running)
	assert.Equal(t, Running, n.GetState())
	assert.False(t, n.Terminal())

	n.SetState(Done)
	assert.True(t, n.Terminal())
}

func TestSkipIsIdempotent(t *testing.T) {
	n := New("a", nil, noop)
	var wg sync.WaitGroup
	wg.Add(1)

	first := errors.New("upstream failed")
	require.True(t, n.Skip(first, &wg))
	assert.False(t, n.Skip(errors.New("second path"), &wg), "second skip must be a no-op")

	wg.Wait()
	assert.Equal(t, Skipped, n.GetState())
	assert.Same(t, first, n.Error)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "pending", Pending.String())
	assert.Equal(t, "skipped", Skipped.String())
	assert.Equal(t, "unknown", State(99).String())
}
