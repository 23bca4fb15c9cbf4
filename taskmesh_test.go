package taskmesh

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/taskmesh/internal/ctxlog"
)

func testContext() context.Context {
	return ctxlog.WithLogger(context.Background(), ctxlog.Discard())
}

func value(v any) TaskFunc {
	return func(context.Context, Inputs) (any, error) { return v, nil }
}

func TestExecute_Completeness(t *testing.T) {
	results, err := Execute(testContext(), map[string]Task{
		"a": {Run: value("a")},
		"b": {
			Needs: []string{"a"},
			Run: func(_ context.Context, in Inputs) (any, error) {
				a, ok := in.Value("a")
				require.True(t, ok)
				return a.(string) + "b", nil
			},
		},
	})
	require.NoError(t, err)

	want := map[string]any{"a": "a", "b": "ab"}
	if diff := cmp.Diff(want, results); diff != "" {
		t.Errorf("result map mismatch (-want +got):\n%s", diff)
	}
}

func TestExecute_EmptyTaskSet(t *testing.T) {
	results, err := Execute(testContext(), map[string]Task{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestExecute_DependencyIsolation(t *testing.T) {
	seen := make(map[string][]string)
	var mu sync.Mutex
	record := func(name string) TaskFunc {
		return func(_ context.Context, in Inputs) (any, error) {
			keys := make([]string, 0, len(in))
			for k := range in {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			mu.Lock()
			seen[name] = keys
			mu.Unlock()
			return name, nil
		}
	}

	_, err := Execute(testContext(), map[string]Task{
		"a": {Run: record("a")},
		"b": {Run: record("b")},
		"c": {Needs: []string{"a"}, Run: record("c")},
		"d": {Needs: []string{"a", "b"}, Run: record("d")},
	})
	require.NoError(t, err)

	assert.Empty(t, seen["a"])
	assert.Empty(t, seen["b"])
	assert.Equal(t, []string{"a"}, seen["c"], "c must not see b's result")
	assert.Equal(t, []string{"a", "b"}, seen["d"])
}

func TestExecute_FailFast(t *testing.T) {
	boom := errors.New("boom")
	var bRan atomic.Bool

	_, err := Execute(testContext(), map[string]Task{
		"a": {Run: func(context.Context, Inputs) (any, error) { return nil, boom }},
		"b": {Needs: []string{"a"}, Run: func(context.Context, Inputs) (any, error) {
			bRan.Store(true)
			return nil, nil
		}},
	})
	require.Same(t, boom, err, "the task's exact error is propagated, unwrapped")
	assert.False(t, bRan.Load(), "b's run must never be invoked")
}

func TestExecute_MutualCycleRejectsBeforeAnyTaskRuns(t *testing.T) {
	var started atomic.Int32
	counting := func(context.Context, Inputs) (any, error) {
		started.Add(1)
		return 1, nil
	}

	_, err := Execute(testContext(), map[string]Task{
		"a": {Needs: []string{"b"}, Run: counting},
		"b": {Needs: []string{"a"}, Run: counting},
	})
	require.ErrorIs(t, err, ErrNoRootTasks)
	assert.EqualValues(t, 0, started.Load())
}

func TestExecute_CycleBehindRoot(t *testing.T) {
	_, err := Execute(testContext(), map[string]Task{
		"root": {Run: value(1)},
		"b":    {Needs: []string{"root", "c"}, Run: value(2)},
		"c":    {Needs: []string{"b"}, Run: value(3)},
	})
	require.ErrorIs(t, err, ErrCycleDetected)
}

func TestExecute_UnknownDependency(t *testing.T) {
	_, err := Execute(testContext(), map[string]Task{
		"a": {Needs: []string{"ghost"}, Run: value(1)},
	})
	require.ErrorIs(t, err, ErrUnknownDependency)
	assert.Contains(t, err.Error(), "ghost")
}

func TestExecute_SelfDependency(t *testing.T) {
	_, err := Execute(testContext(), map[string]Task{
		"a": {Needs: []string{"a"}, Run: value(1)},
	})
	require.ErrorIs(t, err, ErrSelfDependency)
}

func TestExecute_ValidationErrors(t *testing.T) {
	_, err := Execute(testContext(), map[string]Task{"a": {}})
	require.ErrorIs(t, err, ErrNilRun)

	_, err = Execute(testContext(), map[string]Task{"": {Run: value(1)}})
	require.ErrorIs(t, err, ErrEmptyTaskName)
}

func TestExecute_DuplicateNeedsCollapse(t *testing.T) {
	var aRuns atomic.Int32
	results, err := Execute(testContext(), map[string]Task{
		"a": {Run: func(context.Context, Inputs) (any, error) {
			aRuns.Add(1)
			return "A", nil
		}},
		"b": {Needs: []string{"a", "a"}, Run: func(_ context.Context, in Inputs) (any, error) {
			a, _ := in.Value("a")
			return a, nil
		}},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, aRuns.Load())
	assert.Equal(t, "A", results["b"])
}

func TestExecute_InferredDependenciesFromUsesShape(t *testing.T) {
	type reportInputs struct {
		User   string `task:"user"`
		Orders []int  `task:"orders"`
	}

	results, err := Execute(testContext(), map[string]Task{
		"user":   {Run: value("alice")},
		"orders": {Run: value([]int{1, 2, 3})},
		"report": {
			Uses: reportInputs{},
			Run: func(_ context.Context, in Inputs) (any, error) {
				var deps reportInputs
				if err := in.Decode(&deps); err != nil {
					return nil, err
				}
				return len(deps.Orders), nil
			},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, results["report"])
}

func TestExecute_MalformedUsesShapeBecomesRootTask(t *testing.T) {
	// A shape that cannot be parsed into named fields infers no
	// dependencies, so the task starts immediately instead of erroring.
	results, err := Execute(testContext(), map[string]Task{
		"a": {Uses: "not a struct", Run: value("ok")},
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", results["a"])
}

func TestExecute_NilResultsAreKept(t *testing.T) {
	results, err := Execute(testContext(), map[string]Task{
		"a": {Run: value(nil)},
	})
	require.NoError(t, err)
	v, present := results["a"]
	assert.True(t, present, "every registered name appears in the output")
	assert.Nil(t, v)
}
