package infer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDependencies_TaggedFields(t *testing.T) {
	type shape struct {
		User    string `task:"fetch_user"`
		Orders  []int  `task:"fetch_orders"`
		Ignored string
		Off     string `task:"-"`
	}

	deps := Dependencies(shape{})
	assert.Equal(t, []string{"fetch_user", "fetch_orders"}, deps)
}

func TestDependencies_PointerShape(t *testing.T) {
	type shape struct {
		A string `task:"a"`
	}

	assert.Equal(t, []string{"a"}, Dependencies(&shape{}))
	assert.Equal(t, []string{"a"}, Dependencies((*shape)(nil)))
}

func TestDependencies_DuplicatesCollapse(t *testing.T) {
	type shape struct {
		First  string `task:"a"`
		Second string `task:"a,optional"`
		Third  string `task:"b"`
	}

	assert.Equal(t, []string{"a", "b"}, Dependencies(shape{}))
}

func TestDependencies_FailsOpen(t *testing.T) {
	assert.Nil(t, Dependencies(nil))
	assert.Nil(t, Dependencies(42))
	assert.Nil(t, Dependencies("not a struct"))
	assert.Nil(t, Dependencies(map[string]any{"a": 1}))
	assert.Nil(t, Dependencies(struct{}{}))
}

func TestBind_PopulatesTaggedFields(t *testing.T) {
	type shape struct {
		User   string `task:"fetch_user"`
		Count  int    `task:"count"`
		Plain  string
		Absent string `task:"never_registered"`
	}

	var s shape
	err := Bind(Inputs{"fetch_user": "alice", "count": 3}, &s)
	require.NoError(t, err)
	assert.Equal(t, "alice", s.User)
	assert.Equal(t, 3, s.Count)
	assert.Empty(t, s.Plain)
	assert.Empty(t, s.Absent, "missing inputs leave the field zero-valued")
}

func TestBind_InterfaceField(t *testing.T) {
	type shape struct {
		Err error `task:"failure"`
	}

	var s shape
	err := Bind(Inputs{"failure": assert.AnError}, &s)
	require.NoError(t, err)
	assert.Same(t, assert.AnError, s.Err)
}

func TestBind_TypeMismatch(t *testing.T) {
	type shape struct {
		Count int `task:"count"`
	}

	var s shape
	err := Bind(Inputs{"count": "three"}, &s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "type mismatch")
}

func TestBind_RejectsNonPointerTargets(t *testing.T) {
	type shape struct {
		A string `task:"a"`
	}

	require.Error(t, Bind(Inputs{}, shape{}))
	require.Error(t, Bind(Inputs{}, nil))
	require.Error(t, Bind(Inputs{}, (*shape)(nil)))
}

func TestInputs_Value(t *testing.T) {
	in := Inputs{"a": 1}

	v, ok := in.Value("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = in.Value("b")
	assert.False(t, ok)
}
