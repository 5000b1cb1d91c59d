package session

import (
	"testing"

	"github.com/hupe1980/goswarm/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Interface compliance (compile-time assertion)
var _ Store = (*InMemoryStore)(nil)

func TestInMemoryStore_UnknownSessionIsEmpty(t *testing.T) {
	s := NewInMemoryStore()
	history, err := s.History("nope")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestInMemoryStore_AppendAndHistory(t *testing.T) {
	s := NewInMemoryStore()
	require.NoError(t, s.Append("sess1", core.NewUserMessage("hi")))
	require.NoError(t, s.Append("sess1", core.NewAssistantMessage("hello")))

	history, err := s.History("sess1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, core.RoleUser, history[0].Role)
	assert.Equal(t, core.RoleAssistant, history[1].Role)

	// Mutating the returned slice must not leak into the store.
	history[0] = core.NewUserMessage("mutated")
	fresh, err := s.History("sess1")
	require.NoError(t, err)
	assert.Equal(t, "hi", fresh[0].Content)
}

func TestInMemoryStore_Clear(t *testing.T) {
	s := NewInMemoryStore()
	require.NoError(t, s.Append("sess1", core.NewUserMessage("hi")))
	s.Clear("sess1")

	history, err := s.History("sess1")
	require.NoError(t, err)
	assert.Empty(t, history)
}
