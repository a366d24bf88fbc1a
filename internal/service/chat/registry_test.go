package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterOverwritesKeepingOrder(t *testing.T) {
	r := NewRegistry()
	r.Register("c1", "alice", "general")
	r.Register("c2", "bob", "general")
	r.Register("c1", "alice2", "general")

	users := r.ListByRoom("general")
	require.Len(t, users, 2)
	assert.Equal(t, "alice2", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)
}

func TestRegistry_UpdateRoomAndRemove(t *testing.T) {
	r := NewRegistry()
	r.Register("c1", "alice", "general")

	r.UpdateRoom("missing", "tech")
	_, ok := r.Get("missing")
	assert.False(t, ok)

	r.UpdateRoom("c1", "tech")
	assert.Empty(t, r.ListByRoom("general"))
	assert.Len(t, r.ListByRoom("tech"), 1)

	r.Remove("c1")
	r.Remove("c1")
	assert.Empty(t, r.List())
}

func TestRegistry_DuplicateUsernamesAllowed(t *testing.T) {
	r := NewRegistry()
	r.Register("c1", "sam", "general")
	r.Register("c2", "sam", "general")
	assert.Len(t, r.ListByRoom("general"), 2)
}
