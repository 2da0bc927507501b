package scan

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_InsertGetRemove(t *testing.T) {
	s := New()

	id := s.Insert("node-3:cursor-17")
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.NotEqual(t, FinishedCursor, id)

	state, ok := s.Get(id)
	require.True(t, ok)
	assert.Equal(t, "node-3:cursor-17", state)
	assert.Equal(t, 1, s.Len())

	s.Remove(id)
	_, ok = s.Get(id)
	assert.False(t, ok)

	s.Remove(id)
	s.Remove(FinishedCursor)
	assert.Equal(t, 0, s.Len())
}

func TestStore_FinishedNeverStored(t *testing.T) {
	s := New()
	_, ok := s.Get(FinishedCursor)
	assert.False(t, ok)
	assert.Equal(t, "finished", FinishedCursor)
}
