package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/glide-bridge/errors"
)

func TestTyped(t *testing.T) {
	table := NewTable()
	vecs := NewTyped[[][]byte](table, KindBytesVec)
	names := NewTyped[string](table, KindReply)

	h, err := vecs.Insert([][]byte{[]byte("GET"), []byte("key")})
	require.NoError(t, err)
	_, err = names.Insert("other")
	require.NoError(t, err)

	assert.Equal(t, 1, vecs.Len())
	assert.Equal(t, 1, names.Len())

	borrowed, err := vecs.Borrow(h)
	require.NoError(t, err)
	assert.Len(t, borrowed, 2)

	var each []Handle
	vecs.Each(func(eh Handle, _ [][]byte) bool {
		each = append(each, eh)
		return true
	})
	assert.Equal(t, []Handle{h}, each)

	got, err := vecs.Redeem(h)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("GET"), []byte("key")}, got)

	_, err = vecs.Redeem(h)
	assert.Equal(t, errors.KindInvalidHandle, errors.KindOf(err))
}

func TestTyped_WrongGoType(t *testing.T) {
	table := NewTable()
	h, err := table.Insert(KindReply, 42)
	require.NoError(t, err)

	_, err = NewTyped[string](table, KindReply).Borrow(h)
	assert.Equal(t, errors.KindInvalidHandle, errors.KindOf(err))
}

func TestShared(t *testing.T) {
	released := 0
	s := NewShared("span", func(string) { released++ })

	c, ok := s.Clone()
	require.True(t, ok)
	assert.Same(t, s, c)
	assert.EqualValues(t, 2, s.Refs())

	assert.False(t, s.Release())
	assert.Equal(t, 0, released)

	assert.True(t, c.Release())
	assert.Equal(t, 1, released)

	_, ok = s.Clone()
	assert.False(t, ok, "Clone after final release")

	assert.False(t, s.Release())
	assert.Equal(t, 1, released, "release runs once")
	assert.EqualValues(t, 0, s.Refs())
}

func TestShared_DropFromTable(t *testing.T) {
	released := false
	s := NewShared("span", func(string) { released = true })

	table := NewTable()
	_, err := table.Insert(KindSpan, s)
	require.NoError(t, err)
	require.NoError(t, table.Close())

	assert.True(t, released)
}
