package scripts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash(t *testing.T) {
	// SHA1 of "return 1", as reported by SCRIPT LOAD
	assert.Equal(t, "e0e1f9fabfc9d4800c877a703b823ac0578ff8db", Hash([]byte("return 1")))
}

func TestCache_RefCounting(t *testing.T) {
	c := New()
	code := []byte("return redis.call('GET', KEYS[1])")

	h1 := c.Add(code)
	h2 := c.Add(code)
	require.Equal(t, h1, h2)
	assert.Equal(t, 1, c.Len())

	c.Remove(h1)
	got, ok := c.Get(h1)
	require.True(t, ok, "one reference remains")
	assert.Equal(t, code, got)

	c.Remove(h1)
	_, ok = c.Get(h1)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())

	assert.NotPanics(t, func() { c.Remove("unknown") })
}

func TestCache_AddCopiesInput(t *testing.T) {
	c := New()
	code := []byte("return 1")
	h := c.Add(code)
	code[0] = 'X'

	got, _ := c.Get(h)
	assert.Equal(t, "return 1", string(got))
}
