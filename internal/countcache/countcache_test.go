package countcache

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMissOnEmptyCache(t *testing.T) {
	c := New(time.Second)

	_, ok := c.Get(uuid.New(), "")
	assert.False(t, ok)
}

func TestSetThenGet(t *testing.T) {
	c := New(time.Second)
	recipient := uuid.New()

	c.Set(recipient, "", 7)

	count, ok := c.Get(recipient, "")
	require.True(t, ok)
	assert.Equal(t, int64(7), count)
}

func TestTypeKeysAreIndependent(t *testing.T) {
	c := New(time.Second)
	recipient := uuid.New()

	c.Set(recipient, "", 5)
	c.Set(recipient, "message", 2)

	count, ok := c.Get(recipient, "")
	require.True(t, ok)
	assert.Equal(t, int64(5), count)

	count, ok = c.Get(recipient, "message")
	require.True(t, ok)
	assert.Equal(t, int64(2), count)

	_, ok = c.Get(recipient, "quest")
	assert.False(t, ok)
}

func TestEntryExpiresAfterTTL(t *testing.T) {
	c := New(time.Millisecond * 20)
	recipient := uuid.New()

	c.Set(recipient, "", 3)

	_, ok := c.Get(recipient, "")
	require.True(t, ok)

	time.Sleep(time.Millisecond * 30)

	_, ok = c.Get(recipient, "")
	assert.False(t, ok)
}

// A cached value is returned unchanged within the TTL window, even when the
// underlying count has moved on. That staleness is the documented bound.
func TestStalenessWithinTTLWindow(t *testing.T) {
	c := New(time.Second * 30)
	recipient := uuid.New()

	c.Set(recipient, "", 3)

	// Writes land elsewhere; the cache is not told.
	first, ok := c.Get(recipient, "")
	require.True(t, ok)
	second, ok := c.Get(recipient, "")
	require.True(t, ok)

	assert.Equal(t, first, second)
}

func TestInvalidateDropsAllTypeKeysForRecipient(t *testing.T) {
	c := New(time.Minute)
	recipient := uuid.New()
	other := uuid.New()

	c.Set(recipient, "", 5)
	c.Set(recipient, "message", 2)
	c.Set(other, "", 9)

	c.Invalidate(recipient)

	_, ok := c.Get(recipient, "")
	assert.False(t, ok)
	_, ok = c.Get(recipient, "message")
	assert.False(t, ok)

	count, ok := c.Get(other, "")
	require.True(t, ok)
	assert.Equal(t, int64(9), count)
}

func TestZeroTTLFallsBackToDefault(t *testing.T) {
	c := New(0)
	assert.Equal(t, DEFAULT_TTL, c.ttl)
}
