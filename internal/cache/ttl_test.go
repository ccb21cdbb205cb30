package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetMissing(t *testing.T) {
	c := NewTTLCache[string, int]()
	_, ok := c.Get("missing")
	assert.False(t, ok)
}

func TestSetAndGet(t *testing.T) {
	c := NewTTLCache[string, int]()
	c.Set("k", 42, time.Minute)

	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestExpiry(t *testing.T) {
	c := NewTTLCache[string, int]()
	c.Set("k", 42, 10*time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestZeroTTLNeverStores(t *testing.T) {
	c := NewTTLCache[string, int]()
	c.Set("k", 42, 0)

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestDelete(t *testing.T) {
	c := NewTTLCache[string, int]()
	c.Set("k", 1, time.Minute)
	c.Delete("k")

	_, ok := c.Get("k")
	assert.False(t, ok)
}
