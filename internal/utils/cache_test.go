package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheSetGetExpiry(t *testing.T) {
	c := GetCache()
	c.Purge()

	c.Set("k", "v", time.Minute)
	assert.Equal(t, "v", c.Get("k"))

	c.Set("short", "v", -time.Second) // already expired
	assert.Nil(t, c.Get("short"))

	c.Delete("k")
	assert.Nil(t, c.Get("k"))
}

func TestCachePurge(t *testing.T) {
	c := GetCache()
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)
	c.Purge()
	assert.Nil(t, c.Get("a"))
	assert.Nil(t, c.Get("b"))
}
