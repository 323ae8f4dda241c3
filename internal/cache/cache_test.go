package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockdash/internal/model"
)

func TestNewKey_OrderAndCaseInsensitive(t *testing.T) {
	a := NewKey([]string{"TCS.NS", "RELIANCE.NS"}, model.Period1y, model.Interval)
	b := NewKey([]string{"reliance.ns", "tcs.ns"}, model.Period1y, model.Interval)
	assert.Equal(t, a, b)

	c := NewKey([]string{"TCS.NS", "RELIANCE.NS"}, model.Period5d, model.Interval)
	assert.NotEqual(t, a, c)

	d := NewKey([]string{"TCS.NS"}, model.Period1y, model.Interval)
	assert.NotEqual(t, a, d)
}

func TestCache_TTLExpiry(t *testing.T) {
	now := time.Date(2025, 8, 20, 10, 0, 0, 0, time.UTC)
	c := New(60 * time.Second)
	c.Now = func() time.Time { return now }

	key := NewKey([]string{"RELIANCE.NS"}, model.Period1y, model.Interval)
	res := model.EmptyResult()
	c.Put(key, res)

	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Same(t, res, got)

	// One second before expiry: still fresh.
	now = now.Add(59 * time.Second)
	_, ok = c.Get(key)
	assert.True(t, ok)

	// At exactly the TTL the entry is stale.
	now = now.Add(time.Second)
	_, ok = c.Get(key)
	assert.False(t, ok)
}

func TestCache_MissOnUnknownKey(t *testing.T) {
	c := New(time.Minute)
	_, ok := c.Get(NewKey([]string{"X.NS"}, model.Period1mo, model.Interval))
	assert.False(t, ok)
}

func TestCache_SweepDropsOnlyExpired(t *testing.T) {
	now := time.Date(2025, 8, 20, 10, 0, 0, 0, time.UTC)
	c := New(60 * time.Second)
	c.Now = func() time.Time { return now }

	old := NewKey([]string{"OLD.NS"}, model.Period1y, model.Interval)
	c.Put(old, model.EmptyResult())

	now = now.Add(45 * time.Second)
	fresh := NewKey([]string{"FRESH.NS"}, model.Period1y, model.Interval)
	c.Put(fresh, model.EmptyResult())

	now = now.Add(30 * time.Second) // old is 75s, fresh is 30s
	assert.Equal(t, 1, c.Sweep())
	assert.Equal(t, 1, c.Len())

	_, ok := c.Get(fresh)
	assert.True(t, ok)
	_, ok = c.Get(old)
	assert.False(t, ok)
}
