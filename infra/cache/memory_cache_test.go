package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/amirasaad/fxconverter/pkg/currency"
	"github.com/amirasaad/fxconverter/pkg/provider/exchange"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestMemoryCache(t *testing.T) (*MemoryCache, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	c := newMemoryCache(time.Hour, clock.Now)
	t.Cleanup(func() { _ = c.Close() })
	return c, clock
}

func sampleRate() *exchange.RateInfo {
	return &exchange.RateInfo{
		FromCurrency: currency.USD,
		ToCurrency:   currency.EUR,
		Rate:         0.9,
		Provider:     "test",
	}
}

func TestMemoryCache_SetGet(t *testing.T) {
	c, _ := newTestMemoryCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "USD:EUR", sampleRate(), time.Minute))

	got, err := c.Get(ctx, "USD:EUR")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.InDelta(t, 0.9, got.Rate, 1e-12)
	assert.Equal(t, currency.EUR, got.ToCurrency)
}

func TestMemoryCache_Miss(t *testing.T) {
	c, _ := newTestMemoryCache(t)

	got, err := c.Get(context.Background(), "nope")

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryCache_Expiry(t *testing.T) {
	c, clock := newTestMemoryCache(t)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", sampleRate(), time.Minute))

	clock.Advance(59 * time.Second)
	got, _ := c.Get(ctx, "k")
	assert.NotNil(t, got)

	clock.Advance(time.Second)
	got, _ = c.Get(ctx, "k")
	assert.Nil(t, got)

	assert.Equal(t, 1, c.Len())
	c.sweep()
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCache_StoresCopy(t *testing.T) {
	c, _ := newTestMemoryCache(t)
	ctx := context.Background()
	rate := sampleRate()
	require.NoError(t, c.Set(ctx, "k", rate, time.Minute))

	rate.Rate = 42
	got, _ := c.Get(ctx, "k")
	got.Rate = 7
	again, _ := c.Get(ctx, "k")

	assert.InDelta(t, 0.9, again.Rate, 1e-12)
}

func TestMemoryCache_ZeroTTLIgnored(t *testing.T) {
	c, _ := newTestMemoryCache(t)
	require.NoError(t, c.Set(context.Background(), "k", sampleRate(), 0))
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCache_Delete(t *testing.T) {
	c, _ := newTestMemoryCache(t)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", sampleRate(), time.Minute))

	require.NoError(t, c.Delete(ctx, "k"))

	got, _ := c.Get(ctx, "k")
	assert.Nil(t, got)
}

func TestMemoryCache_CloseTwice(t *testing.T) {
	c := NewMemoryCache(0)
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}
