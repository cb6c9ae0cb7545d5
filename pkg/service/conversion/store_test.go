package conversion

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/amirasaad/fxconverter/pkg/currency"
	"github.com/amirasaad/fxconverter/pkg/notify"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(r RateResolver, storeOpts ...StoreOption) *Store {
	return NewStore(func(n notify.Notifier, opts ...Option) *Session {
		return newTestSession(r, n, opts...)
	}, storeOpts...)
}

type storeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *storeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *storeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestStore_CreateGetDelete(t *testing.T) {
	store := newTestStore(newStubResolver(nil))

	e := store.Create(WithAmount("5"))
	require.NotEqual(t, uuid.Nil, e.ID)
	assert.Equal(t, "5", e.Session.State().Amount)
	assert.Equal(t, 1, store.Len())

	got, err := store.Get(e.ID)
	require.NoError(t, err)
	assert.Same(t, e, got)

	require.NoError(t, store.Delete(e.ID))
	_, err = store.Get(e.ID)
	require.ErrorIs(t, err, ErrSessionNotFound)
	require.ErrorIs(t, store.Delete(e.ID), ErrSessionNotFound)
	assert.Equal(t, 0, store.Len())
}

func TestStore_SessionsAreIndependent(t *testing.T) {
	store := newTestStore(newStubResolver(map[[2]currency.Code]float64{
		{currency.USD, currency.EUR}: 0.9,
	}))
	a, b := store.Create(), store.Create()

	_, err := a.Session.Convert(context.Background())
	require.NoError(t, err)
	_, err = b.Session.SetTo(context.Background(), currency.Code("XXX"))
	require.ErrorIs(t, err, currency.ErrUnsupportedCurrency)
	b.Session.SetAmount("abc")
	_, err = b.Session.Convert(context.Background())
	require.ErrorIs(t, err, ErrInvalidAmount)

	assert.NotNil(t, a.Session.State().Result)
	assert.Nil(t, b.Session.State().Result)
	assert.Empty(t, a.Notices.Notices())
	assert.Len(t, b.Notices.Notices(), 1)
}

func TestStore_DeleteCancelsInFlight(t *testing.T) {
	g := newGatedResolver()
	store := newTestStore(g)
	e := store.Create()

	done := async(func() (State, error) { return e.Session.Convert(context.Background()) })
	call := g.next(t)
	require.NoError(t, store.Delete(e.ID))

	assert.Error(t, call.ctx.Err())
	call.reply <- 0.9
	res := wait(t, done)
	require.ErrorIs(t, res.err, ErrSuperseded)
	assert.Nil(t, res.state.Result)
}

func TestStore_IdleSessionsExpire(t *testing.T) {
	clock := &storeClock{now: fixedNow}
	store := newTestStore(newStubResolver(nil), WithIdleTTL(time.Hour), WithStoreClock(clock.Now))
	t.Cleanup(func() { _ = store.Close() })

	idle := store.Create()
	active := store.Create()

	clock.Advance(40 * time.Minute)
	_, err := store.Get(active.ID)
	require.NoError(t, err)

	clock.Advance(30 * time.Minute)
	_, err = store.Get(idle.ID)
	require.ErrorIs(t, err, ErrSessionNotFound, "expired sessions are not served before the sweep")

	assert.Equal(t, 1, store.sweep())
	assert.Equal(t, 1, store.Len())
	_, err = store.Get(active.ID)
	require.NoError(t, err, "lookups keep a session alive")
}

func TestStore_SweepCancelsInFlight(t *testing.T) {
	clock := &storeClock{now: fixedNow}
	g := newGatedResolver()
	store := newTestStore(g, WithIdleTTL(time.Minute), WithStoreClock(clock.Now))
	t.Cleanup(func() { _ = store.Close() })
	e := store.Create()

	done := async(func() (State, error) { return e.Session.Convert(context.Background()) })
	call := g.next(t)
	clock.Advance(time.Minute)
	require.Equal(t, 1, store.sweep())

	assert.Error(t, call.ctx.Err())
	call.reply <- 0.9
	require.ErrorIs(t, wait(t, done).err, ErrSuperseded)
}

func TestStore_WithoutIdleTTLKeepsSessions(t *testing.T) {
	clock := &storeClock{now: fixedNow}
	store := newTestStore(newStubResolver(nil), WithStoreClock(clock.Now))
	e := store.Create()

	clock.Advance(24 * time.Hour)

	assert.Equal(t, 0, store.sweep())
	_, err := store.Get(e.ID)
	require.NoError(t, err)
}

func TestStore_CloseDropsSessions(t *testing.T) {
	store := newTestStore(newStubResolver(nil), WithIdleTTL(time.Hour))
	store.Create()

	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
	assert.Equal(t, 0, store.Len())
}
