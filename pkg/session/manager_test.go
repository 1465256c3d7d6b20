package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/internal/testutils"
	"github.com/aretw0/turing/pkg/adapters/memory"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/machine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func unary(t *testing.T) *machine.Machine {
	t.Helper()
	m, err := turing.Compile(testutils.UnaryIncrement())
	require.NoError(t, err)
	return m
}

func TestManager_StepAndFinish(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	mgr := NewManager(turing.New(turing.WithStore(store)))

	id, err := mgr.Start(ctx, unary(t), "11")
	require.NoError(t, err)
	assert.Equal(t, []string{id}, mgr.List())

	_, err = mgr.Finish(ctx, id)
	assert.ErrorIs(t, err, ErrStillRunning)

	err = mgr.WithLock(ctx, id, func(ctx context.Context, live *Live) error {
		assert.Equal(t, "11", live.Input)
		_, err := live.Run(ctx)
		return err
	})
	require.NoError(t, err)

	record, err := mgr.Finish(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, record.ID)
	assert.Equal(t, "111", record.Result.Output())
	assert.Empty(t, mgr.List(), "finished sessions are forgotten")

	stored, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, stored.Result.Outcome)

	err = mgr.WithLock(ctx, id, func(context.Context, *Live) error { return nil })
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_StartOptions(t *testing.T) {
	ctx := context.Background()
	mgr := NewManager(turing.New())

	m, err := turing.Compile(testutils.Looper())
	require.NoError(t, err)

	id, err := mgr.Start(ctx, m, "a", turing.WithStepLimit(2))
	require.NoError(t, err)

	err = mgr.WithLock(ctx, id, func(ctx context.Context, live *Live) error {
		res, err := live.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.ReasonStepLimitExceeded, res.Reason)
		assert.Equal(t, 2, res.Steps)
		return nil
	})
	require.NoError(t, err)

	_, err = mgr.Start(ctx, m, "b")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestManager_Delete(t *testing.T) {
	ctx := context.Background()
	mgr := NewManager(turing.New())

	id, err := mgr.Start(ctx, unary(t), "1")
	require.NoError(t, err)

	require.NoError(t, mgr.Delete(ctx, id))
	assert.Empty(t, mgr.List())
	assert.ErrorIs(t, mgr.Delete(ctx, id), domain.ErrSessionNotFound)
}

func TestManager_LockLifecycle(t *testing.T) {
	ctx := context.Background()
	mgr := NewManager(turing.New(), WithMaxSessions(0))
	m := unary(t)
	count := 1000

	for i := 0; i < count; i++ {
		id, err := mgr.Start(ctx, m, "1")
		require.NoError(t, err)
		_ = mgr.WithLock(ctx, id, func(context.Context, *Live) error { return nil })
		require.NoError(t, mgr.Delete(ctx, id))
	}
	_ = mgr.WithLock(ctx, "unknown", func(context.Context, *Live) error { return nil })

	assert.Empty(t, mgr.locks, "locks are released once unused")
	assert.Empty(t, mgr.sessions)
}

func TestManager_Locking(t *testing.T) {
	ctx := context.Background()
	mgr := NewManager(turing.New())

	id, err := mgr.Start(ctx, unary(t), "1111111111")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = mgr.WithLock(ctx, id, func(ctx context.Context, live *Live) error {
				live.Step(ctx)
				return nil
			})
		}()
	}
	wg.Wait()

	err = mgr.WithLock(ctx, id, func(ctx context.Context, live *Live) error {
		// 10 moves over the input, one write, then the halt
		assert.Equal(t, 11, live.Steps())
		assert.Equal(t, domain.StatusAccepted, live.Status())
		assert.Len(t, live.Trace(), 12)
		return nil
	})
	require.NoError(t, err)
}

func TestManager_IdleEviction(t *testing.T) {
	ctx := context.Background()
	clk := &clock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	mgr := NewManager(turing.New(), WithIdleTimeout(time.Minute), withClock(clk.Now))
	m := unary(t)

	stale, err := mgr.Start(ctx, m, "1")
	require.NoError(t, err)
	clk.Advance(30 * time.Second)
	fresh, err := mgr.Start(ctx, m, "1")
	require.NoError(t, err)

	clk.Advance(45 * time.Second)
	assert.Equal(t, 1, mgr.Prune())
	assert.Equal(t, []string{fresh}, mgr.List())

	err = mgr.WithLock(ctx, stale, func(context.Context, *Live) error { return nil })
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	// Using a session keeps it alive
	clk.Advance(45 * time.Second)
	require.NoError(t, mgr.WithLock(ctx, fresh, func(context.Context, *Live) error { return nil }))
	clk.Advance(45 * time.Second)
	assert.Equal(t, 0, mgr.Prune())
}

func TestManager_MaxSessions(t *testing.T) {
	ctx := context.Background()
	mgr := NewManager(turing.New(), WithMaxSessions(2), WithIdleTimeout(0))
	m := unary(t)

	for i := 0; i < 2; i++ {
		_, err := mgr.Start(ctx, m, "")
		require.NoError(t, err)
	}
	_, err := mgr.Start(ctx, m, "")
	assert.ErrorIs(t, err, ErrLimitReached)
}

func TestManager_MaxSessionsConcurrent(t *testing.T) {
	ctx := context.Background()
	mgr := NewManager(turing.New(), WithMaxSessions(5), WithIdleTimeout(0))
	m := unary(t)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		started int
		refused int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := mgr.Start(ctx, m, "1")
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				started++
			} else {
				assert.ErrorIs(t, err, ErrLimitReached)
				refused++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, started)
	assert.Equal(t, 45, refused)
	assert.Len(t, mgr.List(), 5)
}

func TestManager_FailedStartFreesSlot(t *testing.T) {
	ctx := context.Background()
	mgr := NewManager(turing.New(), WithMaxSessions(1), WithIdleTimeout(0))
	m := unary(t)

	_, err := mgr.Start(ctx, m, "x")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = mgr.Start(ctx, m, "1")
	assert.NoError(t, err)
}
