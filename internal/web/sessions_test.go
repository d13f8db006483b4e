package web

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datefilter/internal/config"
	"datefilter/internal/view"
)

func TestSessionStoreExpiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store := newSessionStore(time.Minute)
	store.now = func() time.Time { return now }

	sess := store.create()
	assert.Equal(t, view.StateEmpty, sess.view.State())
	assert.Same(t, sess, store.get(sess.id))

	now = now.Add(50 * time.Second)
	require.NotNil(t, store.get(sess.id), "access refreshes the idle clock")

	now = now.Add(50 * time.Second)
	require.NotNil(t, store.get(sess.id))

	now = now.Add(2 * time.Minute)
	assert.Nil(t, store.get(sess.id))
	assert.Zero(t, store.count())
	assert.Nil(t, store.get(""))
	assert.Nil(t, store.get("unknown"))
}

func TestSessionStoreSweep(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store := newSessionStore(time.Minute)
	store.now = func() time.Time { return now }

	stale := store.create()
	now = now.Add(45 * time.Second)
	fresh := store.create()
	now = now.Add(30 * time.Second)

	assert.Equal(t, 1, store.sweep())
	assert.Equal(t, 1, store.count())
	assert.Nil(t, store.get(stale.id))
	assert.NotNil(t, store.get(fresh.id))
}

func TestRunSweeperStopsWithContext(t *testing.T) {
	store := newSessionStore(time.Millisecond)
	store.create()

	ctx, cancel := context.WithCancel(context.Background())
	swept := make(chan int, 1)
	done := make(chan struct{})
	go func() {
		store.runSweeper(ctx, 5*time.Millisecond, func(n int) {
			select {
			case swept <- n:
			default:
			}
		})
		close(done)
	}()

	select {
	case n := <-swept:
		assert.Equal(t, 1, n)
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper never ran")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestSweepInterval(t *testing.T) {
	assert.Equal(t, 15*time.Minute, sweepInterval(30*time.Minute))
	assert.Equal(t, time.Second, sweepInterval(time.Millisecond))
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.Addr = "127.0.0.1:0"
	app, err := NewApp(cfg, nil, "test")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
