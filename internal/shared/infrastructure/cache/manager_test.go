package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions(addr string) Options {
	return Options{
		Addr:        addr,
		MaxRetries:  3,
		BaseDelay:   10 * time.Millisecond,
		MaxDelay:    20 * time.Millisecond,
		DialTimeout: 200 * time.Millisecond,
	}
}

func TestManager_ConnectAndSessionRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	m := NewManager(testOptions(mr.Addr()))
	ctx := context.Background()

	require.NoError(t, m.Connect(ctx))
	require.True(t, m.IsReady())

	// Connect while ready is a no-op
	require.NoError(t, m.Connect(ctx))
	assert.Equal(t, StateReady, m.State())

	require.NoError(t, m.SetSession(ctx, "session:42", "payload", time.Minute))
	val, ok, err := m.GetSession(ctx, "session:42")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "payload", val)

	require.NoError(t, m.DeleteSession(ctx, "session:42"))
	_, ok, err = m.GetSession(ctx, "session:42")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Disconnect())
	assert.Equal(t, StateDisconnected, m.State())
	// Disconnect is idempotent
	require.NoError(t, m.Disconnect())
}

func TestManager_OperationsBeforeConnect(t *testing.T) {
	m := NewManager(testOptions("localhost:0"))
	ctx := context.Background()

	err := m.SetSession(ctx, "k", "v", time.Minute)
	assert.ErrorIs(t, err, ErrNotInitialized)

	_, _, err = m.GetSession(ctx, "k")
	assert.ErrorIs(t, err, ErrNotInitialized)

	err = m.DeleteSession(ctx, "k")
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestManager_ConnectFailureDoesNotError(t *testing.T) {
	// Nothing listens on this address; Connect must swallow the failure.
	m := NewManager(testOptions("127.0.0.1:1"))

	require.NoError(t, m.Connect(context.Background()))
	assert.False(t, m.IsReady())
}

func TestManager_RetryExhaustionEntersFailed(t *testing.T) {
	m := NewManager(testOptions("127.0.0.1:1"))
	ctx := context.Background()

	require.NoError(t, m.Connect(ctx))

	require.Eventually(t, func() bool {
		return m.State() == StateFailed
	}, 5*time.Second, 10*time.Millisecond, "manager should give up after max retries")

	// Failed is terminal: operations keep skipping, readiness stays false.
	assert.False(t, m.IsReady())
	require.NoError(t, m.SetSession(ctx, "k", "v", time.Minute))
	_, ok, err := m.GetSession(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManager_ExplicitConnectRecoversFromFailed(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()

	m := NewManager(testOptions(addr))
	ctx := context.Background()

	require.NoError(t, m.Connect(ctx))
	require.True(t, m.IsReady())

	// Drop the server; the next command detects the loss and retries
	// until the budget is exhausted.
	mr.Close()
	require.NoError(t, m.SetSession(ctx, "k", "v", time.Minute))

	require.Eventually(t, func() bool {
		return m.State() == StateFailed
	}, 5*time.Second, 10*time.Millisecond)

	// A fresh server on the same address plus an explicit Connect recovers.
	require.NoError(t, mr.Restart())
	require.NoError(t, m.Connect(ctx))
	require.Eventually(t, m.IsReady, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, m.SetSession(ctx, "k", "v", time.Minute))
	val, ok, err := m.GetSession(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", val)
}
