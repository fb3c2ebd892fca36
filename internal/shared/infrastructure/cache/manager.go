package cache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// State describes the connection manager lifecycle.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateReady
	StateReconnecting
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	case StateReconnecting:
		return "reconnecting"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

var (
	// ErrNotInitialized is returned when an operation is attempted before
	// the first Connect call. This is caller misuse, not a runtime fault.
	ErrNotInitialized = errors.New("cache: manager not initialized, call Connect first")
)

// Options configures the manager and its reconnect policy.
type Options struct {
	Addr        string
	Password    string
	DB          int
	MaxRetries  int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	DialTimeout time.Duration
}

// Manager wraps a Redis client behind a readiness state machine. The session
// cache is an optional dependency: operations silently skip when the
// connection is down instead of failing the request that touched them.
//
// Reconnect delay is min(attempt*BaseDelay, MaxDelay). After MaxRetries
// failed attempts the manager parks in StateFailed until an explicit Connect.
type Manager struct {
	opts Options

	mu          sync.Mutex
	state       State
	client      *redis.Client
	initialized bool
	generation  int
}

// NewManager creates a manager in the Disconnected state. No connection is
// attempted until Connect is called.
func NewManager(opts Options) *Manager {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 10
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = time.Second
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = 30 * time.Second
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 5 * time.Second
	}
	return &Manager{opts: opts, state: StateDisconnected}
}

// Connect establishes the connection. Calling while already Ready,
// Connecting or Reconnecting is a no-op. A failed attempt is logged and
// hands over to the background retry loop; it is never surfaced to the
// caller because the cache is best-effort for the system as a whole.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	if m.state == StateReady || m.state == StateConnecting || m.state == StateReconnecting {
		m.mu.Unlock()
		return nil
	}
	m.initialized = true
	m.generation++
	gen := m.generation
	m.setStateLocked(StateConnecting)
	m.mu.Unlock()

	if err := m.dial(ctx, gen); err != nil {
		log.Printf("[Cache] initial connection failed: %v", err)
		m.transition(gen, StateDisconnected)
		go m.reconnectLoop(gen)
		return nil
	}
	return nil
}

// Disconnect closes the connection. Idempotent if already closed.
func (m *Manager) Disconnect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.generation++ // cancels any in-flight retry loop
	client := m.client
	m.client = nil
	if m.state != StateDisconnected {
		m.setStateLocked(StateDisconnected)
	}
	if client == nil {
		return nil
	}
	return client.Close()
}

// IsReady reports whether the connection is currently usable. Callers must
// branch on this rather than assume readiness.
func (m *Manager) IsReady() bool {
	return m.State() == StateReady
}

// State returns a snapshot of the current state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// SetSession stores a session value. Skipped without error when the
// connection is not ready.
func (m *Manager) SetSession(ctx context.Context, key, value string, ttl time.Duration) error {
	client, err := m.readyClient()
	if err != nil || client == nil {
		return err
	}
	if err := client.Set(ctx, key, value, ttl).Err(); err != nil {
		m.connectionLost(err)
		return nil
	}
	return nil
}

// GetSession fetches a session value. The second return is false when the
// key is absent or the connection is not ready.
func (m *Manager) GetSession(ctx context.Context, key string) (string, bool, error) {
	client, err := m.readyClient()
	if err != nil || client == nil {
		return "", false, err
	}
	val, err := client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		m.connectionLost(err)
		return "", false, nil
	}
	return val, true, nil
}

// DeleteSession removes a session value. Skipped without error when the
// connection is not ready.
func (m *Manager) DeleteSession(ctx context.Context, key string) error {
	client, err := m.readyClient()
	if err != nil || client == nil {
		return err
	}
	if err := client.Del(ctx, key).Err(); err != nil {
		m.connectionLost(err)
	}
	return nil
}

func (m *Manager) readyClient() (*redis.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.initialized {
		return nil, ErrNotInitialized
	}
	if m.state != StateReady || m.client == nil {
		return nil, nil
	}
	return m.client, nil
}

// dial opens a fresh client and verifies it with a ping. The client is only
// installed if the manager is still on the same connect generation.
func (m *Manager) dial(ctx context.Context, gen int) error {
	client := redis.NewClient(&redis.Options{
		Addr:     m.opts.Addr,
		Password: m.opts.Password,
		DB:       m.opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, m.opts.DialTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generation != gen {
		client.Close()
		return nil
	}
	if m.client != nil {
		m.client.Close()
	}
	m.client = client
	m.setStateLocked(StateReady)
	return nil
}

// connectionLost marks the connection down and kicks off the retry loop.
func (m *Manager) connectionLost(cause error) {
	m.mu.Lock()
	if m.state != StateReady {
		m.mu.Unlock()
		return
	}
	log.Printf("[Cache] connection lost: %v", cause)
	if m.client != nil {
		m.client.Close()
		m.client = nil
	}
	gen := m.generation
	m.setStateLocked(StateReconnecting)
	m.mu.Unlock()

	go m.reconnectLoop(gen)
}

func (m *Manager) reconnectLoop(gen int) {
	m.transition(gen, StateReconnecting)

	for attempt := 1; attempt <= m.opts.MaxRetries; attempt++ {
		delay := time.Duration(attempt) * m.opts.BaseDelay
		if delay > m.opts.MaxDelay {
			delay = m.opts.MaxDelay
		}
		time.Sleep(delay)

		m.mu.Lock()
		stale := m.generation != gen || m.state != StateReconnecting
		m.mu.Unlock()
		if stale {
			return
		}

		if err := m.dial(context.Background(), gen); err != nil {
			log.Printf("[Cache] reconnect attempt %d/%d failed: %v", attempt, m.opts.MaxRetries, err)
			continue
		}
		log.Printf("[Cache] reconnected after %d attempt(s)", attempt)
		return
	}

	log.Printf("[Cache] giving up after %d attempts", m.opts.MaxRetries)
	m.transition(gen, StateFailed)
}

// transition moves to the target state unless the generation moved on.
func (m *Manager) transition(gen int, to State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generation != gen {
		return
	}
	m.setStateLocked(to)
}

func (m *Manager) setStateLocked(to State) {
	if m.state == to {
		return
	}
	log.Printf("[Cache] state %s -> %s", m.state, to)
	m.state = to
}
