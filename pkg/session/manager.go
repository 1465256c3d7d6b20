package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/internal/logging"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/machine"
)

const (
	DefaultIdleTimeout = 15 * time.Minute
	DefaultMaxSessions = 1024
)

var (
	// ErrLimitReached is returned by Start when the manager is full.
	ErrLimitReached = errors.New("too many live sessions")
	// ErrStillRunning is returned by Finish for a session that has not halted.
	ErrStillRunning = errors.New("session is still running")
)

// Live is a session registered with a Manager.
type Live struct {
	*turing.Session
	Input     string
	StartedAt time.Time
	engine    *turing.Engine
	lastUsed  time.Time
}

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	engine *turing.Engine

	mu       sync.Mutex            // Global lock for both maps and reserved
	sessions map[string]*Live      // Live sessions by run ID
	locks    map[string]*lockEntry // Map of active locks
	reserved int                   // Slots claimed by starts in progress

	idleTimeout time.Duration
	maxSessions int
	now         func() time.Time
	logger      *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithIdleTimeout evicts sessions unused for longer than d.
// Non-positive values disable eviction.
func WithIdleTimeout(d time.Duration) Option {
	return func(m *Manager) {
		m.idleTimeout = d
	}
}

// WithMaxSessions caps the number of live sessions.
func WithMaxSessions(n int) Option {
	return func(m *Manager) {
		m.maxSessions = n
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// withClock replaces time.Now in tests.
func withClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a session manager whose sessions run on engine.
func NewManager(engine *turing.Engine, opts ...Option) *Manager {
	m := &Manager{
		engine:      engine,
		sessions:    make(map[string]*Live),
		locks:       make(map[string]*lockEntry),
		idleTimeout: DefaultIdleTimeout,
		maxSessions: DefaultMaxSessions,
		now:         time.Now,
		logger:      logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Engine returns the engine sessions are started on.
func (m *Manager) Engine() *turing.Engine {
	return m.engine
}

// Start begins a session of mach over input and returns its ID.
// Options, such as a step limit, apply to this session only.
func (m *Manager) Start(ctx context.Context, mach *machine.Machine, input string, opts ...turing.Option) (string, error) {
	engine := m.engine
	if len(opts) > 0 {
		engine = engine.Derive(opts...)
	}

	m.mu.Lock()
	evicted := m.pruneLocked()
	full := m.maxSessions > 0 && len(m.sessions)+m.reserved >= m.maxSessions
	if !full {
		m.reserved++
	}
	m.mu.Unlock()

	if evicted > 0 {
		m.logger.Debug("evicted idle sessions", "count", evicted)
	}
	if full {
		return "", ErrLimitReached
	}

	s, err := engine.Start(ctx, mach, input)

	now := m.now()
	m.mu.Lock()
	m.reserved--
	if err == nil {
		m.sessions[s.ID()] = &Live{Session: s, Input: input, StartedAt: now, engine: engine, lastUsed: now}
	}
	m.mu.Unlock()

	if err != nil {
		return "", err
	}

	m.logger.Debug("session started", "session_id", s.ID(), "machine", mach.Name())
	return s.ID(), nil
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// WithLock executes fn while holding the lock for the session.
// Returns domain.ErrSessionNotFound for unknown or evicted IDs.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context, *Live) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	m.mu.Lock()
	live, ok := m.sessions[sessionID]
	if ok {
		live.lastUsed = m.now()
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrSessionNotFound, sessionID)
	}
	return fn(ctx, live)
}

// Finish persists a halted session through its engine and forgets it.
func (m *Manager) Finish(ctx context.Context, sessionID string) (*domain.Record, error) {
	var record *domain.Record
	err := m.WithLock(ctx, sessionID, func(ctx context.Context, live *Live) error {
		if live.Status() == domain.StatusRunning {
			return ErrStillRunning
		}
		var err error
		record, err = live.engine.Save(ctx, live.Session, live.Input)
		if err != nil {
			return err
		}
		m.forget(sessionID)
		return nil
	})
	return record, err
}

// Delete discards the session.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context, live *Live) error {
		m.forget(sessionID)
		return nil
	})
}

// List returns the IDs of the live sessions, sorted.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Prune evicts idle sessions and returns how many were removed.
func (m *Manager) Prune() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pruneLocked()
}

// pruneLocked must be called with m.mu held. Sessions with a pending lock are kept.
func (m *Manager) pruneLocked() int {
	if m.idleTimeout <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.idleTimeout)

	evicted := 0
	for id, live := range m.sessions {
		if _, busy := m.locks[id]; busy {
			continue
		}
		if live.lastUsed.Before(cutoff) {
			delete(m.sessions, id)
			evicted++
		}
	}
	return evicted
}

func (m *Manager) forget(sessionID string) {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
}
