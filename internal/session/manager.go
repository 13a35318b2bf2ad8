// Package session owns the per-browser bundles of storefront state.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/history"
	"github.com/fjod/go_cart/storefront/internal/listing"
	"github.com/fjod/go_cart/storefront/internal/notify"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

var (
	ErrInvalidID = errors.New("invalid session id")
	ErrClosed    = errors.New("session manager closed")
)

const (
	DefaultTTL             = 30 * time.Minute
	DefaultCleanupInterval = time.Minute

	rehydrateTimeout = 10 * time.Second
)

// Session is the state of one browser session.
type Session struct {
	ID      string
	Cart    *cart.Store
	History *history.Store
	Listing *listing.Controller
	Form    *checkout.FormState
	Inbox   *notify.Inbox

	lastSeen time.Time
}

// Context scopes the cart, the recently viewed store and the inbox into ctx.
func (s *Session) Context(ctx context.Context) context.Context {
	ctx = cart.WithStore(ctx, s.Cart)
	ctx = history.WithStore(ctx, s.History)
	return notify.WithNotifier(ctx, s.Inbox)
}

type Options struct {
	TTL             time.Duration
	CleanupInterval time.Duration
	SearchDebounce  time.Duration
	InboxSize       int
}

// Manager creates sessions on first use and evicts idle ones. Evicted
// sessions keep their persisted cart and history and are rehydrated on
// the next request.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
	creating singleflight.Group // one rehydration per id

	bridge  storage.Bridge
	catalog catalog.API
	opts    Options
	logger  *slog.Logger
	now     func() time.Time

	stopCleanup chan struct{}
	wg          sync.WaitGroup
}

func NewManager(bridge storage.Bridge, api catalog.API, opts Options, logger *slog.Logger) *Manager {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = DefaultCleanupInterval
	}
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		sessions:    make(map[string]*Session),
		bridge:      bridge,
		catalog:     api,
		opts:        opts,
		logger:      logger.With("component", "session"),
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}

	m.wg.Add(1)
	go m.cleanupLoop()

	return m
}

// NewID returns a fresh session id.
func NewID() string {
	return uuid.NewString()
}

// Get returns the session for id, creating and rehydrating it if needed.
// Rehydration runs outside the manager lock, once per id.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidID
	}

	if s, err := m.lookup(id); s != nil || err != nil {
		return s, err
	}

	v, err, _ := m.creating.Do(id, func() (any, error) {
		if s, err := m.lookup(id); s != nil || err != nil {
			return s, err
		}

		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rehydrateTimeout)
		defer cancel()
		s := m.create(rctx, id)

		m.mu.Lock()
		defer m.mu.Unlock()
		if m.closed {
			s.Listing.Close()
			return nil, ErrClosed
		}
		m.sessions[id] = s
		m.logger.Debug("session created", "session_id", id, "cart_items", s.Cart.TotalItems())
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

// lookup returns the live session for id and marks it used.
func (m *Manager) lookup(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	s.lastSeen = m.now()
	return s, nil
}

func (m *Manager) create(ctx context.Context, id string) *Session {
	bridge := storage.Scoped(m.bridge, id)
	logger := m.logger.With("session_id", id)

	return &Session{
		ID:       id,
		Cart:     cart.NewStore(ctx, bridge, logger),
		History:  history.NewStore(ctx, bridge, logger),
		Listing:  listing.NewController(m.catalog, m.opts.SearchDebounce, logger),
		Form:     checkout.NewFormState(),
		Inbox:    notify.NewInbox(m.opts.InboxSize),
		lastSeen: m.now(),
	}
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) cleanupLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.opts.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.evictIdle()
		case <-m.stopCleanup:
			return
		}
	}
}

// evictIdle drops sessions not used within the TTL.
func (m *Manager) evictIdle() int {
	m.mu.Lock()
	var idle []*Session
	deadline := m.now().Add(-m.opts.TTL)
	for id, s := range m.sessions {
		if s.lastSeen.Before(deadline) {
			idle = append(idle, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range idle {
		s.Listing.Close()
	}
	if len(idle) > 0 {
		m.logger.Info("evicted idle sessions", "count", len(idle))
	}
	return len(idle)
}

// Close stops the cleanup loop and releases every session.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	close(m.stopCleanup)
	m.wg.Wait()

	for _, s := range sessions {
		s.Listing.Close()
	}
}
