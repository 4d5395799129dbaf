package workspace

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/monitoring"
)

// DefaultMaxWorkspaces caps the live workspaces of a store built without
// WithMaxWorkspaces
const DefaultMaxWorkspaces = 1000

// Store keeps workspaces in memory keyed by session id and evicts the ones
// left idle longer than the TTL
type Store struct {
	newApp  func() *App
	ttl     time.Duration
	max     int
	metrics *monitoring.MetricsCollector
	now     func() time.Time

	mu   sync.RWMutex
	apps map[string]*App
}

// StoreOption configures a Store
type StoreOption func(*Store)

// WithMaxWorkspaces caps how many workspaces live at once. Creating one
// past the cap evicts the least recently used.
func WithMaxWorkspaces(n int) StoreOption {
	return func(s *Store) {
		if n > 0 {
			s.max = n
		}
	}
}

// NewStore creates a store; newApp builds each fresh workspace
func NewStore(newApp func() *App, ttl time.Duration, metrics *monitoring.MetricsCollector, opts ...StoreOption) *Store {
	s := &Store{
		newApp:  newApp,
		ttl:     ttl,
		max:     DefaultMaxWorkspaces,
		metrics: metrics,
		now:     time.Now,
		apps:    make(map[string]*App),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the live workspace for id and marks it as used
func (s *Store) Get(id string) (*App, bool) {
	if id == "" {
		return nil, false
	}

	s.mu.RLock()
	app, ok := s.apps[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	app.touch()
	return app, true
}

// Create starts a new workspace under a fresh session id
func (s *Store) Create() (*App, string) {
	app := s.newApp()
	app.now = s.now
	app.touch()
	id := uuid.NewString()

	var evicted *App
	s.mu.Lock()
	if len(s.apps) >= s.max {
		evicted = s.evictOldestLocked()
	}
	s.apps[id] = app
	n := len(s.apps)
	s.mu.Unlock()

	if evicted != nil {
		evicted.Close()
	}
	s.report(n)
	return app, id
}

func (s *Store) evictOldestLocked() *App {
	var (
		oldestID string
		oldest   *App
		seen     time.Time
	)
	for id, app := range s.apps {
		if t := app.idleSince(); oldest == nil || t.Before(seen) {
			oldestID, oldest, seen = id, app, t
		}
	}
	if oldest != nil {
		delete(s.apps, oldestID)
	}
	return oldest
}

// Len returns the number of live workspaces
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.apps)
}

// cleanup evicts idle workspaces and returns how many were removed
func (s *Store) cleanup() int {
	cutoff := s.now().Add(-s.ttl)

	var evicted []*App
	s.mu.Lock()
	for id, app := range s.apps {
		if app.idleSince().Before(cutoff) {
			evicted = append(evicted, app)
			delete(s.apps, id)
		}
	}
	n := len(s.apps)
	s.mu.Unlock()

	for _, app := range evicted {
		app.Close()
	}
	s.report(n)
	return len(evicted)
}

// StartCleanup evicts idle workspaces every interval until ctx is done
func (s *Store) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.cleanup()
			}
		}
	}()
}

func (s *Store) report(n int) {
	if s.metrics != nil {
		s.metrics.SetActiveWorkspaces(n)
	}
}
