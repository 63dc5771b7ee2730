// Package registry implements the process-wide session registry: session
// creation/lookup and TTL-based eviction of idle sessions.
package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mdreplay/engine/internal/catalogue"
	"github.com/mdreplay/engine/internal/metrics"
	"github.com/mdreplay/engine/internal/session"
	"github.com/mdreplay/engine/internal/session/model"
)

// Config carries the registry-wide defaults new sessions are created with.
type Config struct {
	SessionTTL        time.Duration
	SweepInterval     time.Duration
	OutboundCapacity  int
	PublishTickMillis int64
}

// Registry is the process-wide mapping from session id to Session. Lookups
// and inserts are protected by an RWMutex; each session additionally owns
// its own mutex for control-op serialization (see session.Session).
type Registry struct {
	cat *catalogue.Catalogue
	cfg Config

	mu       sync.RWMutex
	sessions map[string]*session.Session

	wgMu    sync.Mutex
	closing bool
	wg      sync.WaitGroup
}

// New constructs a registry over an already-loaded catalogue.
func New(cat *catalogue.Catalogue, cfg Config) *Registry {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = time.Hour
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 30 * time.Second
	}
	return &Registry{
		cat:      cat,
		cfg:      cfg,
		sessions: make(map[string]*session.Session),
	}
}

// Create allocates a new CREATED session and registers it.
func (r *Registry) Create() *session.Session {
	s := session.New(r.cat, session.Config{
		OutboundCapacity:  r.cfg.OutboundCapacity,
		PublishTickMillis: r.cfg.PublishTickMillis,
	}, nil)

	r.mu.Lock()
	r.sessions[s.ID()] = s
	n := len(r.sessions)
	r.mu.Unlock()

	metrics.SessionsCreatedTotal.Inc()
	metrics.SessionsActive.Set(float64(n))
	return s
}

// Get returns the session for id, failing with UnknownSessionError if absent.
func (r *Registry) Get(id string) (*session.Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, &model.UnknownSessionError{SessionID: id}
	}
	return s, nil
}

// Len reports the number of sessions currently tracked (including COMPLETED
// ones awaiting TTL expiry).
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// EvictIdle removes and closes every session whose lastAccessMillis is more
// than the configured TTL behind nowMillis, regardless of state. Safe to
// call concurrently with Create/Get and with sessions' own control ops.
//
// Staleness is checked against a snapshot of the session list taken under a
// read lock; LastAccessMillis (which takes the session's own mutex) and
// Evict (which may briefly block on a scheduler goroutine, see
// session.Session.Evict) are both called with no registry lock held, so one
// session stuck behind backpressure can never stall Create/Get/Len or the
// rest of this sweep.
func (r *Registry) EvictIdle(nowMillis int64) int {
	ttlMillis := r.cfg.SessionTTL.Milliseconds()

	r.mu.RLock()
	all := make([]*session.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		all = append(all, s)
	}
	r.mu.RUnlock()

	var staleIDs []string
	var stale []*session.Session
	for _, s := range all {
		if s.LastAccessMillis()+ttlMillis < nowMillis {
			staleIDs = append(staleIDs, s.ID())
			stale = append(stale, s)
		}
	}

	r.mu.Lock()
	for _, id := range staleIDs {
		delete(r.sessions, id)
	}
	n := len(r.sessions)
	r.mu.Unlock()

	for _, s := range stale {
		s.Evict()
	}
	if len(stale) > 0 {
		metrics.SessionsEvictedTotal.Add(float64(len(stale)))
	}
	metrics.SessionsActive.Set(float64(n))
	return len(stale)
}

// Go runs fn in a tracked goroutine so CloseAndWait can bound shutdown on
// them (the registry's sweep loop). Returns false if the registry is
// already shutting down.
func (r *Registry) Go(fn func()) bool {
	r.wgMu.Lock()
	if r.closing {
		r.wgMu.Unlock()
		return false
	}
	r.wg.Add(1)
	r.wgMu.Unlock()

	go func() {
		defer r.wg.Done()
		fn()
	}()
	return true
}

// CloseAndWait marks the registry as shutting down and waits for all
// tracked goroutines (the sweep loop) to exit, bounded by ctx.
func (r *Registry) CloseAndWait(ctx context.Context) error {
	r.wgMu.Lock()
	r.closing = true
	r.wgMu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("registry shutdown timeout: %w", ctx.Err())
	}
}
