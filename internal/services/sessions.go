package services

import (
	"context"
	"sync"
	"time"
	"walking-route-service/internal/domain"
	"walking-route-service/internal/platform/obs"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Session pairs an id with its own workflow instance.
type Session struct {
	ID       string
	Workflow *RouteSearchWorkflow

	lastSeen time.Time
}

// WorkflowFactory builds a fresh workflow for a new session.
type WorkflowFactory func() *RouteSearchWorkflow

// SessionRegistry keeps one workflow per client session and evicts idle ones.
type SessionRegistry struct {
	factory WorkflowFactory
	idleTTL time.Duration
	clock   clockwork.Clock
	metrics *obs.Metrics
	log     *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionRegistry(
	factory WorkflowFactory,
	idleTTL time.Duration,
	clock clockwork.Clock,
	metrics *obs.Metrics,
	log *zap.Logger,
) *SessionRegistry {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SessionRegistry{
		factory:  factory,
		idleTTL:  idleTTL,
		clock:    clock,
		metrics:  metrics,
		log:      log,
		sessions: make(map[string]*Session),
	}
}

func (r *SessionRegistry) Create() *Session {
	s := &Session{
		ID:       uuid.NewString(),
		Workflow: r.factory(),
		lastSeen: r.clock.Now(),
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	n := len(r.sessions)
	r.mu.Unlock()

	r.gauge(n)
	return s
}

// Get returns the session and marks it as recently used.
func (r *SessionRegistry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	s.lastSeen = r.clock.Now()
	return s, nil
}

func (r *SessionRegistry) Delete(id string) error {
	r.mu.Lock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	n := len(r.sessions)
	r.mu.Unlock()

	if !ok {
		return domain.ErrSessionNotFound
	}
	r.gauge(n)
	return nil
}

func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep evicts sessions idle for longer than the TTL and returns how many were removed.
func (r *SessionRegistry) Sweep() int {
	cutoff := r.clock.Now().Add(-r.idleTTL)

	r.mu.Lock()
	removed := 0
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	n := len(r.sessions)
	r.mu.Unlock()

	if removed > 0 {
		r.log.Debug("evicted idle sessions", zap.Int("removed", removed), zap.Int("active", n))
	}
	r.gauge(n)
	return removed
}

// Run sweeps on every interval until ctx is canceled.
func (r *SessionRegistry) Run(ctx context.Context, interval time.Duration) error {
	ticker := r.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			r.Sweep()
		}
	}
}

func (r *SessionRegistry) gauge(n int) {
	if r.metrics != nil {
		r.metrics.SessionsActive.Set(float64(n))
	}
}
