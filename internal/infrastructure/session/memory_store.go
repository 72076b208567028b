package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"kala/internal/domain/chat"
	"kala/internal/domain/session"
	"kala/internal/pkg/metrics"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type entry struct {
	sess      session.Session
	expiresAt time.Time
}

// MemoryStore keeps sessions in process. Expired sessions are invisible to
// Get and are removed by Sweep.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[uuid.UUID]entry
	ttl  time.Duration
	now  func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{data: make(map[uuid.UUID]entry), ttl: ttl, now: time.Now}
}

func (s *MemoryStore) Create(_ context.Context, sess session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.data[sess.ID]; ok && !s.expired(e) {
		return session.ErrExists
	}
	s.data[sess.ID] = entry{sess: clone(sess), expiresAt: s.now().Add(s.ttl)}
	metrics.SessionsActive.Set(float64(len(s.data)))
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.data[id]
	if !ok || s.expired(e) {
		return session.Session{}, session.ErrNotFound
	}
	return clone(e.sess), nil
}

func (s *MemoryStore) Save(_ context.Context, sess session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data[sess.ID]
	if !ok || s.expired(e) {
		return session.ErrNotFound
	}
	s.data[sess.ID] = entry{sess: clone(sess), expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data[id]
	delete(s.data, id)
	metrics.SessionsActive.Set(float64(len(s.data)))
	if !ok || s.expired(e) {
		return session.ErrNotFound
	}
	return nil
}

// Sweep drops expired sessions and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.data {
		if s.expired(e) {
			delete(s.data, id)
			n++
		}
	}
	metrics.SessionsActive.Set(float64(len(s.data)))
	return n
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *MemoryStore) expired(e entry) bool {
	return !s.now().Before(e.expiresAt)
}

// StartSweeper runs Sweep on schedule until the returned cron is stopped.
func (s *MemoryStore) StartSweeper(schedule string, logger *zap.Logger) (*cron.Cron, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		if n := s.Sweep(); n > 0 {
			logger.Info("expired sessions swept", zap.Int("count", n))
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	c.Start()
	return c, nil
}

func clone(s session.Session) session.Session {
	out := s
	out.Wizard.Draft = s.Wizard.Draft.Clone()
	out.Messages = append([]chat.Message(nil), s.Messages...)
	return out
}

var _ session.Store = (*MemoryStore)(nil)
