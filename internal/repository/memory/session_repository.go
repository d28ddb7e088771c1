package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"aura-support-be/internal/entity"
	"aura-support-be/internal/pkg/logger"
	"aura-support-be/internal/repository/contract"
	"aura-support-be/pkg/rag/errs"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// sessionSlot is the per-key unit of ownership. reqMu serializes whole
// requests for the key, mu guards the session data itself. inflight counts
// Lock holders and waiters and is guarded by the repository's slotMu.
type sessionSlot struct {
	reqMu    sync.Mutex
	mu       sync.Mutex
	session  *entity.Session
	hydrated bool
	inflight int
}

// SessionRepository keeps conversation state in a go-cache keyed by session
// id. Entries expire after the idle window; every touch refreshes it.
type SessionRepository struct {
	cache  *cache.Cache
	slotMu sync.Mutex
	// pinned holds slots with an outstanding Lock so idle expiry cannot
	// hand a second caller a fresh slot mid-request.
	pinned  map[string]*sessionSlot
	archive contract.TurnRepository
	logger  logger.ILogger
}

// NewSessionRepository creates the store. archive may be nil, in which case
// sessions live only in memory.
func NewSessionRepository(idleTTL time.Duration, archive contract.TurnRepository, log logger.ILogger) *SessionRepository {
	if idleTTL <= 0 {
		idleTTL = 1 * time.Hour
	}
	cleanup := idleTTL / 6
	if cleanup < time.Second {
		cleanup = time.Second
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &SessionRepository{
		cache:   cache.New(idleTTL, cleanup),
		pinned:  make(map[string]*sessionSlot),
		archive: archive,
		logger:  log,
	}
}

// slot returns the slot for key, creating it if needed, and refreshes its
// idle expiration.
func (r *SessionRepository) slot(key string) *sessionSlot {
	r.slotMu.Lock()
	defer r.slotMu.Unlock()
	return r.lookup(key)
}

// lookup must be called with slotMu held.
func (r *SessionRepository) lookup(key string) *sessionSlot {
	if s, ok := r.pinned[key]; ok {
		r.cache.SetDefault(key, s)
		return s
	}
	if x, found := r.cache.Get(key); found {
		s := x.(*sessionSlot)
		r.cache.SetDefault(key, s)
		return s
	}

	now := time.Now()
	s := &sessionSlot{
		session: &entity.Session{
			Key:          key,
			CreatedAt:    now,
			LastActivity: now,
		},
		hydrated: r.archive == nil,
	}
	r.cache.SetDefault(key, s)
	return s
}

// hydrate loads archived turns on first use. Must be called with s.mu held.
func (r *SessionRepository) hydrate(ctx context.Context, s *sessionSlot) {
	if s.hydrated {
		return
	}
	s.hydrated = true

	turns, err := r.archive.FindBySessionKey(ctx, s.session.Key)
	if err != nil {
		r.logger.Warn("SessionRepository", "Archive read failed, starting empty session", map[string]interface{}{
			"session_id": s.session.Key,
			"error":      fmt.Errorf("%w: %v", errs.ErrStorageUnavailable, err).Error(),
		})
		return
	}
	if len(turns) == 0 {
		return
	}

	s.session.Turns = make([]entity.Turn, 0, len(turns))
	for _, t := range turns {
		s.session.Turns = append(s.session.Turns, t.Clone())
		if t.Escalation == entity.EscalationRequired {
			s.session.Escalated = true
		}
	}
	s.session.CreatedAt = turns[0].CreatedAt
	s.session.LastActivity = turns[len(turns)-1].CreatedAt

	r.logger.Debug("SessionRepository", "Session hydrated from archive", map[string]interface{}{
		"session_id": s.session.Key,
		"turns":      len(turns),
	})
}

func (r *SessionRepository) Get(ctx context.Context, key string) *entity.Session {
	s := r.slot(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	r.hydrate(ctx, s)
	return s.session.Clone()
}

func (r *SessionRepository) Append(ctx context.Context, key string, turn entity.Turn) entity.Turn {
	s := r.slot(key)

	s.mu.Lock()
	r.hydrate(ctx, s)
	if turn.Id == uuid.Nil {
		turn.Id = uuid.New()
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now()
	}
	turn.SessionKey = key
	stored := turn.Clone()
	s.session.Turns = append(s.session.Turns, stored)
	s.session.LastActivity = stored.CreatedAt
	s.mu.Unlock()

	if r.archive == nil {
		return stored.Clone()
	}
	if err := r.archive.Create(ctx, &stored); err != nil {
		r.logger.Warn("SessionRepository", "Archive write failed, turn kept in memory only", map[string]interface{}{
			"session_id": key,
			"turn_id":    stored.Id.String(),
			"error":      fmt.Errorf("%w: %v", errs.ErrStorageUnavailable, err).Error(),
		})
	}
	return stored.Clone()
}

func (r *SessionRepository) History(ctx context.Context, key string, maxTurns int) []entity.Turn {
	if maxTurns <= 0 {
		return []entity.Turn{}
	}

	s := r.slot(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	r.hydrate(ctx, s)

	turns := s.session.Turns
	if len(turns) > maxTurns {
		turns = turns[len(turns)-maxTurns:]
	}
	history := make([]entity.Turn, len(turns))
	for i, t := range turns {
		history[i] = t.Clone()
	}
	return history
}

// Lock serializes requests for key. The slot stays pinned until the last
// holder or waiter releases it, regardless of the idle window.
func (r *SessionRepository) Lock(key string) func() {
	r.slotMu.Lock()
	s := r.lookup(key)
	s.inflight++
	r.pinned[key] = s
	r.slotMu.Unlock()

	s.reqMu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.reqMu.Unlock()

			r.slotMu.Lock()
			defer r.slotMu.Unlock()
			s.inflight--
			if s.inflight == 0 {
				delete(r.pinned, key)
			}
			r.cache.SetDefault(key, s)
		})
	}
}

func (r *SessionRepository) MarkEscalated(ctx context.Context, key string) bool {
	s := r.slot(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	r.hydrate(ctx, s)

	if s.session.Escalated {
		return false
	}
	s.session.Escalated = true
	return true
}

// Count returns the number of live sessions.
func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}
