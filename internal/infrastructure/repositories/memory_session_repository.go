package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tryon-web/internal/domain/entities"
	domainrepos "tryon-web/internal/domain/repositories"
)

// MemorySessionRepository keeps sessions for the lifetime of the process.
type MemorySessionRepository struct {
	sessions map[entities.SessionID]*entities.Session
	mu       sync.RWMutex
}

func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[entities.SessionID]*entities.Session),
	}
}

var _ domainrepos.SessionRepository = (*MemorySessionRepository)(nil)

func (r *MemorySessionRepository) Save(ctx context.Context, session *entities.Session) error {
	if session == nil {
		return fmt.Errorf("session is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[session.ID()] = session
	return nil
}

func (r *MemorySessionRepository) FindByID(ctx context.Context, id entities.SessionID) (*entities.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, exists := r.sessions[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", domainrepos.ErrSessionNotFound, id)
	}

	return session, nil
}

// DeleteIdleSince never removes a session with a call in flight.
func (r *MemorySessionRepository) DeleteIdleSince(ctx context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, session := range r.sessions {
		if session.Busy() || !session.UpdatedAt().Before(cutoff) {
			continue
		}
		delete(r.sessions, id)
		removed++
	}

	return removed, nil
}

func (r *MemorySessionRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
