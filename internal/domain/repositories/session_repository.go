package repositories

import (
	"context"
	"errors"
	"time"

	"tryon-web/internal/domain/entities"
)

var ErrSessionNotFound = errors.New("session not found")

type SessionRepository interface {
	Save(ctx context.Context, session *entities.Session) error
	FindByID(ctx context.Context, id entities.SessionID) (*entities.Session, error)
	// DeleteIdleSince removes sessions not updated since cutoff and
	// returns how many were removed.
	DeleteIdleSince(ctx context.Context, cutoff time.Time) (int, error)
}
