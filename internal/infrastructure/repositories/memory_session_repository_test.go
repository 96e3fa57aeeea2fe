package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"tryon-web/internal/domain/entities"
	domainrepos "tryon-web/internal/domain/repositories"
)

func TestMemorySessionRepository_SaveAndFind(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()

	session := entities.NewSession("s1")
	if err := repo.Save(ctx, session); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	found, err := repo.FindByID(ctx, "s1")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if found != session {
		t.Errorf("FindByID() returned a different session")
	}

	if _, err := repo.FindByID(ctx, "missing"); !errors.Is(err, domainrepos.ErrSessionNotFound) {
		t.Errorf("FindByID() error = %v, want ErrSessionNotFound", err)
	}

	if err := repo.Save(ctx, nil); err == nil {
		t.Errorf("Save(nil) should fail")
	}
}

func TestMemorySessionRepository_DeleteIdleSince(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()

	_ = repo.Save(ctx, entities.NewSession("old"))
	cutoff := time.Now().Add(time.Second)

	removed, err := repo.DeleteIdleSince(ctx, cutoff)
	if err != nil {
		t.Fatalf("DeleteIdleSince() error = %v", err)
	}
	if removed != 1 || repo.Len() != 0 {
		t.Errorf("expected the idle session to be removed, removed=%d len=%d", removed, repo.Len())
	}

	_ = repo.Save(ctx, entities.NewSession("fresh"))
	removed, _ = repo.DeleteIdleSince(ctx, time.Now().Add(-time.Hour))
	if removed != 0 || repo.Len() != 1 {
		t.Errorf("fresh session should be kept, removed=%d len=%d", removed, repo.Len())
	}
}
