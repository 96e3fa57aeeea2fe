package usecases

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"tryon-web/internal/domain/entities"
	"tryon-web/internal/domain/repositories"
	"tryon-web/internal/domain/services"
	"tryon-web/internal/domain/valueobjects"
	"tryon-web/internal/logging"
)

// ErrReadImage marks a failure to read an uploaded file.
var ErrReadImage = errors.New("failed to read image")

// ErrTryOnFailed marks a failed remote call. The session state returned
// alongside it carries the error status and the previous result.
var ErrTryOnFailed = errors.New("try-on failed")

type TryOnUseCase struct {
	sessions      repositories.SessionRepository
	domainService *services.TryOnDomainService
	logger        *zap.Logger
}

func NewTryOnUseCase(
	sessions repositories.SessionRepository,
	domainService *services.TryOnDomainService,
	logger *zap.Logger,
) *TryOnUseCase {
	return &TryOnUseCase{
		sessions:      sessions,
		domainService: domainService,
		logger:        logger,
	}
}

type CaptureInput struct {
	SessionID entities.SessionID
	Slot      valueobjects.ImageSlot
	File      io.Reader
	MimeType  string
}

// StartSession creates the empty form state for one page load.
func (uc *TryOnUseCase) StartSession(ctx context.Context) (*entities.Session, error) {
	session := entities.NewSession(entities.NewSessionID())
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return session, nil
}

// CaptureImage reads an uploaded file into the embedded encoding and
// overwrites the slot. A read failure leaves the slot as it was and puts
// the session into the error status.
func (uc *TryOnUseCase) CaptureImage(ctx context.Context, input CaptureInput) (entities.SessionState, error) {
	session, err := uc.sessions.FindByID(ctx, input.SessionID)
	if err != nil {
		return entities.SessionState{}, err
	}

	log := logging.WithOperation(uc.logger, logging.OpCapture, string(input.SessionID))

	payload, err := readPayload(input.File, input.MimeType)
	if err != nil {
		err = fmt.Errorf("%w (%s image): %w", ErrReadImage, input.Slot, err)
		log.Warn("image read failed",
			zap.Object("failure", logging.CaptureError(string(input.SessionID), string(input.Slot), err)))
		session.FailCapture(err)
		return session.State(), err
	}

	session.SetImage(input.Slot, payload)
	log.Debug("image captured",
		zap.String("slot", string(input.Slot)),
		zap.String("mime_type", payload.MimeType()),
		zap.Int("bytes", payload.Size()),
	)

	return session.State(), nil
}

func readPayload(file io.Reader, mimeType string) (*valueobjects.ImagePayload, error) {
	if file == nil {
		return nil, valueobjects.ErrEmptyImage
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	return valueobjects.NewImagePayload(data, mimeType)
}

// Submit runs one try-on for the session. The remote call is detached
// from ctx cancellation: once started it runs to completion.
func (uc *TryOnUseCase) Submit(ctx context.Context, sessionID entities.SessionID) (entities.SessionState, error) {
	session, err := uc.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return entities.SessionState{}, err
	}

	request, err := session.BeginSubmit()
	if err != nil {
		return session.State(), err
	}

	log := logging.WithOperation(uc.logger, logging.OpSubmit, string(sessionID)).
		With(zap.String("request_id", string(request.ID())))
	log.Info("try-on started")
	started := time.Now()

	result, err := uc.domainService.ProcessTryOn(context.WithoutCancel(ctx), request)
	if err != nil {
		opErr := logging.SubmitError(string(sessionID), string(request.ID()), err)
		log.Error("try-on failed", zap.Object("failure", opErr), zap.Duration("elapsed", time.Since(started)))
		session.FailSubmit(err)
		return session.State(), fmt.Errorf("%w: %w", ErrTryOnFailed, opErr)
	}

	session.CompleteSubmit(result)
	log.Info("try-on finished",
		zap.Bool("has_result_url", result.HasResultURL()),
		zap.Duration("elapsed", time.Since(started)),
	)

	return session.State(), nil
}

func (uc *TryOnUseCase) State(ctx context.Context, sessionID entities.SessionID) (entities.SessionState, error) {
	session, err := uc.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return entities.SessionState{}, err
	}
	return session.State(), nil
}

// ExpireSessions drops sessions idle for longer than ttl.
func (uc *TryOnUseCase) ExpireSessions(ctx context.Context, ttl time.Duration) (int, error) {
	removed, err := uc.sessions.DeleteIdleSince(ctx, time.Now().Add(-ttl))
	if err != nil {
		return 0, fmt.Errorf("failed to expire sessions: %w", err)
	}
	if removed > 0 {
		uc.logger.Debug("expired idle sessions", zap.Int("removed", removed))
	}
	return removed, nil
}
