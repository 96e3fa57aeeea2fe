package entities

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"tryon-web/internal/domain/valueobjects"
)

var (
	ErrMissingInput = errors.New("both images are required")
	ErrBusy         = errors.New("a try-on is already in progress")
)

type SessionID string

func NewSessionID() SessionID {
	return SessionID(uuid.NewString())
}

type SubmissionStatus string

const (
	StatusIdle    SubmissionStatus = "idle"
	StatusLoading SubmissionStatus = "loading"
	StatusSuccess SubmissionStatus = "success"
	StatusError   SubmissionStatus = "error"
)

// Session is the form state of one page load: two image slots, the busy
// flag and the last successful result. A failed submission records an
// error status but leaves the previous result in place.
type Session struct {
	mu        sync.Mutex
	id        SessionID
	model     *valueobjects.ImagePayload
	garment   *valueobjects.ImagePayload
	busy      bool
	status    SubmissionStatus
	errMsg    string
	result    *TryOnResult
	createdAt time.Time
	updatedAt time.Time
}

func NewSession(id SessionID) *Session {
	now := time.Now()
	return &Session{
		id:        id,
		status:    StatusIdle,
		createdAt: now,
		updatedAt: now,
	}
}

func (s *Session) ID() SessionID {
	return s.id
}

// SetImage replaces the slot wholesale. A successful capture clears a
// previous error status; an in-flight submission keeps its loading status.
func (s *Session) SetImage(slot valueobjects.ImageSlot, payload *valueobjects.ImagePayload) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch slot {
	case valueobjects.ModelSlot:
		s.model = payload
	case valueobjects.GarmentSlot:
		s.garment = payload
	}
	if s.status == StatusError {
		s.status = StatusIdle
		s.errMsg = ""
	}
	s.updatedAt = time.Now()
}

func (s *Session) Image(slot valueobjects.ImageSlot) *valueobjects.ImagePayload {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch slot {
	case valueobjects.ModelSlot:
		return s.model
	case valueobjects.GarmentSlot:
		return s.garment
	}
	return nil
}

// FailCapture records a file read failure. Slots are left untouched.
func (s *Session) FailCapture(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setError(err)
}

// BeginSubmit moves Idle to Submitting and builds the request to send.
// It is rejected without any state change when a slot is empty or a
// submission is already outstanding.
func (s *Session) BeginSubmit() (*TryOnRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return nil, ErrBusy
	}
	if s.model == nil || s.garment == nil {
		return nil, ErrMissingInput
	}

	request, err := NewTryOnRequest(s.id, s.model, s.garment)
	if err != nil {
		return nil, err
	}

	s.busy = true
	s.status = StatusLoading
	s.errMsg = ""
	s.updatedAt = time.Now()
	return request, nil
}

func (s *Session) CompleteSubmit(result *TryOnResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.busy = false
	s.result = result
	s.status = StatusSuccess
	s.errMsg = ""
	s.updatedAt = time.Now()
}

func (s *Session) FailSubmit(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.busy = false
	s.setError(err)
}

func (s *Session) setError(err error) {
	s.status = StatusError
	s.errMsg = "unknown error"
	if err != nil {
		s.errMsg = err.Error()
	}
	s.updatedAt = time.Now()
}

func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

func (s *Session) Result() *TryOnResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

func (s *Session) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// SessionState is the JSON view of a session returned to the page.
type SessionState struct {
	ID              SessionID        `json:"id"`
	ModelUploaded   bool             `json:"model_uploaded"`
	GarmentUploaded bool             `json:"garment_uploaded"`
	Busy            bool             `json:"busy"`
	CanSubmit       bool             `json:"can_submit"`
	Status          SubmissionStatus `json:"status"`
	Error           string           `json:"error,omitempty"`
	Result          *TryOnResult     `json:"result"`
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	modelUploaded := s.model != nil
	garmentUploaded := s.garment != nil

	return SessionState{
		ID:              s.id,
		ModelUploaded:   modelUploaded,
		GarmentUploaded: garmentUploaded,
		Busy:            s.busy,
		CanSubmit:       !s.busy && modelUploaded && garmentUploaded,
		Status:          s.status,
		Error:           s.errMsg,
		Result:          s.result,
	}
}
