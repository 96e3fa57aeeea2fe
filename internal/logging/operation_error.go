package logging

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

const (
	OpCapture = "tryon.capture"
	OpSubmit  = "tryon.submit"
)

// OperationError ties a failure to the try-on session it happened in.
// RequestID is set once a submission has been built; Slot only for
// capture failures.
type OperationError struct {
	Operation string
	SessionID string
	RequestID string
	Slot      string
	Err       error
}

// CaptureError wraps a failure to read an upload into a slot.
func CaptureError(sessionID, slot string, err error) *OperationError {
	return &OperationError{Operation: OpCapture, SessionID: sessionID, Slot: slot, Err: err}
}

// SubmitError wraps a failed remote try-on call.
func SubmitError(sessionID, requestID string, err error) *OperationError {
	return &OperationError{Operation: OpSubmit, SessionID: sessionID, RequestID: requestID, Err: err}
}

// Error renders e.g. "tryon.submit req_1 in session s1: status 503".
func (e *OperationError) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(e.Operation)
	if e.Slot != "" {
		b.WriteString(" " + e.Slot + " image")
	}
	if e.RequestID != "" {
		b.WriteString(" " + e.RequestID)
	}
	if e.SessionID != "" {
		b.WriteString(" in session " + e.SessionID)
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// MarshalLogObject lets the failure be logged with zap.Object as one
// structured field.
func (e *OperationError) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("operation", e.Operation)
	if e.SessionID != "" {
		enc.AddString("session_id", e.SessionID)
	}
	if e.RequestID != "" {
		enc.AddString("request_id", e.RequestID)
	}
	if e.Slot != "" {
		enc.AddString("slot", e.Slot)
	}
	if e.Err != nil {
		enc.AddString("cause", e.Err.Error())
	}
	return nil
}
