package entities

import (
	"errors"
	"sync"
	"testing"

	"tryon-web/internal/domain/valueobjects"
)

func TestSession_SetImageReplacesSlot(t *testing.T) {
	session := NewSession("s1")
	first := createTestImagePayload(t)
	second := createTestImagePayload(t)

	session.SetImage(valueobjects.ModelSlot, first)
	session.SetImage(valueobjects.ModelSlot, second)

	if session.Image(valueobjects.ModelSlot) != second {
		t.Errorf("model slot should hold the latest payload")
	}
	if session.Image(valueobjects.GarmentSlot) != nil {
		t.Errorf("garment slot should stay empty")
	}
}

func TestSession_BeginSubmitRequiresBothImages(t *testing.T) {
	tests := []struct {
		name    string
		model   bool
		garment bool
	}{
		{name: "no images"},
		{name: "model only", model: true},
		{name: "garment only", garment: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := NewSession("s1")
			if tt.model {
				session.SetImage(valueobjects.ModelSlot, createTestImagePayload(t))
			}
			if tt.garment {
				session.SetImage(valueobjects.GarmentSlot, createTestImagePayload(t))
			}
			before := session.State()

			request, err := session.BeginSubmit()
			if !errors.Is(err, ErrMissingInput) {
				t.Fatalf("BeginSubmit() error = %v, want ErrMissingInput", err)
			}
			if request != nil {
				t.Errorf("expected no request")
			}
			if after := session.State(); after != before {
				t.Errorf("state changed on rejected submit: %+v -> %+v", before, after)
			}
		})
	}
}

func TestSession_SubmitLifecycle(t *testing.T) {
	session := NewSession("s1")
	session.SetImage(valueobjects.ModelSlot, createTestImagePayload(t))
	session.SetImage(valueobjects.GarmentSlot, createTestImagePayload(t))

	if !session.State().CanSubmit {
		t.Fatalf("expected submit to be enabled with both images")
	}

	request, err := session.BeginSubmit()
	if err != nil {
		t.Fatalf("BeginSubmit() error = %v", err)
	}

	state := session.State()
	if !state.Busy || state.CanSubmit || state.Status != StatusLoading {
		t.Errorf("unexpected state while submitting: %+v", state)
	}

	if _, err := session.BeginSubmit(); !errors.Is(err, ErrBusy) {
		t.Errorf("second BeginSubmit() error = %v, want ErrBusy", err)
	}

	result := NewTryOnResult(request.ID(), map[string]any{"result_url": "https://x/out.png"})
	session.CompleteSubmit(result)

	state = session.State()
	if state.Busy || !state.CanSubmit || state.Status != StatusSuccess {
		t.Errorf("unexpected state after success: %+v", state)
	}
	if state.Result != result {
		t.Errorf("result not replaced")
	}

	if _, err := session.BeginSubmit(); err != nil {
		t.Fatalf("BeginSubmit() error = %v", err)
	}
	session.FailSubmit(errors.New("provider down"))

	state = session.State()
	if state.Busy {
		t.Errorf("busy flag should be cleared after failure")
	}
	if state.Status != StatusError || state.Error != "provider down" {
		t.Errorf("unexpected error state: %+v", state)
	}
	if state.Result != result {
		t.Errorf("result should be unchanged after failure")
	}
}

func TestSession_FailCaptureKeepsSlots(t *testing.T) {
	session := NewSession("s1")
	payload := createTestImagePayload(t)
	session.SetImage(valueobjects.GarmentSlot, payload)

	session.FailCapture(errors.New("read failed"))

	state := session.State()
	if state.Status != StatusError || state.Error != "read failed" {
		t.Errorf("unexpected state: %+v", state)
	}
	if session.Image(valueobjects.GarmentSlot) != payload {
		t.Errorf("garment slot should be kept")
	}
}

func TestSession_SetImageStatus(t *testing.T) {
	t.Run("clears error", func(t *testing.T) {
		session := NewSession("s1")
		session.FailCapture(errors.New("read failed"))

		session.SetImage(valueobjects.ModelSlot, createTestImagePayload(t))

		state := session.State()
		if state.Status != StatusIdle || state.Error != "" {
			t.Errorf("unexpected state: %+v", state)
		}
	})

	t.Run("keeps loading", func(t *testing.T) {
		session := NewSession("s1")
		session.SetImage(valueobjects.ModelSlot, createTestImagePayload(t))
		session.SetImage(valueobjects.GarmentSlot, createTestImagePayload(t))
		if _, err := session.BeginSubmit(); err != nil {
			t.Fatalf("BeginSubmit() error = %v", err)
		}

		session.SetImage(valueobjects.GarmentSlot, createTestImagePayload(t))

		state := session.State()
		if state.Status != StatusLoading || !state.Busy {
			t.Errorf("in-flight submission should stay loading: %+v", state)
		}
	})
}

func TestSession_ConcurrentBeginSubmit(t *testing.T) {
	session := NewSession("s1")
	session.SetImage(valueobjects.ModelSlot, createTestImagePayload(t))
	session.SetImage(valueobjects.GarmentSlot, createTestImagePayload(t))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		started int
	)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := session.BeginSubmit(); err == nil {
				mu.Lock()
				started++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if started != 1 {
		t.Errorf("expected exactly one submission to start, got %d", started)
	}
}
