package api

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"tryon-web/internal/application/usecases"
	"tryon-web/internal/domain/entities"
	"tryon-web/internal/domain/repositories"
	"tryon-web/internal/domain/valueobjects"
)

// Multipart parts above this size spill to temporary files; uploads are
// not rejected for size.
const maxMemory = 10 * 1024 * 1024 // 10MB

const missingInputMessage = "Both images are required."

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type TryOnHandler struct {
	tryOnUseCase *usecases.TryOnUseCase
	logger       *zap.Logger
}

func NewTryOnHandler(tryOnUseCase *usecases.TryOnUseCase, logger *zap.Logger) *TryOnHandler {
	return &TryOnHandler{
		tryOnUseCase: tryOnUseCase,
		logger:       logger,
	}
}

// HandleIndex serves the form bound to a fresh session, so a reload
// always starts empty.
func (h *TryOnHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	session, err := h.tryOnUseCase.StartSession(r.Context())
	if err != nil {
		h.logger.Error("failed to start session", zap.Error(err))
		http.Error(w, "failed to start session", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "index.html", map[string]any{"SessionID": string(session.ID())}); err != nil {
		h.logger.Error("failed to render index", zap.Error(err))
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store, max-age=0")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *TryOnHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := entities.SessionID(vars["id"])

	slot, err := valueobjects.ParseImageSlot(vars["slot"])
	if err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		h.sendError(w, "failed to read upload: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("image")
	if err != nil {
		h.sendError(w, "image file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	state, err := h.tryOnUseCase.CaptureImage(r.Context(), usecases.CaptureInput{
		SessionID: sessionID,
		Slot:      slot,
		File:      file,
		MimeType:  fileHeader.Header.Get("Content-Type"),
	})
	if err != nil {
		h.sendStateError(w, err, state)
		return
	}

	h.sendJSON(w, state, http.StatusOK)
}

func (h *TryOnHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	sessionID := entities.SessionID(mux.Vars(r)["id"])

	state, err := h.tryOnUseCase.Submit(r.Context(), sessionID)
	if err != nil {
		h.sendStateError(w, err, state)
		return
	}

	h.sendJSON(w, state, http.StatusOK)
}

func (h *TryOnHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	sessionID := entities.SessionID(mux.Vars(r)["id"])

	state, err := h.tryOnUseCase.State(r.Context(), sessionID)
	if err != nil {
		h.sendStateError(w, err, state)
		return
	}

	h.sendJSON(w, state, http.StatusOK)
}

// HandleResult renders the result fragment for the session.
func (h *TryOnHandler) HandleResult(w http.ResponseWriter, r *http.Request) {
	sessionID := entities.SessionID(mux.Vars(r)["id"])

	state, err := h.tryOnUseCase.State(r.Context(), sessionID)
	if err != nil {
		h.sendStateError(w, err, state)
		return
	}

	var buf bytes.Buffer
	if err := RenderResult(&buf, state); err != nil {
		h.logger.Error("failed to render result", zap.Error(err))
		http.Error(w, "failed to render result", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store, max-age=0")
	w.Write(buf.Bytes())
}

func (h *TryOnHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type resultView struct {
	HasResult bool
	Dump      string
	ImageURL  template.URL
	Error     string
}

// RenderResult writes the indented response dump and the linked result
// image. Nothing is rendered before the first successful try-on.
func RenderResult(w io.Writer, state entities.SessionState) error {
	view := resultView{}
	if state.Status == entities.StatusError {
		view.Error = state.Error
	}

	if state.Result != nil {
		dump, err := json.MarshalIndent(state.Result, "", "  ")
		if err != nil {
			return err
		}
		view.HasResult = true
		view.Dump = string(dump)
		view.ImageURL = safeImageURL(state.Result.ResultURL())
	}

	return templates.ExecuteTemplate(w, "result", view)
}

// safeImageURL only lets http(s) and inline image URLs through.
func safeImageURL(raw string) template.URL {
	if strings.HasPrefix(raw, "data:image/") {
		return template.URL(raw)
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return template.URL(raw)
}

func (h *TryOnHandler) sendStateError(w http.ResponseWriter, err error, state entities.SessionState) {
	switch {
	case errors.Is(err, repositories.ErrSessionNotFound):
		h.sendError(w, "session not found", http.StatusNotFound)
	case errors.Is(err, entities.ErrMissingInput):
		h.sendJSON(w, map[string]any{"error": missingInputMessage, "session": state}, http.StatusUnprocessableEntity)
	case errors.Is(err, entities.ErrBusy):
		h.sendJSON(w, map[string]any{"error": err.Error(), "session": state}, http.StatusConflict)
	case errors.Is(err, usecases.ErrReadImage):
		h.sendJSON(w, map[string]any{"error": err.Error(), "session": state}, http.StatusBadRequest)
	case errors.Is(err, usecases.ErrTryOnFailed):
		h.sendJSON(w, map[string]any{"error": err.Error(), "session": state}, http.StatusBadGateway)
	default:
		h.logger.Error("request failed", zap.Error(err))
		h.sendError(w, "internal error", http.StatusInternalServerError)
	}
}

func (h *TryOnHandler) sendJSON(w http.ResponseWriter, body any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store, max-age=0")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Warn("failed to encode JSON response", zap.Error(err))
	}
}

func (h *TryOnHandler) sendError(w http.ResponseWriter, message string, statusCode int) {
	h.sendJSON(w, map[string]string{"error": message}, statusCode)
}
