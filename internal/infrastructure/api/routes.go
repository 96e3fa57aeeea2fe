package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter wires the page, the session endpoints and the health check.
func NewRouter(handler *TryOnHandler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", handler.HandleIndex).Methods(http.MethodGet)
	r.HandleFunc("/healthz", handler.HandleHealth).Methods(http.MethodGet)

	sessions := r.PathPrefix("/sessions/{id}").Subrouter()
	sessions.HandleFunc("", handler.HandleState).Methods(http.MethodGet)
	sessions.HandleFunc("/images/{slot}", handler.HandleUpload).Methods(http.MethodPost)
	sessions.HandleFunc("/submit", handler.HandleSubmit).Methods(http.MethodPost)
	sessions.HandleFunc("/result", handler.HandleResult).Methods(http.MethodGet)

	return r
}
