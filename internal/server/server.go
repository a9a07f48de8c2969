// Package server is the reference implementation of the record service the
// sync coordinator talks to. Single-tenant: one API key guards the whole
// record set.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gigtrack/gig/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

// Server wires storage and routing for the record API.
type Server struct {
	storage  *Storage
	apiKey   string
	validate *validator.Validate
}

// New creates a Server. An empty apiKey disables authentication (local
// development only).
func New(storage *Storage, apiKey string) *Server {
	return &Server{
		storage:  storage,
		apiKey:   apiKey,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods("GET")

	api := r.PathPrefix("/v1").Subrouter()
	api.Use(s.authMiddleware, logMiddleware)
	api.HandleFunc("/records", s.handleList).Methods("GET")
	api.HandleFunc("/records", s.handleCreate).Methods("POST")
	api.HandleFunc("/records/{id}", s.handleUpdate).Methods("PUT")
	api.HandleFunc("/records/{id}", s.handleDelete).Methods("DELETE")
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := s.storage.List()
	if err != nil {
		slog.Error("list records", "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to list records")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.decodeRecord(w, r)
	if !ok {
		return
	}
	if err := s.storage.Create(rec); err != nil {
		if errors.Is(err, errDuplicate) {
			writeError(w, http.StatusConflict, "duplicate", "record "+rec.ID+" already exists")
			return
		}
		slog.Error("create record", "id", rec.ID, "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to create record")
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	rec, ok := s.decodeRecord(w, r)
	if !ok {
		return
	}
	rec.ID = id
	if err := s.storage.Update(id, rec); err != nil {
		if errors.Is(err, errMissing) {
			writeError(w, http.StatusNotFound, "not_found", "record "+id+" not found")
			return
		}
		slog.Error("update record", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to update record")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.storage.Delete(id); err != nil {
		if errors.Is(err, errMissing) {
			writeError(w, http.StatusNotFound, "not_found", "record "+id+" not found")
			return
		}
		slog.Error("delete record", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to delete record")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeRecord parses and validates the request body. Validation failures are
// 422: the client must not retry the operation as formed.
func (s *Server) decodeRecord(w http.ResponseWriter, r *http.Request) (*models.TripRecord, bool) {
	var rec models.TripRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request payload")
		return nil, false
	}
	if err := s.validate.Struct(&rec); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation", err.Error())
		return nil, false
	}
	return &rec, true
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" {
			next.ServeHTTP(w, r)
			return
		}
		authHeader := r.Header.Get("Authorization")
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing or malformed authorization header")
			return
		}
		if parts[1] != s.apiKey {
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Info("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"code": code, "message": message})
}
