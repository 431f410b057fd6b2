// Package server implements the toxedit HTTP API handlers and middleware.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"toxedit/internal/core"
	"toxedit/internal/models"
	"toxedit/internal/patch"
	"toxedit/internal/store"
)

// ServerConfig holds configurable limits for the server.
type ServerConfig struct {
	MaxRequestBody int64 // bytes, for JSON endpoints
}

// DefaultServerConfig returns reasonable defaults.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		MaxRequestBody: 4 * 1024 * 1024, // 4MB
	}
}

// Handler creates the HTTP handler with all routes and middleware.
func Handler(orch *core.Orchestrator, st *store.Store, cfg *ServerConfig, logger *slog.Logger) http.Handler {
	if cfg == nil {
		cfg = DefaultServerConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	h := &handler{orch: orch, store: st, cfg: cfg, log: logger}

	mux := http.NewServeMux()

	// Health endpoints
	mux.HandleFunc("GET /healthz", handleHealthz)

	// Edits
	mux.HandleFunc("POST /api/v1/edit", h.handleEdit)
	mux.HandleFunc("POST /api/v1/edit/batch", h.handleEditBatch)

	// Threads
	mux.HandleFunc("GET /api/v1/threads/{id}/history", h.handleHistory)
	mux.HandleFunc("GET /api/v1/threads/{id}/versions/{n}", h.handleGetVersion)
	mux.HandleFunc("GET /api/v1/threads/{id}/current", h.handleCurrent)
	mux.HandleFunc("GET /api/v1/threads/{id}/diff", h.handleDiff)

	// Lookups
	mux.HandleFunc("GET /api/v1/ingredients/{name}", h.handleIngredient)
	mux.HandleFunc("GET /api/v1/batches/{id}", h.handleBatch)

	return applyMiddleware(mux,
		recoveryMiddleware(logger),
		loggingMiddleware(logger),
		requestIDMiddleware,
	)
}

// applyMiddleware applies middleware in reverse order so the first in the list runs first.
func applyMiddleware(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

type handler struct {
	orch  *core.Orchestrator
	store *store.Store
	cfg   *ServerConfig
	log   *slog.Logger
}

func (h *handler) handleEdit(w http.ResponseWriter, r *http.Request) {
	var req models.EditRequest
	if err := readJSON(r, h.cfg.MaxRequestBody, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_request", "message": err.Error()})
		return
	}
	if req.Instruction == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_request", "message": "instruction is required"})
		return
	}

	result, err := h.orch.Edit(r.Context(), req)
	if err != nil {
		h.log.Error("edit failed", "error", err, "thread_id", req.ThreadID)
		switch {
		case errors.Is(err, patch.ErrUnknownField):
			// The client's edit addresses a field outside the registry;
			// that is their mistake, not a server failure.
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "invalid_edit", "message": err.Error()})
		case errors.Is(err, core.ErrMalformedFallback), errors.Is(err, core.ErrGeneration):
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "edit_failed", "message": err.Error()})
		default:
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "edit_failed", "message": err.Error()})
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *handler) handleEditBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items []models.BatchEditItem `json:"items"`
	}
	if err := readJSON(r, h.cfg.MaxRequestBody, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_request", "message": err.Error()})
		return
	}
	if len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_request", "message": "items must not be empty"})
		return
	}
	for i, item := range req.Items {
		if item.INCIName == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error":   "bad_request",
				"message": fmt.Sprintf("items[%d]: inci_name is required", i),
			})
			return
		}
	}

	result, err := h.orch.EditBatch(r.Context(), req.Items)
	if err != nil {
		h.log.Error("batch edit failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error", "message": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	threadID := r.PathValue("id")
	entries, err := h.store.History(threadID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error", "message": err.Error()})
		return
	}
	if len(entries) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error":   "not_found",
			"message": fmt.Sprintf("no versions for thread '%s'", threadID),
		})
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *handler) handleGetVersion(w http.ResponseWriter, r *http.Request) {
	threadID := r.PathValue("id")
	n, err := strconv.Atoi(r.PathValue("n"))
	if err != nil || n < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_request", "message": "version must be a positive integer"})
		return
	}

	v, err := h.store.GetVersion(threadID, n)
	if err != nil {
		if errors.Is(err, store.ErrVersionNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "message": err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error", "message": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *handler) handleCurrent(w http.ResponseWriter, r *http.Request) {
	threadID := r.PathValue("id")
	v, err := h.store.Current(threadID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error", "message": err.Error()})
		return
	}
	if v == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error":   "not_found",
			"message": fmt.Sprintf("no versions for thread '%s'", threadID),
		})
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *handler) handleDiff(w http.ResponseWriter, r *http.Request) {
	threadID := r.PathValue("id")
	from, err1 := strconv.Atoi(r.URL.Query().Get("from"))
	to, err2 := strconv.Atoi(r.URL.Query().Get("to"))
	if err1 != nil || err2 != nil || from < 1 || to < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":   "bad_request",
			"message": "from and to must be positive integer query parameters",
		})
		return
	}

	result, err := h.orch.Diff(threadID, from, to)
	if err != nil {
		if errors.Is(err, store.ErrVersionNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "message": err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error", "message": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) handleIngredient(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	versions, err := h.store.ByIngredient(name)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error", "message": err.Error()})
		return
	}
	if len(versions) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error":   "not_found",
			"message": fmt.Sprintf("no versions for ingredient '%s'", name),
		})
		return
	}
	writeJSON(w, http.StatusOK, versions)
}

func (h *handler) handleBatch(w http.ResponseWriter, r *http.Request) {
	batchID := r.PathValue("id")
	versions, err := h.store.ByBatch(batchID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error", "message": err.Error()})
		return
	}
	if len(versions) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error":   "not_found",
			"message": fmt.Sprintf("no versions for batch '%s'", batchID),
		})
		return
	}
	writeJSON(w, http.StatusOK, versions)
}

// --- Health Handlers ---

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, maxSize int64, v interface{}) error {
	limited := io.LimitReader(r.Body, maxSize)
	if err := json.NewDecoder(limited).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}
