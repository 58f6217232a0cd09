// Package api provides HTTP API handlers for the handglow light painter.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/ayusman/handglow/internal/store"
)

// DefaultListLimit caps GET /api/exports when no limit is given.
const DefaultListLimit = 50

// Snapshotter takes a new export of the current trail.
type Snapshotter interface {
	Export() (*store.Export, error)
}

// ExportHandler handles HTTP requests for export resources.
type ExportHandler struct {
	store *store.Store
	snap  Snapshotter
}

// NewExportHandler creates a new ExportHandler. snap may be nil, in which
// case POST is unavailable.
func NewExportHandler(s *store.Store, snap Snapshotter) *ExportHandler {
	return &ExportHandler{store: s, snap: snap}
}

// ServeHTTP routes /api/exports and /api/exports/{id}.
func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/exports")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type exportResponse struct {
	ID        string `json:"id"`
	Path      string `json:"path"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Particles int    `json:"particles"`
	CreatedAt string `json:"created_at"`
}

type listExportsResponse struct {
	Exports []exportResponse `json:"exports"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toResponse(e *store.Export) exportResponse {
	return exportResponse{
		ID:        e.ID,
		Path:      e.Path,
		Width:     e.Width,
		Height:    e.Height,
		Particles: e.Particles,
		CreatedAt: e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// list handles GET /api/exports?limit=N, newest first.
func (h *ExportHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	exports, err := h.store.Exports().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list exports")
		return
	}

	response := listExportsResponse{
		Exports: make([]exportResponse, 0, len(exports)),
	}
	for _, e := range exports {
		response.Exports = append(response.Exports, toResponse(e))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/exports/{id}.
func (h *ExportHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	e, err := h.store.Exports().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Export not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get export")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(e))
}

// create handles POST /api/exports and snapshots the trail.
func (h *ExportHandler) create(w http.ResponseWriter, r *http.Request) {
	if h.snap == nil {
		writeError(w, http.StatusServiceUnavailable, "Export is not available")
		return
	}

	e, err := h.snap.Export()
	if err != nil {
		log.Printf("export failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to export")
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(e))
}

// delete handles DELETE /api/exports/{id}, removing the record and its file.
func (h *ExportHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	e, err := h.store.Exports().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Export not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get export")
		return
	}

	if err := h.store.Exports().Delete(id); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete export")
		return
	}

	if err := os.Remove(e.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("remove %s: %v", e.Path, err)
	}

	w.WriteHeader(http.StatusNoContent)
}
