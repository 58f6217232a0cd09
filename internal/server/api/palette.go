package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/ayusman/handglow/internal/app"
	"github.com/ayusman/handglow/internal/detector"
	"github.com/ayusman/handglow/internal/store"
)

// Recolorer applies a palette to the running painter.
type Recolorer interface {
	SetPalette(p app.Palette)
}

// PaletteHandler reads and edits the per-finger colors stored in settings.
type PaletteHandler struct {
	store   *store.Store
	painter Recolorer
}

// NewPaletteHandler creates a PaletteHandler. painter may be nil, in which
// case changes are only stored and take effect on the next start.
func NewPaletteHandler(s *store.Store, painter Recolorer) *PaletteHandler {
	return &PaletteHandler{store: s, painter: painter}
}

type setColorRequest struct {
	Color string `json:"color"`
}

// ServeHTTP routes /api/palette and /api/palette/{finger}.
func (h *PaletteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/api/palette")
	name = strings.TrimPrefix(name, "/")

	if name == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.respond(w)
		return
	}

	finger, err := detector.ParseFinger(name)
	if err != nil {
		writeError(w, http.StatusNotFound, "Unknown finger")
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req setColorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := app.SavePaletteColor(h.store, finger, req.Color); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	case http.MethodDelete:
		if err := app.ResetPaletteColor(h.store, finger); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to reset color")
			return
		}
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	palette := h.respond(w)
	if h.painter != nil {
		h.painter.SetPalette(palette)
	}
}

// respond writes the stored palette as a finger name to hex map and returns
// it.
func (h *PaletteHandler) respond(w http.ResponseWriter) app.Palette {
	palette, err := app.LoadPalette(h.store)
	if err != nil {
		log.Printf("palette: %v", err)
	}

	colors := make(map[string]string, detector.NumFingers)
	for _, f := range detector.Fingers {
		colors[f.String()] = palette.Hex(f)
	}
	writeJSON(w, http.StatusOK, colors)
	return palette
}
