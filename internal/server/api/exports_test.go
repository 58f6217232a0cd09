package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/handglow/internal/store"
	"github.com/google/uuid"
)

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// fakeSnapshotter writes an empty file and records it, like the exporter.
type fakeSnapshotter struct {
	store *store.Store
	dir   string
	err   error
}

func (f *fakeSnapshotter) Export() (*store.Export, error) {
	if f.err != nil {
		return nil, f.err
	}

	id := uuid.NewString()
	path := filepath.Join(f.dir, id+".png")
	if err := os.WriteFile(path, []byte("png"), 0644); err != nil {
		return nil, err
	}

	e := &store.Export{ID: id, Path: path, Width: 620, Height: 352, Particles: 7}
	if err := f.store.Exports().Create(e); err != nil {
		return nil, err
	}
	return e, nil
}

func TestExportHandler_Create(t *testing.T) {
	s := setupTestStore(t)
	h := NewExportHandler(s, &fakeSnapshotter{store: s, dir: t.TempDir()})

	req := httptest.NewRequest(http.MethodPost, "/api/exports", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}

	var resp exportResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID == "" || resp.Width != 620 || resp.Height != 352 || resp.Particles != 7 {
		t.Errorf("response = %+v", resp)
	}
	if _, err := time.Parse(time.RFC3339, resp.CreatedAt); err != nil {
		t.Errorf("created_at %q is not RFC3339: %v", resp.CreatedAt, err)
	}
}

func TestExportHandler_Create_Errors(t *testing.T) {
	s := setupTestStore(t)

	tests := []struct {
		name string
		snap Snapshotter
		want int
	}{
		{"no snapshotter", nil, http.StatusServiceUnavailable},
		{"snapshot fails", &fakeSnapshotter{store: s, err: errors.New("disk full")}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewExportHandler(s, tt.snap)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/exports", nil))

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			var resp errorResponse
			json.NewDecoder(rec.Body).Decode(&resp)
			if resp.Error == "" {
				t.Error("expected error message")
			}
		})
	}
}

func TestExportHandler_List(t *testing.T) {
	s := setupTestStore(t)
	snap := &fakeSnapshotter{store: s, dir: t.TempDir()}
	h := NewExportHandler(s, snap)

	t.Run("empty", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/exports", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var resp listExportsResponse
		json.NewDecoder(rec.Body).Decode(&resp)
		if resp.Exports == nil || len(resp.Exports) != 0 {
			t.Errorf("exports = %v, want empty array", resp.Exports)
		}
	})

	for i := 0; i < 3; i++ {
		if _, err := snap.Export(); err != nil {
			t.Fatalf("Export() error = %v", err)
		}
	}

	tests := []struct {
		query string
		code  int
		count int
	}{
		{"", http.StatusOK, 3},
		{"?limit=2", http.StatusOK, 2},
		{"?limit=0", http.StatusOK, 3},
		{"?limit=abc", http.StatusBadRequest, 0},
		{"?limit=-1", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run("query "+tt.query, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/exports"+tt.query, nil))

			if rec.Code != tt.code {
				t.Fatalf("status = %d, want %d", rec.Code, tt.code)
			}
			if tt.code != http.StatusOK {
				return
			}
			var resp listExportsResponse
			json.NewDecoder(rec.Body).Decode(&resp)
			if len(resp.Exports) != tt.count {
				t.Errorf("len(exports) = %d, want %d", len(resp.Exports), tt.count)
			}
		})
	}
}

func TestExportHandler_GetDelete(t *testing.T) {
	s := setupTestStore(t)
	snap := &fakeSnapshotter{store: s, dir: t.TempDir()}
	h := NewExportHandler(s, snap)

	e, err := snap.Export()
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/exports/"+e.ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET status = %d", rec.Code)
	}
	var got exportResponse
	json.NewDecoder(rec.Body).Decode(&got)
	if got.Path != e.Path {
		t.Errorf("path = %s, want %s", got.Path, e.Path)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/exports/"+e.ID, nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("DELETE status = %d", rec.Code)
	}
	if _, err := os.Stat(e.Path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("export file still present: %v", err)
	}

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(method, "/api/exports/"+e.ID, nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s after delete status = %d, want 404", method, rec.Code)
		}
	}
}

func TestExportHandler_MethodNotAllowed(t *testing.T) {
	h := NewExportHandler(setupTestStore(t), nil)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPut, "/api/exports"},
		{http.MethodDelete, "/api/exports"},
		{http.MethodPost, "/api/exports/abc"},
		{http.MethodPatch, "/api/exports/abc"},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: status = %d, want 405", tt.method, tt.path, rec.Code)
		}
	}
}
