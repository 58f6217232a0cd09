package e2e

import (
	"context"
	"encoding/json"
	"image/color"
	"image/png"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/handglow/internal/app"
	"github.com/ayusman/handglow/internal/capture"
	"github.com/ayusman/handglow/internal/detector"
	"github.com/ayusman/handglow/internal/export"
	"github.com/ayusman/handglow/internal/particle"
	"github.com/ayusman/handglow/internal/server"
	"github.com/ayusman/handglow/internal/source"
	"github.com/ayusman/handglow/internal/store"
	"gocv.io/x/gocv"
)

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestE2E_CompleteWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tmpDir := t.TempDir()
	s, err := store.New(filepath.Join(tmpDir, "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	const width, height = 620, 352

	// A static camera and a hand whose index tip sits at (100, 50) px.
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(40, 40, 40, 0), 480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()
	cam := capture.NewMockCamera([]*gocv.Mat{&frame}, true)

	hand := detector.OpenPalmLandmarks()
	hand.Points[detector.IndexTip] = detector.Point3D{X: 100.0 / width, Y: 50.0 / height}
	det := detector.NewMockDetector()
	det.SetHands([]detector.HandLandmarks{hand})

	src := source.New(source.Config{Width: width, Height: height}, cam, det)
	defer src.Close()

	cfg := app.DefaultConfig()
	cfg.Seed = 1
	painter := app.New(cfg, src, export.New(filepath.Join(tmpDir, "exports"), s))

	srv := server.New(server.Config{Store: s, Painter: painter})
	defer srv.Shutdown(context.Background())
	ts := httptest.NewServer(srv)
	defer ts.Close()
	client := ts.Client()

	t.Run("Loading", func(t *testing.T) {
		painter.Frame()
		if painter.Status() != app.StatusLoading {
			t.Errorf("Status() = %v, want loading", painter.Status())
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- src.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	t.Run("Tracking", func(t *testing.T) {
		select {
		case <-src.Ready():
		case <-time.After(5 * time.Second):
			t.Fatal("source did not become ready")
		}

		for i := 0; i < 12; i++ {
			painter.Frame()
		}

		if painter.Status() != app.StatusTracking {
			t.Errorf("Status() = %v, want tracking", painter.Status())
		}
		if got, want := painter.ParticleCount(), 10*detector.NumFingers*particle.BurstSize; got != want {
			t.Errorf("ParticleCount() = %d, want %d", got, want)
		}

		var index *detector.Fingertip
		for _, tip := range painter.Fingertips() {
			if tip.Finger == detector.Index {
				index = &tip
			}
		}
		if index == nil {
			t.Fatal("no index fingertip")
		}
		if math.Abs(index.X-520) > 1e-9 || math.Abs(index.Y-50) > 1e-9 {
			t.Errorf("index tip = (%v, %v), want (520, 50)", index.X, index.Y)
		}
	})

	t.Run("Health", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/health")
		if err != nil {
			t.Fatalf("GET /api/health error = %v", err)
		}
		defer resp.Body.Close()

		var health struct {
			Ready     bool   `json:"ready"`
			Hand      string `json:"hand"`
			Particles int    `json:"particles"`
		}
		json.NewDecoder(resp.Body).Decode(&health)

		if !health.Ready || health.Hand != "tracking" || health.Particles != painter.ParticleCount() {
			t.Errorf("health = %+v", health)
		}
	})

	t.Run("Export", func(t *testing.T) {
		trail := painter.TrailSnapshot()

		resp, err := client.Post(ts.URL+"/api/exports", "application/json", nil)
		if err != nil {
			t.Fatalf("POST /api/exports error = %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
		}

		var created struct {
			Path string `json:"path"`
		}
		json.NewDecoder(resp.Body).Decode(&created)

		f, err := os.Open(created.Path)
		if err != nil {
			t.Fatalf("open export: %v", err)
		}
		defer f.Close()
		img, err := png.Decode(f)
		if err != nil {
			t.Fatalf("decode export: %v", err)
		}

		b := trail.Bounds()
		if img.Bounds() != b {
			t.Fatalf("export bounds = %v, want %v", img.Bounds(), b)
		}
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				r, g, bl, a := img.At(x, y).RGBA()
				got := color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(bl >> 8), A: uint8(a >> 8)}
				if want := trail.RGBAAt(x, y); got != want {
					t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, want)
				}
			}
		}

		exports, err := s.Exports().List(0)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(exports) != 1 {
			t.Errorf("len(exports) = %d, want 1", len(exports))
		}
	})

	t.Run("HandLeaves", func(t *testing.T) {
		det.SetHands(nil)
		waitFor(t, "empty prediction", func() bool {
			p := src.Prediction()
			return p != nil && len(p.Hands) == 0
		})

		for i := 0; i < 10; i++ {
			painter.Frame()
		}
		if painter.ParticleCount() != 0 {
			t.Errorf("ParticleCount() = %d, want 0", painter.ParticleCount())
		}
		for i := 0; i < 10; i++ {
			painter.Frame()
		}
		if painter.ParticleCount() != 0 {
			t.Errorf("ParticleCount() = %d, want 0", painter.ParticleCount())
		}
		if painter.Status() != app.StatusNoHand {
			t.Errorf("Status() = %v, want no hand", painter.Status())
		}
	})
}
