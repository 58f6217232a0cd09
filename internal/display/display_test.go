package display

import (
	"errors"
	"testing"

	"github.com/ayusman/handglow/internal/app"
	"github.com/ayusman/handglow/internal/store"
	"github.com/hajimehoshi/ebiten/v2"
)

type mockPainter struct {
	frames  int
	exports int
	err     error
}

func (m *mockPainter) Frame()                {}
func (m *mockPainter) Size() (int, int)      { return 62, 35 }
func (m *mockPainter) CopyCanvas(dst []byte) {}
func (m *mockPainter) Status() app.Status    { return app.StatusNoHand }

func (m *mockPainter) Export() (*store.Export, error) {
	m.exports++
	if m.err != nil {
		return nil, m.err
	}
	return &store.Export{Path: "/tmp/exports/screenshot-1.png"}, nil
}

// framePainter counts frames.
type framePainter struct {
	mockPainter
}

func (f *framePainter) Frame() { f.frames++ }

// keys reports the listed keys as just pressed.
func keys(pressed ...ebiten.Key) func(ebiten.Key) bool {
	return func(k ebiten.Key) bool {
		for _, p := range pressed {
			if p == k {
				return true
			}
		}
		return false
	}
}

func TestGame_Update_Frame(t *testing.T) {
	p := &framePainter{}
	g := New(p)
	g.justPressed = keys()

	for i := 0; i < 3; i++ {
		if err := g.Update(); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
	}
	if p.frames != 3 {
		t.Errorf("frames = %d, want 3", p.frames)
	}
	if p.exports != 0 {
		t.Errorf("exports = %d, want 0", p.exports)
	}
}

func TestGame_Update_Escape(t *testing.T) {
	p := &framePainter{}
	g := New(p)
	g.justPressed = keys(ebiten.KeyEscape)

	if err := g.Update(); !errors.Is(err, ebiten.Termination) {
		t.Errorf("Update() error = %v, want Termination", err)
	}
	if p.frames != 0 {
		t.Error("no frame should run after Escape")
	}
}

func TestGame_Update_QuitOn(t *testing.T) {
	g := New(&mockPainter{})
	g.justPressed = keys()

	quit := make(chan struct{})
	g.QuitOn(quit)
	if err := g.Update(); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	close(quit)
	if err := g.Update(); !errors.Is(err, ebiten.Termination) {
		t.Errorf("Update() error = %v, want Termination", err)
	}
}

func TestGame_Update_Export(t *testing.T) {
	p := &mockPainter{}
	g := New(p)

	g.justPressed = keys(ebiten.KeySpace)
	if err := g.Update(); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if p.exports != 1 {
		t.Fatalf("exports = %d, want 1", p.exports)
	}
	if g.Notice() != "Saved screenshot-1.png" {
		t.Errorf("Notice() = %q", g.Notice())
	}

	// The notice expires.
	g.justPressed = keys()
	for i := 0; i < noticeFrames; i++ {
		g.Update()
	}
	if g.Notice() != "" {
		t.Errorf("Notice() = %q after %d frames, want empty", g.Notice(), noticeFrames)
	}
}

func TestGame_Update_ExportError(t *testing.T) {
	p := &mockPainter{err: errors.New("disk full")}
	g := New(p)
	g.justPressed = keys(ebiten.KeySpace)

	if err := g.Update(); err != nil {
		t.Fatalf("export failures must not stop the window: %v", err)
	}
	if g.Notice() != "Export failed" {
		t.Errorf("Notice() = %q", g.Notice())
	}
}

func TestGame_Layout(t *testing.T) {
	g := New(&mockPainter{})

	for _, size := range [][2]int{{62, 35}, {1920, 1080}, {10, 10}} {
		w, h := g.Layout(size[0], size[1])
		if w != 62 || h != 35 {
			t.Errorf("Layout(%d, %d) = %d, %d, want 62, 35", size[0], size[1], w, h)
		}
	}
	if len(g.pixels) != 4*62*35 {
		t.Errorf("pixel buffer = %d bytes", len(g.pixels))
	}
}
