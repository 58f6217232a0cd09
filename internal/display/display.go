// Package display shows the composed canvas in a window and drives the
// frame loop from the window's update callback.
package display

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"github.com/ayusman/handglow/internal/app"
	"github.com/ayusman/handglow/internal/store"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// noticeFrames is how long the export notice stays on screen.
const noticeFrames = 2 * app.FrameRate

// Painter is the part of *app.App the window drives.
type Painter interface {
	Frame()
	Size() (int, int)
	CopyCanvas(dst []byte)
	Status() app.Status
	Export() (*store.Export, error)
}

// Game implements ebiten.Game on top of a Painter.
type Game struct {
	painter Painter
	width   int
	height  int

	canvas *ebiten.Image
	pixels []byte

	notice      string
	noticeTicks int

	justPressed func(ebiten.Key) bool
	quit        <-chan struct{}
}

// New creates a Game for p.
func New(p Painter) *Game {
	w, h := p.Size()
	return &Game{
		painter:     p,
		width:       w,
		height:      h,
		pixels:      make([]byte, 4*w*h),
		justPressed: inpututil.IsKeyJustPressed,
	}
}

// QuitOn makes the window close once ch is closed.
func (g *Game) QuitOn(ch <-chan struct{}) {
	g.quit = ch
}

// Update runs one painter frame. Space exports the trail, Escape quits.
func (g *Game) Update() error {
	if g.justPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	select {
	case <-g.quit:
		return ebiten.Termination
	default:
	}

	g.painter.Frame()

	if g.justPressed(ebiten.KeySpace) {
		g.export()
	}

	if g.noticeTicks > 0 {
		g.noticeTicks--
		if g.noticeTicks == 0 {
			g.notice = ""
		}
	}
	return nil
}

func (g *Game) export() {
	rec, err := g.painter.Export()
	if err != nil {
		log.Printf("export failed: %v", err)
		g.setNotice("Export failed")
		return
	}
	g.setNotice("Saved " + filepath.Base(rec.Path))
}

func (g *Game) setNotice(msg string) {
	g.notice = msg
	g.noticeTicks = noticeFrames
}

// Notice returns the transient message shown after an export.
func (g *Game) Notice() string {
	return g.notice
}

// Draw copies the composed canvas to the screen and prints the status.
func (g *Game) Draw(screen *ebiten.Image) {
	if g.canvas == nil {
		g.canvas = ebiten.NewImage(g.width, g.height)
	}

	g.painter.CopyCanvas(g.pixels)
	g.canvas.WritePixels(g.pixels)
	screen.DrawImage(g.canvas, nil)

	if msg := g.painter.Status().Message(); msg != "" {
		ebitenutil.DebugPrintAt(screen, msg, 10, 10)
	}
	if g.notice != "" {
		ebitenutil.DebugPrintAt(screen, g.notice, 10, g.height-20)
	}
}

// Layout keeps the logical screen at the canvas size; ebiten scales it to
// the window.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}

// Run opens the window and blocks until it is closed or Escape is pressed.
func Run(g *Game, title string) error {
	ebiten.SetWindowSize(g.width, g.height)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(app.FrameRate)

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("run window: %w", err)
	}
	return nil
}
