// Package app owns the per-frame state of the light painter: the particle
// system, the persistent trail and the composited canvas.
package app

import (
	"errors"
	"image"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/ayusman/handglow/internal/capture"
	"github.com/ayusman/handglow/internal/compositor"
	"github.com/ayusman/handglow/internal/detector"
	"github.com/ayusman/handglow/internal/particle"
	"github.com/ayusman/handglow/internal/source"
	"github.com/ayusman/handglow/internal/store"
	"github.com/ayusman/handglow/internal/trail"
	"golang.org/x/image/math/f64"
)

// FrameRate is the display refresh rate the frame loop targets.
const FrameRate = 60

// ErrNoExporter is returned by Export when the app has no exporter.
var ErrNoExporter = errors.New("export is not configured")

// Status describes what the painter is doing this frame.
type Status int

const (
	// StatusLoading means the hand model has not produced a result yet.
	StatusLoading Status = iota
	// StatusNoHand means the model is ready but no hand is visible.
	StatusNoHand
	// StatusTracking means fingertips are emitting particles.
	StatusTracking
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusNoHand:
		return "no hand"
	case StatusTracking:
		return "tracking"
	}
	return "unknown"
}

// Message is the overlay text shown for s, empty while tracking.
func (s Status) Message() string {
	switch s {
	case StatusLoading:
		return "Loading model..."
	case StatusNoHand:
		return "No hand detected"
	}
	return ""
}

// LandmarkSource supplies the latest camera frame and hand prediction.
// *source.Source implements it.
type LandmarkSource interface {
	Feed() *capture.Frame
	Prediction() *source.Prediction
	IsReady() bool
}

// Exporter persists snapshots. *export.Exporter implements it.
type Exporter interface {
	Save(img *image.RGBA, particles int) (*store.Export, error)
}

// Config holds configuration options for the application.
type Config struct {
	// Width and Height are the canvas dimensions.
	Width  int
	Height int
	// Compositor sets the feed and trail opacities.
	Compositor compositor.Config
	// Palette maps fingers to base colors.
	Palette Palette
	// Seed seeds particle velocities. Zero picks a time-based seed.
	Seed uint64
}

// DefaultConfig returns the reference 620x352 configuration.
func DefaultConfig() Config {
	return Config{
		Width:      620,
		Height:     352,
		Compositor: compositor.DefaultConfig(),
		Palette:    DefaultPalette(),
	}
}

// App is the frame-loop controller. Frame, Step and Export may be called
// from different goroutines; each runs under the app lock so readers always
// see the state between two frames.
type App struct {
	config     Config
	source     LandmarkSource
	exporter   Exporter
	system     *particle.System
	emitter    *particle.Emitter
	trail      *trail.Surface
	compositor *compositor.Compositor
	canvas     *image.RGBA

	mu       sync.RWMutex
	status   Status
	tips     []detector.Fingertip
	frames   uint64
	onStatus func(Status)

	stopCh chan struct{}
	doneCh chan struct{}
}

// New creates an App. src and exporter may be nil: without a source the
// painter only decays existing particles, without an exporter Export fails.
func New(config Config, src LandmarkSource, exporter Exporter) *App {
	seed := config.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed>>1|1))

	system := particle.NewSystem()

	return &App{
		config:     config,
		source:     src,
		exporter:   exporter,
		system:     system,
		emitter:    particle.NewEmitter(system, rng),
		trail:      trail.New(config.Width, config.Height, trail.DefaultBackground),
		compositor: compositor.New(config.Compositor),
		canvas:     image.NewRGBA(image.Rect(0, 0, config.Width, config.Height)),
		status:     StatusLoading,
	}
}

// Frame runs one display frame: read the latest snapshots, advance and
// render particles onto the trail, emit from the first hand, and compose
// the canvas.
func (a *App) Frame() {
	var (
		hands []detector.HandLandmarks
		feed  image.Image
		ready bool
	)
	if a.source != nil {
		ready = a.source.IsReady()
		if p := a.source.Prediction(); ready && p != nil {
			hands = p.Hands
		}
		if f := a.source.Feed(); f != nil && f.Image != nil {
			feed = f.Image
		}
	}

	a.mu.Lock()
	a.step(hands)
	prev := a.status
	switch {
	case !ready:
		a.status = StatusLoading
	case len(hands) == 0:
		a.status = StatusNoHand
	default:
		a.status = StatusTracking
	}
	a.compositor.Compose(a.canvas, feed, a.trail.Image())
	status, cb := a.status, a.onStatus
	a.mu.Unlock()

	if cb != nil && status != prev {
		cb(status)
	}
}

// Step advances the simulation by one frame using hands as this frame's
// prediction. Only hands[0] emits.
func (a *App) Step(hands []detector.HandLandmarks) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.step(hands)
}

func (a *App) step(hands []detector.HandLandmarks) {
	a.frames++

	// Existing particles keep decaying whether or not a hand is visible.
	a.system.FrameStep(a.trail)

	if len(hands) == 0 {
		a.tips = a.tips[:0]
		return
	}

	tips := hands[0].Fingertips(a.config.Width, a.config.Height)
	a.tips = a.tips[:0]
	for _, tip := range tips {
		// The feed is displayed mirrored, so fingertips are too.
		tip.X = float64(a.config.Width) - tip.X
		a.emitter.EmitBurst(f64.Vec2{tip.X, tip.Y}, a.config.Palette.Color(tip.Finger))
		a.tips = append(a.tips, tip)
	}
}

// SetPalette changes the colors of particles emitted from now on. Particles
// already in flight keep their color.
func (a *App) SetPalette(p Palette) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.config.Palette = p
}

// OnStatus sets a callback invoked from Frame when the status changes.
func (a *App) OnStatus(fn func(Status)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onStatus = fn
}

// Status returns the status of the last frame.
func (a *App) Status() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status
}

// ParticleCount returns the number of live particles.
func (a *App) ParticleCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.system.Len()
}

// Particles returns copies of the live particles.
func (a *App) Particles() []particle.Particle {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]particle.Particle, 0, a.system.Len())
	for _, p := range a.system.Particles() {
		out = append(out, *p)
	}
	return out
}

// Fingertips returns the mirrored fingertip positions emitted on the last
// frame, empty when no hand was visible.
func (a *App) Fingertips() []detector.Fingertip {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]detector.Fingertip(nil), a.tips...)
}

// Frames returns the number of frames stepped so far.
func (a *App) Frames() uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.frames
}

// Size returns the canvas dimensions.
func (a *App) Size() (int, int) {
	return a.config.Width, a.config.Height
}

// Canvas returns a copy of the last composed frame.
func (a *App) Canvas() *image.RGBA {
	a.mu.RLock()
	defer a.mu.RUnlock()

	cp := image.NewRGBA(a.canvas.Bounds())
	copy(cp.Pix, a.canvas.Pix)
	return cp
}

// CopyCanvas copies the last composed frame into dst, which must be the
// canvas size. It avoids an allocation per frame for the display.
func (a *App) CopyCanvas(dst []byte) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	copy(dst, a.canvas.Pix)
}

// TrailSnapshot returns a copy of the trail surface.
func (a *App) TrailSnapshot() *image.RGBA {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.trail.Snapshot()
}

// Export writes the current trail surface. The camera feed is not part of
// the export.
func (a *App) Export() (*store.Export, error) {
	if a.exporter == nil {
		return nil, ErrNoExporter
	}

	a.mu.RLock()
	snap := a.trail.Snapshot()
	count := a.system.Len()
	a.mu.RUnlock()

	return a.exporter.Save(snap, count)
}

// Start runs Frame on a FrameRate ticker until Stop. It is used when no
// window drives the frame loop.
func (a *App) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return
	}

	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	go a.run(a.stopCh, a.doneCh)

	log.Println("Frame loop started")
}

// Stop halts a loop started with Start and waits for it to exit.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, doneCh := a.stopCh, a.doneCh
	a.stopCh, a.doneCh = nil, nil
	a.mu.Unlock()

	if stopCh == nil {
		return
	}
	close(stopCh)
	<-doneCh

	log.Println("Frame loop stopped")
}

func (a *App) run(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(time.Second / FrameRate)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			a.Frame()
		}
	}
}
