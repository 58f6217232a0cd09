// Package source runs camera capture and hand detection in the background
// and publishes their latest results as snapshots for the frame loop.
package source

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayusman/handglow/internal/capture"
	"github.com/ayusman/handglow/internal/detector"
	"gocv.io/x/gocv"
	"golang.org/x/sync/errgroup"
)

// Config holds source settings.
type Config struct {
	// Width and Height are the canvas dimensions feed frames are scaled to.
	Width  int
	Height int
	// MotionThreshold is the changed-pixel percentage below which the
	// previous prediction is reused instead of running the detector.
	// Zero disables motion gating.
	MotionThreshold float64
}

// DefaultConfig returns the reference 620x352 canvas configuration.
func DefaultConfig() Config {
	return Config{
		Width:           620,
		Height:          352,
		MotionThreshold: 0.5,
	}
}

// Prediction is the detector output for one frame. Hands is empty when no
// hand was visible.
type Prediction struct {
	Hands     []detector.HandLandmarks
	Timestamp int64
}

// Source owns the camera and detector. Feed and Prediction are safe to call
// from any goroutine; each returns the latest whole snapshot.
type Source struct {
	config   Config
	camera   capture.Camera
	detector detector.Detector
	motion   *capture.MotionDetector

	feed       atomic.Pointer[capture.Frame]
	prediction atomic.Pointer[Prediction]

	ready     chan struct{}
	readyOnce sync.Once
}

// New creates a Source reading from camera and detecting with det.
func New(config Config, camera capture.Camera, det detector.Detector) *Source {
	s := &Source{
		config:   config,
		camera:   camera,
		detector: det,
		ready:    make(chan struct{}),
	}
	if config.MotionThreshold > 0 {
		s.motion = capture.NewMotionDetector(config.MotionThreshold)
	}
	return s
}

// Run opens the camera and runs capture and detection until ctx is done.
func (s *Source) Run(ctx context.Context) error {
	if err := s.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	defer func() {
		if err := s.camera.Close(); err != nil {
			log.Printf("Error closing camera: %v", err)
		}
	}()

	// Capacity one: the detector always gets the newest frame it can keep
	// up with and older frames are dropped.
	frames := make(chan *gocv.Mat, 1)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(frames)
		return s.captureLoop(ctx, frames)
	})
	g.Go(func() error {
		return s.detectLoop(ctx, frames)
	})

	log.Println("Landmark source started")
	err := g.Wait()
	log.Println("Landmark source stopped")
	return err
}

func (s *Source) captureLoop(ctx context.Context, frames chan<- *gocv.Mat) error {
	fps := s.camera.FPS()
	if fps <= 0 {
		fps = capture.DefaultFPS
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		mat, err := s.camera.ReadFrame()
		if err != nil {
			if errors.Is(err, capture.ErrCameraNotOpen) {
				return err
			}
			log.Printf("Error reading frame: %v", err)
			continue
		}

		s.publishFeed(mat)

		clone := mat.Clone()
		mat.Close()
		select {
		case frames <- &clone:
		default:
			clone.Close()
		}
	}
}

func (s *Source) detectLoop(ctx context.Context, frames <-chan *gocv.Mat) error {
	for {
		select {
		case <-ctx.Done():
			// Release anything left in the buffer.
			for mat := range frames {
				mat.Close()
			}
			return nil
		case mat, ok := <-frames:
			if !ok {
				return nil
			}
			s.detect(mat)
			mat.Close()
		}
	}
}

// publishFeed mirrors mat to canvas size and stores it as the latest feed.
func (s *Source) publishFeed(mat *gocv.Mat) {
	frame, err := capture.MirrorFrame(mat, s.config.Width, s.config.Height)
	if err != nil {
		log.Printf("Error converting frame: %v", err)
		return
	}
	s.feed.Store(frame)
}

// detect runs the detector on mat unless the motion gate says the previous
// prediction still holds.
func (s *Source) detect(mat *gocv.Mat) {
	if s.motion != nil {
		moved, _ := s.motion.Detect(mat)
		if !moved && s.prediction.Load() != nil {
			return
		}
	}

	hands, err := s.detector.Detect(mat)
	if err != nil {
		log.Printf("Error detecting hands: %v", err)
		return
	}

	s.prediction.Store(&Prediction{
		Hands:     hands,
		Timestamp: time.Now().UnixMilli(),
	})
	s.readyOnce.Do(func() {
		close(s.ready)
		log.Println("Hand model ready")
	})
}

// Feed returns the latest mirrored camera frame, or nil before the first one.
func (s *Source) Feed() *capture.Frame {
	return s.feed.Load()
}

// Prediction returns the latest detection result, or nil before the model
// has produced one.
func (s *Source) Prediction() *Prediction {
	return s.prediction.Load()
}

// Ready is closed once the detector has produced its first result.
func (s *Source) Ready() <-chan struct{} {
	return s.ready
}

// IsReady reports whether Ready has been closed.
func (s *Source) IsReady() bool {
	select {
	case <-s.ready:
		return true
	default:
		return false
	}
}

// Close releases the detector and motion state. Call after Run returns.
func (s *Source) Close() error {
	if s.motion != nil {
		s.motion.Close()
	}
	return s.detector.Close()
}
