// Package capture reads webcam frames through OpenCV and turns them into
// mirrored, canvas-sized images for the painter.
package capture

import (
	"errors"
	"fmt"
	"image"
	"log"
	"sync"

	"gocv.io/x/gocv"
)

// DefaultFPS is the capture rate requested from the device.
const DefaultFPS = 30

// Capture errors.
var (
	ErrCameraNotOpen = errors.New("camera is not open")
	ErrReadFailed    = errors.New("failed to read frame from camera")
	ErrEmptyFrame    = errors.New("captured frame is empty")
)

// Frame is a captured video frame converted for display: mirrored and
// scaled to the canvas size.
type Frame struct {
	Image     *image.RGBA
	Timestamp int64
	Width     int
	Height    int
}

// Camera is a source of BGR frames. ReadFrame hands ownership of the Mat to
// the caller.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	FPS() int
}

// Webcam captures from an OpenCV video device. It asks the device for
// frames at the canvas size so MirrorFrame only has to flip them; a device
// that cannot deliver that size is scaled instead.
type Webcam struct {
	deviceID int
	want     image.Point
	got      image.Point
	fps      int

	mu sync.Mutex
	vc *gocv.VideoCapture
}

// NewCamera returns a Webcam for deviceID that will request width x height
// frames when opened.
func NewCamera(deviceID, width, height int) *Webcam {
	want := image.Pt(width, height)
	return &Webcam{
		deviceID: deviceID,
		want:     want,
		got:      want,
		fps:      DefaultFPS,
	}
}

// Open opens the device and negotiates the frame size. Opening an open
// Webcam is a no-op.
func (w *Webcam) Open() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.vc != nil {
		return nil
	}

	vc, err := gocv.OpenVideoCapture(w.deviceID)
	if err != nil {
		return fmt.Errorf("open device %d: %w", w.deviceID, err)
	}

	vc.Set(gocv.VideoCaptureFrameWidth, float64(w.want.X))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(w.want.Y))
	vc.Set(gocv.VideoCaptureFPS, float64(w.fps))

	w.got = negotiatedSize(w.want, vc.Get(gocv.VideoCaptureFrameWidth), vc.Get(gocv.VideoCaptureFrameHeight))
	if w.got != w.want {
		log.Printf("Camera %d delivers %dx%d, scaling to %dx%d", w.deviceID, w.got.X, w.got.Y, w.want.X, w.want.Y)
	}

	w.vc = vc
	return nil
}

// negotiatedSize is the frame size a device reports after being asked for
// want. Backends that report nothing are assumed to have honored the request.
func negotiatedSize(want image.Point, width, height float64) image.Point {
	if width <= 0 || height <= 0 {
		return want
	}
	return image.Pt(int(width), int(height))
}

// Close releases the device.
func (w *Webcam) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.vc == nil {
		return nil
	}
	err := w.vc.Close()
	w.vc = nil
	return err
}

// ReadFrame grabs the next frame. The caller closes the returned Mat.
func (w *Webcam) ReadFrame() (*gocv.Mat, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.vc == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := w.vc.Read(&mat); !ok {
		mat.Close()
		return nil, ErrReadFailed
	}
	if mat.Empty() {
		mat.Close()
		return nil, ErrEmptyFrame
	}
	return &mat, nil
}

// FPS returns the requested capture rate.
func (w *Webcam) FPS() int {
	return w.fps
}
