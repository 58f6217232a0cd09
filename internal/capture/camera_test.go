package capture

import (
	"errors"
	"image"
	"testing"
)

func TestNewCamera_RequestsCanvasSize(t *testing.T) {
	cam := NewCamera(1, 620, 352)

	if cam.deviceID != 1 {
		t.Errorf("deviceID = %d, want 1", cam.deviceID)
	}
	if cam.want != image.Pt(620, 352) {
		t.Errorf("requested size = %v, want 620x352", cam.want)
	}
	if cam.got != cam.want {
		t.Errorf("size before Open = %v, want the requested %v", cam.got, cam.want)
	}
	if cam.FPS() != DefaultFPS {
		t.Errorf("FPS() = %d, want %d", cam.FPS(), DefaultFPS)
	}
}

func TestNegotiatedSize(t *testing.T) {
	want := image.Pt(620, 352)

	tests := []struct {
		name          string
		width, height float64
		expected      image.Point
	}{
		{"honored", 620, 352, want},
		{"refused", 640, 480, image.Pt(640, 480)},
		{"not reported", 0, 0, want},
		{"width only", 640, 0, want},
		{"negative", -1, -1, want},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := negotiatedSize(want, tt.width, tt.height); got != tt.expected {
				t.Errorf("negotiatedSize(%v, %v, %v) = %v, want %v", want, tt.width, tt.height, got, tt.expected)
			}
		})
	}
}

func TestCamera_ReadFrame_NotOpened(t *testing.T) {
	cam := NewCamera(0, 620, 352)

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("ReadFrame() error = %v, want ErrCameraNotOpen", err)
	}
}

func TestCamera_Close_NotOpened(t *testing.T) {
	cam := NewCamera(0, 620, 352)

	if err := cam.Close(); err != nil {
		t.Errorf("Close() on a closed camera = %v, want nil", err)
	}
}

func TestCamera_Device(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping device test in short mode")
	}

	const width, height = 620, 352
	cam := NewCamera(0, width, height)
	if err := cam.Open(); err != nil {
		t.Skipf("no camera available: %v", err)
	}
	defer cam.Close()

	mat, err := cam.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	defer mat.Close()

	// Whatever the device settled on, the feed ends up at canvas size.
	if mat.Cols() != cam.got.X || mat.Rows() != cam.got.Y {
		t.Logf("device reported %v but delivered %dx%d", cam.got, mat.Cols(), mat.Rows())
	}
	frame, err := MirrorFrame(mat, width, height)
	if err != nil {
		t.Fatalf("MirrorFrame() error = %v", err)
	}
	if b := frame.Image.Bounds(); b.Dx() != width || b.Dy() != height {
		t.Errorf("feed bounds = %v, want %dx%d", b, width, height)
	}

	if err := cam.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("ReadFrame() after Close = %v, want ErrCameraNotOpen", err)
	}
}
