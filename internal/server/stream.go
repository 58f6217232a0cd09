package server

import (
	"fmt"
	"image"
	"net/http"
	"time"

	"gocv.io/x/gocv"
)

// DefaultStreamFPS is the default MJPEG preview rate.
const DefaultStreamFPS = 15

// CanvasSource provides the composed frame to stream.
type CanvasSource interface {
	Canvas() *image.RGBA
}

// StreamHandler serves the composed canvas as MJPEG.
type StreamHandler struct {
	source   CanvasSource
	interval time.Duration
}

// NewStreamHandler creates a new StreamHandler sending one frame per interval.
func NewStreamHandler(source CanvasSource, interval time.Duration) *StreamHandler {
	return &StreamHandler{source: source, interval: interval}
}

// ServeHTTP streams MJPEG frames to connected clients.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		buf, err := encodeJPEG(h.source.Canvas())
		if err == nil {
			fmt.Fprintf(w, "--frame\r\n")
			fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
			fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(buf))
			w.Write(buf)
			fmt.Fprintf(w, "\r\n")

			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

// encodeJPEG converts img to an OpenCV Mat and encodes it.
func encodeJPEG(img *image.RGBA) ([]byte, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("encode: empty canvas")
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("convert canvas: %w", err)
	}
	defer mat.Close()

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, mat)
	if err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	defer buf.Close()

	// The native buffer is freed on Close, so copy out.
	return append([]byte(nil), buf.GetBytes()...), nil
}
