package capture

import (
	"errors"
	"fmt"
	"image"
	"time"

	"gocv.io/x/gocv"
	"golang.org/x/image/draw"
)

// flipHorizontal is the OpenCV flip code for mirroring around the y axis.
const flipHorizontal = 1

// ErrNilFrame is returned when a nil or empty Mat is passed for conversion.
var ErrNilFrame = errors.New("frame is nil or empty")

// MirrorFrame mirrors a BGR camera frame horizontally and converts it to
// RGBA for compositing. Frames from a device that honored the canvas size
// are only flipped; any other size is scaled to width x height. The input
// Mat is not modified.
func MirrorFrame(mat *gocv.Mat, width, height int) (*Frame, error) {
	if mat == nil || mat.Empty() {
		return nil, ErrNilFrame
	}

	flipped := gocv.NewMat()
	defer flipped.Close()
	gocv.Flip(*mat, &flipped, flipHorizontal)

	scaled := gocv.NewMat()
	defer scaled.Close()
	if flipped.Cols() != width || flipped.Rows() != height {
		gocv.Resize(flipped, &scaled, image.Pt(width, height), 0, 0, gocv.InterpolationLinear)
	} else {
		flipped.CopyTo(&scaled)
	}

	img, err := scaled.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert frame: %w", err)
	}

	rgba, ok := img.(*image.RGBA)
	if !ok {
		rgba = image.NewRGBA(img.Bounds())
		draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	}

	return &Frame{
		Image:     rgba,
		Timestamp: time.Now().UnixMilli(),
		Width:     width,
		Height:    height,
	}, nil
}
