// Package trail provides the persistent raster that accumulates particle
// draws across frames.
package trail

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/vector"
)

// DefaultBackground is the dark gray the trail is seeded with.
var DefaultBackground = color.Gray{Y: 20}

// kappa places cubic control points so four segments approximate a circle.
const kappa = 0.5522847498

// Surface is a persistent RGBA raster. It is never cleared after creation;
// every FillCircle blends onto what previous frames left behind.
type Surface struct {
	img *image.RGBA
	z   *vector.Rasterizer
}

// New creates a width x height surface seeded with an opaque background.
func New(width, height int, bg color.Color) *Surface {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	return &Surface{
		img: img,
		z:   vector.NewRasterizer(1, 1),
	}
}

// Bounds returns the surface bounds.
func (s *Surface) Bounds() image.Rectangle {
	return s.img.Bounds()
}

// FillCircle alpha-blends an anti-aliased filled circle. Circles crossing
// the surface edge are clipped.
func (s *Surface) FillCircle(center f64.Vec2, radius float64, c color.NRGBA) {
	if c.A == 0 || radius <= 0 {
		return
	}

	box := image.Rect(
		int(math.Floor(center[0]-radius)),
		int(math.Floor(center[1]-radius)),
		int(math.Ceil(center[0]+radius)),
		int(math.Ceil(center[1]+radius)),
	).Intersect(s.img.Bounds())
	if box.Empty() {
		return
	}

	// Rasterize in clip-local coordinates; the rasterizer drops path
	// segments outside its area.
	cx := float32(center[0] - float64(box.Min.X))
	cy := float32(center[1] - float64(box.Min.Y))
	r := float32(radius)
	k := float32(kappa) * r

	s.z.Reset(box.Dx(), box.Dy())
	s.z.MoveTo(cx+r, cy)
	s.z.CubeTo(cx+r, cy+k, cx+k, cy+r, cx, cy+r)
	s.z.CubeTo(cx-k, cy+r, cx-r, cy+k, cx-r, cy)
	s.z.CubeTo(cx-r, cy-k, cx-k, cy-r, cx, cy-r)
	s.z.CubeTo(cx+k, cy-r, cx+r, cy-k, cx+r, cy)
	s.z.ClosePath()
	s.z.Draw(s.img, box, image.NewUniform(c), image.Point{})
}

// Image returns the live backing image. Callers must not retain it across
// frames; use Snapshot for a stable copy.
func (s *Surface) Image() *image.RGBA {
	return s.img
}

// Snapshot returns a deep copy of the current surface content.
func (s *Surface) Snapshot() *image.RGBA {
	cp := image.NewRGBA(s.img.Bounds())
	copy(cp.Pix, s.img.Pix)
	return cp
}
