// Package compositor layers the live camera feed and the trail surface into
// the displayed canvas.
package compositor

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Config holds layer opacities, 0-255.
type Config struct {
	// FeedAlpha is the opacity of the mirrored camera feed.
	FeedAlpha uint8
	// TrailAlpha is the opacity of the trail surface drawn above the feed.
	TrailAlpha uint8
}

// DefaultConfig draws the feed at alpha 50. The trail is drawn at alpha 205
// rather than fully opaque, which differs from the sketch this painter
// follows: an opaque trail would hide the feed completely.
func DefaultConfig() Config {
	return Config{
		FeedAlpha:  50,
		TrailAlpha: 205,
	}
}

// Compositor draws one frame: black, then feed, then trail.
type Compositor struct {
	feedMask  *image.Uniform
	trailMask *image.Uniform
}

// New creates a Compositor with the given configuration.
func New(config Config) *Compositor {
	return &Compositor{
		feedMask:  image.NewUniform(color.Alpha{A: config.FeedAlpha}),
		trailMask: image.NewUniform(color.Alpha{A: config.TrailAlpha}),
	}
}

// Compose renders into dst. feed is expected to be mirrored already and is
// scaled to dst when its size differs; a nil feed is skipped. trail must
// match dst's size.
func (c *Compositor) Compose(dst *image.RGBA, feed image.Image, trail image.Image) {
	b := dst.Bounds()
	draw.Draw(dst, b, image.Black, image.Point{}, draw.Src)

	if feed != nil {
		fb := feed.Bounds()
		if fb.Size() == b.Size() {
			draw.DrawMask(dst, b, feed, fb.Min, c.feedMask, image.Point{}, draw.Over)
		} else {
			draw.BiLinear.Scale(dst, b, feed, fb, draw.Over, &draw.Options{SrcMask: c.feedMask})
		}
	}

	if trail != nil {
		draw.DrawMask(dst, b, trail, trail.Bounds().Min, c.trailMask, image.Point{}, draw.Over)
	}
}
