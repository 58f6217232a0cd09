package compositor

import (
	"image"
	"image/color"
	"testing"

	"golang.org/x/image/draw"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func TestCompose_TrailOverFeed(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 4, 4))
	feed := solid(4, 4, color.RGBA{R: 255, A: 255})
	trail := solid(4, 4, color.RGBA{B: 255, A: 255})

	New(Config{FeedAlpha: 255, TrailAlpha: 255}).Compose(dst, feed, trail)

	if got := dst.RGBAAt(1, 1); got != (color.RGBA{B: 255, A: 255}) {
		t.Errorf("opaque trail should cover feed, got %v", got)
	}
}

func TestCompose_FeedShowsThroughTranslucentTrail(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 4, 4))
	feed := solid(4, 4, color.RGBA{R: 255, A: 255})
	trail := solid(4, 4, color.RGBA{A: 255})

	New(Config{FeedAlpha: 255, TrailAlpha: 128}).Compose(dst, feed, trail)

	got := dst.RGBAAt(2, 2)
	if got.R < 100 || got.R > 155 {
		t.Errorf("expected feed roughly half visible, got %v", got)
	}
	if got.A != 255 {
		t.Errorf("canvas must stay opaque, got %v", got)
	}
}

func TestCompose_DefaultKeepsFeedVisible(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 4, 4))
	feed := solid(4, 4, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	trail := solid(4, 4, color.RGBA{A: 255})

	New(DefaultConfig()).Compose(dst, feed, trail)

	// White feed at alpha 50 gives about 50, a dark trail at 205 leaves
	// about a fifth of that.
	if got := dst.RGBAAt(0, 0); got.R == 0 || got.R > 20 {
		t.Errorf("feed under the default trail = %v, want faintly visible", got)
	}
}

func TestCompose_FeedAlpha(t *testing.T) {
	tests := []struct {
		name      string
		feedAlpha uint8
		wantMin   uint8
		wantMax   uint8
	}{
		{name: "hidden", feedAlpha: 0, wantMin: 0, wantMax: 0},
		{name: "reference tint", feedAlpha: 50, wantMin: 45, wantMax: 55},
		{name: "opaque", feedAlpha: 255, wantMin: 255, wantMax: 255},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := image.NewRGBA(image.Rect(0, 0, 4, 4))
			feed := solid(4, 4, color.RGBA{R: 255, G: 255, B: 255, A: 255})

			New(Config{FeedAlpha: tt.feedAlpha}).Compose(dst, feed, nil)

			got := dst.RGBAAt(0, 0).R
			if got < tt.wantMin || got > tt.wantMax {
				t.Errorf("R = %d, want within [%d, %d]", got, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestCompose_ScalesFeed(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 8, 8))
	feed := solid(2, 2, color.RGBA{G: 255, A: 255})

	New(Config{FeedAlpha: 255}).Compose(dst, feed, nil)

	for _, pt := range []image.Point{{0, 0}, {7, 7}, {4, 3}} {
		if got := dst.RGBAAt(pt.X, pt.Y); got.G < 250 {
			t.Errorf("pixel %v = %v, want scaled green feed", pt, got)
		}
	}
}

func TestCompose_NilFeed(t *testing.T) {
	dst := solid(4, 4, color.RGBA{R: 99, A: 255})

	New(DefaultConfig()).Compose(dst, nil, nil)

	if got := dst.RGBAAt(0, 0); got != (color.RGBA{A: 255}) {
		t.Errorf("expected cleared black canvas, got %v", got)
	}
}
