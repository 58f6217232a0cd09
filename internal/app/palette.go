package app

import (
	"errors"
	"fmt"

	"github.com/ayusman/handglow/internal/detector"
	"github.com/ayusman/handglow/internal/particle"
	"github.com/ayusman/handglow/internal/store"
	"github.com/lucasb-eyer/go-colorful"
)

// PaletteSettingPrefix prefixes the settings keys holding per-finger colors,
// e.g. "palette.index" = "#ffcc00".
const PaletteSettingPrefix = "palette."

// Palette holds the base particle color of each finger.
type Palette [detector.NumFingers]particle.RGB

// DefaultPalette returns white thumb and pinky, orange index and ring, and a
// cyan middle finger.
func DefaultPalette() Palette {
	white := particle.RGB{R: 255, G: 255, B: 255}
	orange := particle.RGB{R: 255, G: 204, B: 0}
	cyan := particle.RGB{R: 25, G: 255, B: 255}

	var p Palette
	p[detector.Thumb] = white
	p[detector.Index] = orange
	p[detector.Middle] = cyan
	p[detector.Ring] = orange
	p[detector.Pinky] = white
	return p
}

// Color returns the base color for f.
func (p Palette) Color(f detector.Finger) particle.RGB {
	return p[f]
}

// Hex returns the color of f as "#rrggbb".
func (p Palette) Hex(f detector.Finger) string {
	c := p[f]
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// WithOverrides returns a copy of p with colors replaced from a finger name
// to hex color map. Unknown fingers and malformed colors are reported
// together; valid entries are still applied.
func (p Palette) WithOverrides(overrides map[string]string) (Palette, error) {
	var errs []error
	for name, hex := range overrides {
		f, err := detector.ParseFinger(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		c, err := parseColor(hex)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		p[f] = c
	}
	return p, errors.Join(errs...)
}

// LoadPalette reads palette overrides from the settings table on top of the
// default palette.
func LoadPalette(st *store.Store) (Palette, error) {
	overrides, err := st.Settings().WithPrefix(PaletteSettingPrefix)
	if err != nil {
		return DefaultPalette(), fmt.Errorf("load palette: %w", err)
	}
	return DefaultPalette().WithOverrides(overrides)
}

// SavePaletteColor validates hex and stores it as the color of finger.
func SavePaletteColor(st *store.Store, f detector.Finger, hex string) error {
	c, err := parseColor(hex)
	if err != nil {
		return err
	}
	var p Palette
	p[f] = c
	return st.Settings().Set(PaletteSettingPrefix+f.String(), p.Hex(f))
}

// ResetPaletteColor removes the stored color of f so it falls back to the
// default palette.
func ResetPaletteColor(st *store.Store, f detector.Finger) error {
	return st.Settings().Delete(PaletteSettingPrefix + f.String())
}

func parseColor(hex string) (particle.RGB, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return particle.RGB{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return particle.RGB{R: r, G: g, B: b}, nil
}
