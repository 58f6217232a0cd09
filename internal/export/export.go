// Package export writes trail snapshots to disk as PNG images.
package export

import (
	"errors"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/ayusman/handglow/internal/store"
	"github.com/google/uuid"
	"gocv.io/x/gocv"
)

// ErrEmptyImage is returned when asked to export an image with no pixels.
var ErrEmptyImage = errors.New("image is empty")

// Exporter writes snapshots into a directory and optionally records them.
type Exporter struct {
	dir   string
	store *store.Store
	now   func() time.Time
}

// New creates an Exporter writing into dir. st may be nil, in which case
// exports are written but not recorded.
func New(dir string, st *store.Store) *Exporter {
	return &Exporter{
		dir:   dir,
		store: st,
		now:   time.Now,
	}
}

// Dir returns the export directory.
func (e *Exporter) Dir() string {
	return e.dir
}

// Save writes img as a PNG and returns the export record. particles is the
// live particle count at the time of the snapshot, kept for reference.
func (e *Exporter) Save(img *image.RGBA, particles int) (*store.Export, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}

	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}

	id := uuid.NewString()
	created := e.now()
	path := filepath.Join(e.dir, fileName(created, id))

	if err := writePNG(path, img); err != nil {
		return nil, err
	}

	rec := &store.Export{
		ID:        id,
		Path:      path,
		Width:     img.Bounds().Dx(),
		Height:    img.Bounds().Dy(),
		Particles: particles,
		CreatedAt: created,
	}

	if e.store != nil {
		if err := e.store.Exports().Create(rec); err != nil {
			return nil, fmt.Errorf("record export: %w", err)
		}
	}

	log.Printf("Screenshot saved to %s", path)
	return rec, nil
}

// fileName builds a sortable, collision-free name for a snapshot.
func fileName(t time.Time, id string) string {
	return fmt.Sprintf("screenshot-%s-%s.png", t.Format("20060102-150405"), id[:8])
}

// writePNG encodes img through OpenCV. The encoder picks PNG from the
// extension and keeps the alpha channel.
func writePNG(path string, img *image.RGBA) error {
	mat, err := gocv.ImageToMatRGBA(img)
	if err != nil {
		return fmt.Errorf("convert image: %w", err)
	}
	defer mat.Close()

	if ok := gocv.IMWrite(path, mat); !ok {
		return fmt.Errorf("write %s: encoder failed", path)
	}
	return nil
}
