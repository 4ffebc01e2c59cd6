package imagepkg

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/youruser/postcardapp/internal/assets"
	"github.com/youruser/postcardapp/internal/catalog"
)

const (
	previewCell    = 400
	previewGap     = 24
	previewColumns = 3
)

// ComposePreviewSheet lays previews out on a grid, each fitted into a square
// cell, so a user can pick a template from one picture.
func ComposePreviewSheet(previews []image.Image) *image.NRGBA {
	cols := min(previewColumns, max(len(previews), 1))
	rows := (len(previews) + cols - 1) / cols
	rows = max(rows, 1)
	w := previewGap + cols*(previewCell+previewGap)
	h := previewGap + rows*(previewCell+previewGap)
	canvas := imaging.New(w, h, color.NRGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff})

	for i, p := range previews {
		thumb := imaging.Fit(p, previewCell, previewCell, imaging.Lanczos)
		tb := thumb.Bounds()
		x := previewGap + (i%cols)*(previewCell+previewGap) + (previewCell-tb.Dx())/2
		y := previewGap + (i/cols)*(previewCell+previewGap) + (previewCell-tb.Dy())/2
		canvas = imaging.Overlay(canvas, thumb, image.Pt(x, y), 1.0)
	}
	return canvas
}

// PreviewSheet loads the catalog previews through the renderer's asset store
// and composes them.
func (r *Renderer) PreviewSheet(c *catalog.Catalog) (*image.NRGBA, error) {
	if len(c.Previews) == 0 {
		return nil, &assets.NotFoundError{Kind: assets.KindImage, Name: "previews"}
	}
	imgs := make([]image.Image, 0, len(c.Previews))
	for _, p := range c.Previews {
		img, err := LoadImage(r.assets, p.File)
		if err != nil {
			return nil, fmt.Errorf("preview %s: %w", p.File, err)
		}
		imgs = append(imgs, img)
	}
	return ComposePreviewSheet(imgs), nil
}
