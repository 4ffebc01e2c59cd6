package imagepkg

import (
	"image"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/youruser/postcardapp/internal/catalog"
)

// applyAffine remaps layer so that every output pixel (x, y) takes the
// layer pixel at (a*x + b*y + c, d*x + e*y + f), sampled nearest-neighbour.
// Pixels mapped from outside the layer are transparent.
func applyAffine(layer *image.RGBA, m catalog.Affine) (*image.RGBA, bool) {
	det := m.Det()
	if det == 0 {
		return nil, false
	}
	a, b, c, d, e, f := m[0], m[1], m[2], m[3], m[4], m[5]
	// draw.Transform wants the source-to-destination map, the inverse of m.
	s2d := f64.Aff3{
		e / det, -b / det, (b*f - c*e) / det,
		-d / det, a / det, (c*d - a*f) / det,
	}
	out := image.NewRGBA(layer.Bounds())
	draw.NearestNeighbor.Transform(out, s2d, layer, layer.Bounds(), draw.Src, nil)
	return out, true
}
