package imagepkg

import "github.com/youruser/postcardapp/internal/catalog"

// Point is a position on the canvas in pixels.
type Point struct {
	X, Y float64
}

// Size is a measured text box in pixels.
type Size struct {
	W, H float64
}

// Position converts an anchor to the top-left origin of a box of the given
// size. A left anchor is the middle of the box's left edge, center its
// center and right the middle of its right edge.
func Position(anchor Point, size Size, align string) (Point, error) {
	switch align {
	case catalog.AlignLeft:
		return Point{X: anchor.X, Y: anchor.Y - size.H/2}, nil
	case catalog.AlignCenter:
		return Point{X: anchor.X - size.W/2, Y: anchor.Y - size.H/2}, nil
	case catalog.AlignRight:
		return Point{X: anchor.X - size.W, Y: anchor.Y - size.H/2}, nil
	}
	return Point{}, &InvalidAlignmentError{Align: align}
}

// Cropped reports whether a box at origin leaves the w×h canvas.
func Cropped(origin Point, size Size, w, h int) bool {
	inX := func(v float64) bool { return v >= 0 && v <= float64(w) }
	inY := func(v float64) bool { return v >= 0 && v <= float64(h) }
	return !(inX(origin.X) && inY(origin.Y) && inX(origin.X+size.W) && inY(origin.Y+size.H))
}
