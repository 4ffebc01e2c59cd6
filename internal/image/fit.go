package imagepkg

import "math"

const (
	// shrinkFactor is applied to the scale after every cropped measurement.
	shrinkFactor = 0.97
	// minScale stops the search; below it the text is drawn cropped.
	minScale = 0.01
)

// MaxFitMeasurements bounds the number of measurements of one fit-search.
var MaxFitMeasurements = int(math.Ceil(math.Log(minScale)/math.Log(shrinkFactor))) + 1

// Fit is the outcome of a fit-search.
type Fit struct {
	Scale    float64
	FontSize int
	Origin   Point
	// Size is the last measured box, stroke included.
	Size Size
	// Resizes counts the shrink steps taken.
	Resizes int
	// GaveUp is set when the scale fell below minScale with the text still
	// cropped. Origin and Size then come from the last measurement.
	GaveUp bool
}

// Fitter shrinks text until its box fits the canvas.
type Fitter struct {
	// Measure returns the text box at a pixel font size.
	Measure func(px int) (Size, error)
	// OnStep, when set, observes every measurement.
	OnStep func(scale float64, px int, origin Point, size Size)
}

// Search runs the fit-search for text anchored at anchor with the given
// alignment and nominal size on a w×h canvas.
func (f Fitter) Search(anchor Point, align string, nominal float64, w, h int) (Fit, error) {
	scale := 1.0
	px := scaledPixels(scale, nominal)
	resizes := 0
	for {
		size, err := f.Measure(px)
		if err != nil {
			return Fit{}, err
		}
		origin, err := Position(anchor, size, align)
		if err != nil {
			return Fit{}, err
		}
		if f.OnStep != nil {
			f.OnStep(scale, px, origin, size)
		}
		if !Cropped(origin, size, w, h) {
			return Fit{Scale: scale, FontSize: px, Origin: origin, Size: size, Resizes: resizes}, nil
		}

		scale *= shrinkFactor
		px = scaledPixels(scale, nominal)
		resizes++
		if scale < minScale {
			return Fit{Scale: scale, FontSize: px, Origin: origin, Size: size, Resizes: resizes, GaveUp: true}, nil
		}
	}
}

// StrokeAt scales a nominal stroke width consistently with the font.
func StrokeAt(scale, width float64) int {
	return int(roundHalfEven(scale * width))
}

func scaledPixels(scale, nominal float64) int {
	px := int(roundHalfEven(scale * nominal))
	if px < 1 {
		px = 1
	}
	return px
}

func roundHalfEven(v float64) float64 {
	return math.RoundToEven(v)
}
