package imagepkg

import (
	"fmt"
	"strings"
)

// InvalidAlignmentError reports a stage alignment other than left, center
// or right.
type InvalidAlignmentError struct {
	Stage string
	Align string
}

func (e *InvalidAlignmentError) Error() string {
	if e.Stage == "" {
		return fmt.Sprintf("unknown alignment %q", e.Align)
	}
	return fmt.Sprintf("stage %q: unknown alignment %q", e.Stage, e.Align)
}

// FontResolutionError reports a font spec that names no loadable font.
type FontResolutionError struct {
	Family string
	File   string
	Err    error
}

func (e *FontResolutionError) Error() string {
	name := e.Family
	if name == "" {
		name = e.File
	}
	if e.Err != nil {
		return fmt.Sprintf("resolve font %q: %v", name, e.Err)
	}
	return fmt.Sprintf("resolve font %q: not found", name)
}

func (e *FontResolutionError) Unwrap() error { return e.Err }

// ColorParseError reports an unrecognized color value.
type ColorParseError struct {
	Value string
}

func (e *ColorParseError) Error() string {
	return fmt.Sprintf("unrecognized color %q", e.Value)
}

// MissingBindingError lists the stage ids a render was given no text for.
type MissingBindingError struct {
	Template int
	IDs      []string
}

func (e *MissingBindingError) Error() string {
	return fmt.Sprintf("template %d: missing text for %s", e.Template, strings.Join(e.IDs, ", "))
}

// InvalidTransformError reports an affine matrix that cannot be applied.
type InvalidTransformError struct {
	Stage string
}

func (e *InvalidTransformError) Error() string {
	return fmt.Sprintf("stage %q: affine transform is singular", e.Stage)
}

// FitGiveUpWarning is reported when fit-search stopped below the minimum
// scale with the text still cropped. The render still succeeds.
type FitGiveUpWarning struct {
	Stage      string
	Scale      float64
	Iterations int
}

func (w FitGiveUpWarning) Error() string {
	return fmt.Sprintf("stage %q: text still cropped after %d resizes (scale %.4f)", w.Stage, w.Iterations, w.Scale)
}
