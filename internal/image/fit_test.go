package imagepkg

import (
	"errors"
	"math"
	"testing"

	"github.com/youruser/postcardapp/internal/catalog"
)

func TestPosition(t *testing.T) {
	anchor := Point{X: 50, Y: 40}
	size := Size{W: 30, H: 11}
	tests := []struct {
		align string
		want  Point
	}{
		{catalog.AlignLeft, Point{X: 50, Y: 34.5}},
		{catalog.AlignCenter, Point{X: 35, Y: 34.5}},
		{catalog.AlignRight, Point{X: 20, Y: 34.5}},
	}
	for _, tt := range tests {
		got, err := Position(anchor, size, tt.align)
		if err != nil {
			t.Fatalf("%s: %v", tt.align, err)
		}
		if got != tt.want {
			t.Errorf("%s: got %+v, want %+v", tt.align, got, tt.want)
		}
	}

	_, err := Position(anchor, size, "justify")
	var ae *InvalidAlignmentError
	if !errors.As(err, &ae) || ae.Align != "justify" {
		t.Fatalf("error = %v, want InvalidAlignmentError", err)
	}
}

func TestPosition_CenterIsMidpoint(t *testing.T) {
	for _, s := range []Size{{0, 0}, {1, 1}, {13, 7}, {333.3, 0.5}, {1e4, 3}} {
		anchor := Point{X: 17.25, Y: -3}
		o, err := Position(anchor, s, catalog.AlignCenter)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(o.X+s.W/2-anchor.X) > 1e-9 || math.Abs(o.Y+s.H/2-anchor.Y) > 1e-9 {
			t.Errorf("size %+v: origin %+v is not centred on %+v", s, o, anchor)
		}
	}
}

func TestCropped(t *testing.T) {
	tests := []struct {
		origin Point
		size   Size
		want   bool
	}{
		{Point{0, 0}, Size{100, 100}, false},
		{Point{10, 10}, Size{20, 20}, false},
		{Point{-0.5, 10}, Size{20, 20}, true},
		{Point{10, -1}, Size{20, 20}, true},
		{Point{90, 10}, Size{20, 20}, true},
		{Point{10, 90}, Size{20, 20}, true},
	}
	for _, tt := range tests {
		if got := Cropped(tt.origin, tt.size, 100, 100); got != tt.want {
			t.Errorf("Cropped(%+v, %+v) = %v, want %v", tt.origin, tt.size, got, tt.want)
		}
	}
}

// linearMeasure models text whose width is ten times its pixel size.
func linearMeasure(px int) (Size, error) {
	return Size{W: float64(10 * px), H: float64(px)}, nil
}

func TestFitterSearch_ShrinksMonotonically(t *testing.T) {
	var scales []float64
	f := Fitter{
		Measure: linearMeasure,
		OnStep: func(scale float64, px int, origin Point, size Size) {
			scales = append(scales, scale)
		},
	}
	fit, err := f.Search(Point{X: 50, Y: 50}, catalog.AlignLeft, 40, 100, 100)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if fit.GaveUp {
		t.Fatal("unexpected give-up")
	}
	if fit.Resizes == 0 {
		t.Fatal("expected at least one resize")
	}
	if len(scales) != fit.Resizes+1 {
		t.Fatalf("observed %d steps, want %d", len(scales), fit.Resizes+1)
	}
	if scales[0] != 1 {
		t.Errorf("first scale = %v, want 1", scales[0])
	}
	for i := 1; i < len(scales); i++ {
		if scales[i] >= scales[i-1] {
			t.Fatalf("scale did not decrease at step %d: %v -> %v", i, scales[i-1], scales[i])
		}
		if want := scales[i-1] * shrinkFactor; scales[i] != want {
			t.Fatalf("step %d: scale %v, want %v", i, scales[i], want)
		}
	}
	if Cropped(fit.Origin, fit.Size, 100, 100) {
		t.Errorf("final box %+v at %+v is cropped", fit.Size, fit.Origin)
	}
	if fit.FontSize > 5 {
		t.Errorf("font size = %d, want <= 5", fit.FontSize)
	}
}

func TestFitterSearch_NoResizeWhenFitting(t *testing.T) {
	f := Fitter{Measure: linearMeasure}
	fit, err := f.Search(Point{X: 50, Y: 50}, catalog.AlignCenter, 4, 100, 100)
	if err != nil {
		t.Fatal(err)
	}
	if fit.Resizes != 0 || fit.Scale != 1 || fit.FontSize != 4 {
		t.Errorf("fit = %+v, want untouched", fit)
	}
}

func TestFitterSearch_GivesUp(t *testing.T) {
	calls := 0
	f := Fitter{Measure: func(px int) (Size, error) {
		calls++
		return Size{W: 1000, H: 10}, nil
	}}
	fit, err := f.Search(Point{X: 50, Y: 50}, catalog.AlignCenter, 40, 100, 100)
	if err != nil {
		t.Fatal(err)
	}
	if !fit.GaveUp {
		t.Fatal("expected give-up")
	}
	if fit.Scale >= minScale {
		t.Errorf("scale = %v, want < %v", fit.Scale, minScale)
	}
	if calls > MaxFitMeasurements {
		t.Errorf("measured %d times, bound is %d", calls, MaxFitMeasurements)
	}
	if MaxFitMeasurements != 153 {
		t.Errorf("MaxFitMeasurements = %d, want 153", MaxFitMeasurements)
	}
	if fit.FontSize < 1 {
		t.Errorf("font size = %d, want clamped to >= 1", fit.FontSize)
	}
}

func TestFitterSearch_Errors(t *testing.T) {
	f := Fitter{Measure: linearMeasure}
	_, err := f.Search(Point{}, "top", 10, 100, 100)
	var ae *InvalidAlignmentError
	if !errors.As(err, &ae) {
		t.Fatalf("error = %v, want InvalidAlignmentError", err)
	}

	boom := errors.New("boom")
	f = Fitter{Measure: func(int) (Size, error) { return Size{}, boom }}
	if _, err := f.Search(Point{}, catalog.AlignLeft, 10, 100, 100); !errors.Is(err, boom) {
		t.Fatalf("error = %v, want boom", err)
	}
}

func TestStrokeAt(t *testing.T) {
	tests := []struct {
		scale, width float64
		want         int
	}{
		{1, 3, 3},
		{0.5, 5, 2},
		{0.5, 3, 2},
		{0.97, 2, 2},
		{0.1, 2, 0},
	}
	for _, tt := range tests {
		if got := StrokeAt(tt.scale, tt.width); got != tt.want {
			t.Errorf("StrokeAt(%v, %v) = %d, want %d", tt.scale, tt.width, got, tt.want)
		}
	}
}
