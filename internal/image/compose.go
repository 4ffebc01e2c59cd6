package imagepkg

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"

	"github.com/youruser/postcardapp/internal/assets"
	"github.com/youruser/postcardapp/internal/catalog"
)

// TextBindings maps stage ids to the text drawn for them.
type TextBindings map[string]string

// StageReport describes how one stage was drawn.
type StageReport struct {
	ID          string
	Scale       float64
	FontSize    int
	StrokeWidth int
	Resizes     int
	Origin      Point
}

// Result is a finished render.
type Result struct {
	Image    *image.NRGBA
	Stages   []StageReport
	Warnings []FitGiveUpWarning
}

// Renderer draws templates. It holds no per-render state and is safe for
// concurrent use.
type Renderer struct {
	assets   assets.Store
	fonts    *FontResolver
	fontDirs []string
	log      *slog.Logger
}

type Option func(*Renderer)

// WithLogger sets the logger used for fit-search reports.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.log = l
		}
	}
}

// WithFontDirs adds directories searched for font families.
func WithFontDirs(dirs ...string) Option {
	return func(r *Renderer) { r.fontDirs = append(r.fontDirs, dirs...) }
}

// NewRenderer returns a renderer reading templates' assets from store.
func NewRenderer(store assets.Store, opts ...Option) *Renderer {
	r := &Renderer{
		assets: store,
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.fonts = NewFontResolver(store, r.fontDirs...)
	return r
}

// Render draws every stage of tpl over its base image.
func (r *Renderer) Render(tpl *catalog.Template, texts TextBindings) (*Result, error) {
	if err := checkBindings(tpl, texts); err != nil {
		return nil, err
	}
	base, err := LoadImage(r.assets, tpl.Filename)
	if err != nil {
		return nil, fmt.Errorf("template %d: %w", tpl.Index, err)
	}
	return r.Compose(base, tpl, texts)
}

// Compose draws every stage of tpl over base. base is not modified.
func (r *Renderer) Compose(base image.Image, tpl *catalog.Template, texts TextBindings) (*Result, error) {
	if err := checkBindings(tpl, texts); err != nil {
		return nil, err
	}
	sb := base.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, sb.Dx(), sb.Dy()))
	draw.Draw(canvas, canvas.Bounds(), base, sb.Min, draw.Src)

	res := &Result{}
	for _, st := range tpl.Stages {
		rep, gaveUp, err := r.drawStage(canvas, st, texts[st.ID])
		if err != nil {
			return nil, fmt.Errorf("template %d: %w", tpl.Index, err)
		}
		res.Stages = append(res.Stages, rep)
		if gaveUp {
			res.Warnings = append(res.Warnings, FitGiveUpWarning{Stage: st.ID, Scale: rep.Scale, Iterations: rep.Resizes})
		}
	}
	res.Image = imaging.Clone(canvas)
	return res, nil
}

func checkBindings(tpl *catalog.Template, texts TextBindings) error {
	if missing := tpl.Missing(texts); len(missing) > 0 {
		return &MissingBindingError{Template: tpl.Index, IDs: missing}
	}
	return nil
}

// drawStage fits, paints and merges one stage into canvas.
func (r *Renderer) drawStage(canvas *image.RGBA, st catalog.Stage, text string) (StageReport, bool, error) {
	fill, err := ParseColor(st.Font.Fill)
	if err != nil {
		return StageReport{}, false, fmt.Errorf("stage %q: fill: %w", st.ID, err)
	}
	stroke, err := ParseColor(st.Font.Stroke)
	if err != nil {
		return StageReport{}, false, fmt.Errorf("stage %q: stroke: %w", st.ID, err)
	}
	f, err := r.fonts.Resolve(st.Font)
	if err != nil {
		return StageReport{}, false, fmt.Errorf("stage %q: %w", st.ID, err)
	}
	defer f.Close()

	measureStroke := int(roundHalfEven(st.Font.StrokeWidth))
	bounds := canvas.Bounds()
	fitter := Fitter{
		Measure: func(px int) (Size, error) {
			face, err := f.Face(px)
			if err != nil {
				return Size{}, err
			}
			return measureText(face, text, measureStroke), nil
		},
		OnStep: func(scale float64, px int, origin Point, size Size) {
			r.log.Debug("fit step", "stage", st.ID, "scale", scale, "px", px, "x", origin.X, "y", origin.Y, "w", size.W, "h", size.H)
		},
	}
	fit, err := fitter.Search(Point{X: st.X, Y: st.Y}, st.Align, st.Font.Size, bounds.Dx(), bounds.Dy())
	if err != nil {
		var ae *InvalidAlignmentError
		if errors.As(err, &ae) {
			ae.Stage = st.ID
			return StageReport{}, false, ae
		}
		return StageReport{}, false, fmt.Errorf("stage %q: %w", st.ID, &FontResolutionError{Family: st.Font.Family, File: st.Font.File, Err: err})
	}
	if fit.GaveUp {
		r.log.Warn("scale too small, giving up", "stage", st.ID, "scale", fit.Scale, "resizes", fit.Resizes)
	}
	r.log.Info("text resized", "stage", st.ID, "resizes", fit.Resizes, "scale", fit.Scale)

	face, err := f.Face(fit.FontSize)
	if err != nil {
		return StageReport{}, false, fmt.Errorf("stage %q: %w", st.ID, &FontResolutionError{Family: st.Font.Family, File: st.Font.File, Err: err})
	}
	block := layoutText(face, text)
	sw := StrokeAt(fit.Scale, st.Font.StrokeWidth)

	layer := image.NewRGBA(bounds)
	paintText(layer, block, fit.Origin, st.Align, textStyle{fill: fill, stroke: stroke, strokeWidth: sw})
	if st.Shadow != nil {
		layer = addShadow(layer, block, fit.Origin, st.Align, st.Shadow, fit.Scale, st.Font.StrokeWidth)
	}
	if st.Font.Affine != nil {
		var ok bool
		if layer, ok = applyAffine(layer, *st.Font.Affine); !ok {
			return StageReport{}, false, &InvalidTransformError{Stage: st.ID}
		}
	}
	draw.Draw(canvas, bounds, layer, bounds.Min, draw.Over)

	return StageReport{
		ID:          st.ID,
		Scale:       fit.Scale,
		FontSize:    fit.FontSize,
		StrokeWidth: sw,
		Resizes:     fit.Resizes,
		Origin:      fit.Origin,
	}, fit.GaveUp, nil
}
