package catalog

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Alignment values accepted by a stage.
const (
	AlignLeft   = "left"
	AlignCenter = "center"
	AlignRight  = "right"
)

// Catalog is the read-only set of templates and previews loaded at startup.
// It is shared by every render and must not be mutated after Load.
type Catalog struct {
	Templates []Template `json:"templates" yaml:"templates"`
	Previews  []Preview  `json:"previews" yaml:"previews"`
}

// Preview is an image shown to a user choosing a template.
type Preview struct {
	File string `json:"preview_file" yaml:"preview_file"`
}

type Template struct {
	Index    int     `json:"index" yaml:"index"`
	Filename string  `json:"filename" yaml:"filename"`
	Stages   []Stage `json:"queries" yaml:"queries"`
}

// Stage places one piece of user text on the template. Stages paint in
// declared order.
type Stage struct {
	ID     string      `json:"id" yaml:"id"`
	Prompt string      `json:"query_text" yaml:"query_text"`
	X      float64     `json:"x" yaml:"x"`
	Y      float64     `json:"y" yaml:"y"`
	Align  string      `json:"align" yaml:"align"`
	Font   FontSpec    `json:"font" yaml:"font"`
	Shadow *ShadowSpec `json:"shadow,omitempty" yaml:"shadow,omitempty"`
}

// FontSpec names exactly one of Family or File.
type FontSpec struct {
	Family      string  `json:"family,omitempty" yaml:"family,omitempty"`
	File        string  `json:"file,omitempty" yaml:"file,omitempty"`
	Size        float64 `json:"size" yaml:"size"`
	Fill        string  `json:"fill" yaml:"fill"`
	Stroke      string  `json:"stroke" yaml:"stroke"`
	StrokeWidth float64 `json:"stroke_width" yaml:"stroke_width"`
	Affine      *Affine `json:"affine,omitempty" yaml:"affine,omitempty"`
}

type ShadowSpec struct {
	OffsetX   float64 `json:"offset_x" yaml:"offset_x"`
	OffsetY   float64 `json:"offset_y" yaml:"offset_y"`
	Alpha     float64 `json:"alpha" yaml:"alpha"`
	Thickness float64 `json:"thickness" yaml:"thickness"`
}

// Affine holds (a, b, c, d, e, f). An output pixel (x, y) samples the layer
// at (a*x + b*y + c, d*x + e*y + f).
type Affine [6]float64

// UnmarshalJSON accepts exactly six coefficients.
func (a *Affine) UnmarshalJSON(b []byte) error {
	var v []float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	return a.set(v)
}

// UnmarshalYAML accepts exactly six coefficients.
func (a *Affine) UnmarshalYAML(n *yaml.Node) error {
	var v []float64
	if err := n.Decode(&v); err != nil {
		return err
	}
	return a.set(v)
}

func (a *Affine) set(v []float64) error {
	if len(v) != len(a) {
		return fmt.Errorf("affine needs %d coefficients, got %d", len(a), len(v))
	}
	copy(a[:], v)
	return nil
}

// Det is the determinant of the linear part.
func (a Affine) Det() float64 {
	return a[0]*a[4] - a[1]*a[3]
}

// IDs returns the stage ids in paint order.
func (t *Template) IDs() []string {
	ids := make([]string, 0, len(t.Stages))
	for _, s := range t.Stages {
		ids = append(ids, s.ID)
	}
	return ids
}

// Stage returns the stage with the given id.
func (t *Template) Stage(id string) (Stage, bool) {
	for _, s := range t.Stages {
		if s.ID == id {
			return s, true
		}
	}
	return Stage{}, false
}
