package catalog

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
)

const libraryJSON = `{
  "templates": [
    {
      "index": 1,
      "filename": "spring.png",
      "queries": [
        {
          "id": "to", "query_text": "Who is it for?", "x": 100, "y": 40, "align": "center",
          "font": {"family": "goregular", "size": 40, "fill": "#ffffff", "stroke": "black", "stroke_width": 2,
                   "affine": [1, 0.2, 0, 0, 1, 0]},
          "shadow": {"offset_x": 3, "offset_y": 4, "alpha": 0.5, "thickness": 1}
        },
        {
          "id": "from", "query_text": "Who is it from?", "x": 10, "y": 180, "align": "left",
          "font": {"file": "fonts/hand.ttf", "size": 24, "fill": "#333", "stroke": "#fff", "stroke_width": 0}
        }
      ]
    }
  ],
  "previews": [{"preview_file": "previews/1.png"}]
}`

const libraryYAML = `
templates:
  - index: 2
    filename: winter.jpg
    queries:
      - id: greeting
        query_text: Greeting?
        x: 50
        y: 50
        align: right
        font:
          family: gobold
          size: 30
          fill: red
          stroke: blue
          stroke_width: 1
previews:
  - preview_file: previews/2.png
`

func TestLoadFS_JSON(t *testing.T) {
	fsys := fstest.MapFS{"library.json": {Data: []byte(libraryJSON)}}
	c, err := LoadFS(fsys)
	if err != nil {
		t.Fatalf("LoadFS: %v", err)
	}
	tpl, ok := c.Template(1)
	if !ok {
		t.Fatal("template 1 not found")
	}
	if diff := cmp.Diff([]string{"to", "from"}, tpl.IDs()); diff != "" {
		t.Errorf("stage ids (-want +got):\n%s", diff)
	}
	to, _ := tpl.Stage("to")
	want := Affine{1, 0.2, 0, 0, 1, 0}
	if to.Font.Affine == nil || *to.Font.Affine != want {
		t.Errorf("affine = %v, want %v", to.Font.Affine, want)
	}
	if to.Shadow == nil || to.Shadow.Alpha != 0.5 {
		t.Errorf("shadow = %+v", to.Shadow)
	}
	if to.Prompt != "Who is it for?" {
		t.Errorf("prompt = %q", to.Prompt)
	}
	from, _ := tpl.Stage("from")
	if from.Shadow != nil || from.Font.Affine != nil {
		t.Errorf("from stage should have no shadow or affine: %+v", from)
	}
	if diff := cmp.Diff([]Preview{{File: "previews/1.png"}}, c.Previews); diff != "" {
		t.Errorf("previews (-want +got):\n%s", diff)
	}
}

func TestLoadFS_YAML(t *testing.T) {
	fsys := fstest.MapFS{"library.yaml": {Data: []byte(libraryYAML)}}
	c, err := LoadFS(fsys)
	if err != nil {
		t.Fatalf("LoadFS: %v", err)
	}
	tpl, ok := c.Template(2)
	if !ok {
		t.Fatal("template 2 not found")
	}
	want := Stage{
		ID: "greeting", Prompt: "Greeting?", X: 50, Y: 50, Align: AlignRight,
		Font: FontSpec{Family: "gobold", Size: 30, Fill: "red", Stroke: "blue", StrokeWidth: 1},
	}
	if diff := cmp.Diff(want, tpl.Stages[0]); diff != "" {
		t.Errorf("stage (-want +got):\n%s", diff)
	}
}

func TestLoadFS_NoDocument(t *testing.T) {
	if _, err := LoadFS(fstest.MapFS{}); err == nil {
		t.Fatal("expected error for empty directory")
	}
}

func TestValidate(t *testing.T) {
	base := func() Stage {
		return Stage{ID: "a", Align: AlignLeft, Font: FontSpec{Family: "goregular", Size: 10}}
	}
	tests := []struct {
		name   string
		mutate func(c *Catalog)
		want   string
	}{
		{"valid", func(c *Catalog) {}, ""},
		{"duplicate stage", func(c *Catalog) {
			c.Templates[0].Stages = append(c.Templates[0].Stages, base())
		}, "duplicate stage id"},
		{"duplicate index", func(c *Catalog) {
			c.Templates = append(c.Templates, c.Templates[0])
		}, "duplicate index"},
		{"both font sources", func(c *Catalog) {
			c.Templates[0].Stages[0].Font.File = "x.ttf"
		}, "exactly one"},
		{"no font source", func(c *Catalog) {
			c.Templates[0].Stages[0].Font.Family = ""
		}, "exactly one"},
		{"zero size", func(c *Catalog) {
			c.Templates[0].Stages[0].Font.Size = 0
		}, "size must be positive"},
		{"singular affine", func(c *Catalog) {
			c.Templates[0].Stages[0].Font.Affine = &Affine{1, 2, 0, 2, 4, 0}
		}, "singular"},
		{"shadow alpha", func(c *Catalog) {
			c.Templates[0].Stages[0].Shadow = &ShadowSpec{Alpha: 1.5}
		}, "shadow alpha"},
		{"missing filename", func(c *Catalog) {
			c.Templates[0].Filename = " "
		}, "filename is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Catalog{Templates: []Template{{Index: 1, Filename: "a.png", Stages: []Stage{base()}}}}
			tt.mutate(c)
			err := c.Validate()
			if tt.want == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestParse_AffineLength(t *testing.T) {
	doc := func(affine string) string {
		return `{"templates": [{"index": 1, "filename": "a.png", "queries": [{"id": "a", "align": "left",
			"font": {"family": "goregular", "size": 10, "affine": ` + affine + `}}]}]}`
	}
	for _, affine := range []string{"[1, 0, 5, 0, 1]", "[1, 0, 5, 0, 1, 7, 99]", "[]"} {
		if _, err := Parse([]byte(doc(affine)), "library.json"); err == nil || !strings.Contains(err.Error(), "6 coefficients") {
			t.Errorf("json affine %s: error = %v", affine, err)
		}
	}
	c, err := Parse([]byte(doc("[1, 0, 5, 0, 1, 7]")), "library.json")
	if err != nil {
		t.Fatalf("six coefficients: %v", err)
	}
	if got, want := *c.Templates[0].Stages[0].Font.Affine, (Affine{1, 0, 5, 0, 1, 7}); got != want {
		t.Errorf("affine = %v, want %v", got, want)
	}

	yamlDoc := `
templates:
  - index: 1
    filename: a.png
    queries:
      - id: a
        align: left
        font: {family: goregular, size: 10, affine: [1, 0, 5, 0, 1]}
`
	if _, err := Parse([]byte(yamlDoc), "library.yaml"); err == nil || !strings.Contains(err.Error(), "6 coefficients") {
		t.Errorf("yaml affine: error = %v", err)
	}
}

func TestParseChoiceAndMissing(t *testing.T) {
	c, err := Parse([]byte(libraryJSON), "library.json")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	for _, in := range []string{"1", " #1 ", "#1"} {
		if _, ok := c.ParseChoice(in); !ok {
			t.Errorf("ParseChoice(%q) failed", in)
		}
	}
	for _, in := range []string{"", "one", "7"} {
		if _, ok := c.ParseChoice(in); ok {
			t.Errorf("ParseChoice(%q) should fail", in)
		}
	}
	tpl, _ := c.Template(1)
	if diff := cmp.Diff([]string{"from"}, tpl.Missing(map[string]string{"to": "Ann"})); diff != "" {
		t.Errorf("missing (-want +got):\n%s", diff)
	}
	if got := tpl.Missing(map[string]string{"to": "", "from": "Bob"}); len(got) != 0 {
		t.Errorf("missing = %v, want none", got)
	}
}
