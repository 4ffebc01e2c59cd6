package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// documentNames are tried in order when loading from a directory.
var documentNames = []string{"library.json", "library.yaml", "library.yml"}

// LoadFromDir loads the catalog document from an assets directory.
func LoadFromDir(dir string) (*Catalog, error) {
	return LoadFS(os.DirFS(dir))
}

// LoadFS loads the first catalog document found at the root of fsys.
func LoadFS(fsys fs.FS) (*Catalog, error) {
	for _, name := range documentNames {
		data, err := fs.ReadFile(fsys, name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", name, err)
		}
		c, err := Parse(data, name)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", name, err)
		}
		return c, nil
	}
	return nil, fmt.Errorf("no catalog document found (tried %s)", strings.Join(documentNames, ", "))
}

// Parse decodes a JSON or YAML catalog document, chosen by the name's
// extension, and validates it.
func Parse(data []byte, name string) (*Catalog, error) {
	var c Catalog
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the structural rules the renderer relies on. Alignment
// values and colors are checked by the renderer when a stage is drawn.
func (c *Catalog) Validate() error {
	indices := map[int]bool{}
	for i := range c.Templates {
		t := &c.Templates[i]
		if indices[t.Index] {
			return fmt.Errorf("template %d: duplicate index", t.Index)
		}
		indices[t.Index] = true
		if strings.TrimSpace(t.Filename) == "" {
			return fmt.Errorf("template %d: filename is required", t.Index)
		}
		if len(t.Stages) == 0 {
			return fmt.Errorf("template %d: no stages", t.Index)
		}
		ids := map[string]bool{}
		for _, s := range t.Stages {
			if s.ID == "" {
				return fmt.Errorf("template %d: stage with empty id", t.Index)
			}
			if ids[s.ID] {
				return fmt.Errorf("template %d: duplicate stage id %q", t.Index, s.ID)
			}
			ids[s.ID] = true
			if err := validateStage(s); err != nil {
				return fmt.Errorf("template %d: stage %q: %w", t.Index, s.ID, err)
			}
		}
	}
	for i, p := range c.Previews {
		if strings.TrimSpace(p.File) == "" {
			return fmt.Errorf("preview %d: preview_file is required", i)
		}
	}
	return nil
}

func validateStage(s Stage) error {
	f := s.Font
	if (f.Family == "") == (f.File == "") {
		return errors.New("font needs exactly one of family or file")
	}
	if f.Size <= 0 {
		return fmt.Errorf("font size must be positive, got %v", f.Size)
	}
	if f.StrokeWidth < 0 {
		return fmt.Errorf("stroke width must not be negative, got %v", f.StrokeWidth)
	}
	if f.Affine != nil && f.Affine.Det() == 0 {
		return errors.New("affine transform is singular")
	}
	if sh := s.Shadow; sh != nil {
		if sh.Alpha < 0 || sh.Alpha > 1 {
			return fmt.Errorf("shadow alpha must be within [0, 1], got %v", sh.Alpha)
		}
		if sh.Thickness < 0 {
			return fmt.Errorf("shadow thickness must not be negative, got %v", sh.Thickness)
		}
	}
	return nil
}
