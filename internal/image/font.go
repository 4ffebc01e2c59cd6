package imagepkg

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"

	"github.com/youruser/postcardapp/internal/assets"
	"github.com/youruser/postcardapp/internal/catalog"
)

// bundledFonts are always available by family name.
var bundledFonts = map[string][]byte{
	"goregular":    goregular.TTF,
	"gobold":       gobold.TTF,
	"goitalic":     goitalic.TTF,
	"gobolditalic": gobolditalic.TTF,
	"gomedium":     gomedium.TTF,
	"gomono":       gomono.TTF,
	"gomonobold":   gomonobold.TTF,
	"gosmallcaps":  gosmallcaps.TTF,
}

const (
	maxFontScanDepth = 3
	maxFontFileSize  = 20 << 20
)

// FontResolver turns font specs into font handles. Parsed fonts are cached
// and shared; it is safe for concurrent use.
type FontResolver struct {
	store assets.Store
	dirs  []string

	mu       sync.Mutex
	files    map[string]*opentype.Font // asset name -> font
	families map[string]*opentype.Font // normalized family or file base name -> font
	scanned  bool
}

// NewFontResolver returns a resolver reading font files through store and
// looking up families among the bundled Go fonts, then in dirs and the
// system font directories.
func NewFontResolver(store assets.Store, dirs ...string) *FontResolver {
	return &FontResolver{
		store:    store,
		dirs:     append(append([]string{}, dirs...), systemFontDirs()...),
		files:    make(map[string]*opentype.Font),
		families: make(map[string]*opentype.Font),
	}
}

// Resolve returns a fresh handle for spec. Handles hold per-size faces and
// must not be shared between concurrent renders.
func (r *FontResolver) Resolve(spec catalog.FontSpec) (*Font, error) {
	var (
		f   *opentype.Font
		err error
	)
	switch {
	case spec.Family != "" && spec.File != "":
		err = errors.New("both family and file are set")
	case spec.Family != "":
		f, err = r.family(spec.Family)
	case spec.File != "":
		f, err = r.file(spec.File)
	default:
		err = errors.New("neither family nor file is set")
	}
	if err != nil {
		return nil, &FontResolutionError{Family: spec.Family, File: spec.File, Err: err}
	}
	if f == nil {
		return nil, &FontResolutionError{Family: spec.Family, File: spec.File}
	}
	return &Font{src: f, faces: make(map[int]font.Face)}, nil
}

func (r *FontResolver) file(name string) (*opentype.Font, error) {
	r.mu.Lock()
	f, ok := r.files[name]
	r.mu.Unlock()
	if ok {
		return f, nil
	}
	if r.store == nil {
		return nil, errors.New("no asset store configured")
	}
	data, err := r.store.Font(name)
	if err != nil {
		return nil, err
	}
	f, err = opentype.Parse(data)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.files[name] = f
	r.mu.Unlock()
	return f, nil
}

func (r *FontResolver) family(name string) (*opentype.Font, error) {
	key := fontKey(name)
	if data, ok := bundledFonts[key]; ok {
		r.mu.Lock()
		f, ok := r.families[key]
		r.mu.Unlock()
		if ok {
			return f, nil
		}
		f, err := opentype.Parse(data)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.families[key] = f
		r.mu.Unlock()
		return f, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.scanned {
		r.scanned = true
		for _, dir := range r.dirs {
			r.scanDir(dir, 0)
		}
	}
	return r.families[key], nil
}

// fontKey normalizes "Arial.ttf", "arial" and "ARIAL" to the same key.
func fontKey(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	switch filepath.Ext(lower) {
	case ".ttf", ".otf", ".ttc", ".otc":
		lower = strings.TrimSuffix(lower, filepath.Ext(lower))
	}
	return lower
}

func (r *FontResolver) scanDir(dir string, depth int) {
	if depth > maxFontScanDepth {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		p := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			r.scanDir(p, depth+1)
			continue
		}
		lower := strings.ToLower(entry.Name())
		ext := filepath.Ext(lower)
		if ext != ".ttf" && ext != ".otf" && ext != ".ttc" && ext != ".otc" {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.Size() > maxFontFileSize {
			continue
		}
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		base := fontKey(lower)
		if ext == ".ttc" || ext == ".otc" {
			coll, err := opentype.ParseCollection(data)
			if err != nil {
				continue
			}
			for i := 0; i < coll.NumFonts(); i++ {
				f, err := coll.Font(i)
				if err != nil {
					continue
				}
				if i == 0 {
					r.register(base, f)
				}
				r.registerNames(f)
			}
			continue
		}
		f, err := opentype.Parse(data)
		if err != nil {
			continue
		}
		r.register(base, f)
		r.registerNames(f)
	}
}

// register keeps the first font found for a key; earlier directories win.
func (r *FontResolver) register(key string, f *opentype.Font) {
	if _, ok := r.families[key]; !ok {
		r.families[key] = f
	}
}

func (r *FontResolver) registerNames(f *opentype.Font) {
	for _, id := range []sfnt.NameID{sfnt.NameIDFamily, sfnt.NameIDFull} {
		if name, err := f.Name(nil, id); err == nil && name != "" {
			r.register(strings.ToLower(name), f)
		}
	}
}

func systemFontDirs() []string {
	home, _ := os.UserHomeDir()
	var dirs []string
	switch runtime.GOOS {
	case "windows":
		windir := os.Getenv("WINDIR")
		if windir == "" {
			windir = `C:\Windows`
		}
		dirs = append(dirs, filepath.Join(windir, "Fonts"))
	case "darwin":
		dirs = append(dirs, "/System/Library/Fonts", "/Library/Fonts")
		if home != "" {
			dirs = append(dirs, filepath.Join(home, "Library", "Fonts"))
		}
	default:
		dirs = append(dirs, "/usr/share/fonts", "/usr/local/share/fonts")
		if home != "" {
			dirs = append(dirs, filepath.Join(home, ".fonts"), filepath.Join(home, ".local", "share", "fonts"))
		}
	}
	return dirs
}

// Font is a resolved font that derives faces at any pixel size. Faces are
// cached per size, so the repeated requests of the fit-search are cheap.
type Font struct {
	src   *opentype.Font
	faces map[int]font.Face
}

// Face returns the face at px pixels; sizes below one pixel are clamped.
func (f *Font) Face(px int) (font.Face, error) {
	if px < 1 {
		px = 1
	}
	if face, ok := f.faces[px]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(f.src, &opentype.FaceOptions{
		Size:    float64(px),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, err
	}
	f.faces[px] = face
	return face, nil
}

// Close releases every cached face.
func (f *Font) Close() error {
	var errs []error
	for px, face := range f.faces {
		errs = append(errs, face.Close())
		delete(f.faces, px)
	}
	return errors.Join(errs...)
}
