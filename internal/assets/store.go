// Package assets resolves the font and image identifiers used by templates
// into bytes.
package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/youruser/postcardapp/internal/util"
)

// maxAssetSize caps a single font or image read.
const maxAssetSize = 32 << 20

// Kind tells which capability was asked for an asset.
type Kind string

const (
	KindFont  Kind = "font"
	KindImage Kind = "image"
)

// Store returns the bytes of template assets by relative identifier.
type Store interface {
	Font(name string) ([]byte, error)
	Image(name string) ([]byte, error)
}

// NotFoundError reports an asset the store could not provide.
type NotFoundError struct {
	Kind Kind
	Name string
	Err  error
}

func (e *NotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s asset %q not found: %v", e.Kind, e.Name, e.Err)
	}
	return fmt.Sprintf("%s asset %q not found", e.Kind, e.Name)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// DirStore serves assets from a file system rooted at the assets directory.
type DirStore struct {
	FS fs.FS
}

// NewDirStore returns a store reading from dir.
func NewDirStore(dir string) *DirStore {
	return &DirStore{FS: os.DirFS(dir)}
}

func (s *DirStore) Font(name string) ([]byte, error)  { return s.read(KindFont, name) }
func (s *DirStore) Image(name string) ([]byte, error) { return s.read(KindImage, name) }

func (s *DirStore) read(kind Kind, name string) ([]byte, error) {
	clean, ok := cleanName(name)
	if !ok {
		return nil, &NotFoundError{Kind: kind, Name: name, Err: errors.New("invalid asset name")}
	}
	info, err := fs.Stat(s.FS, clean)
	if err != nil {
		return nil, &NotFoundError{Kind: kind, Name: name, Err: err}
	}
	if info.IsDir() {
		return nil, &NotFoundError{Kind: kind, Name: name, Err: errors.New("is a directory")}
	}
	if info.Size() > maxAssetSize {
		return nil, fmt.Errorf("%s asset %q too large: %d bytes (max %d)", kind, name, info.Size(), maxAssetSize)
	}
	b, err := fs.ReadFile(s.FS, clean)
	if err != nil {
		return nil, &NotFoundError{Kind: kind, Name: name, Err: err}
	}
	return b, nil
}

// HTTPStore fetches assets relative to a base URL.
type HTTPStore struct {
	BaseURL string
	// MaxBytes caps one asset; zero means the default cap.
	MaxBytes int64
}

func (s *HTTPStore) Font(name string) ([]byte, error)  { return s.fetch(KindFont, name) }
func (s *HTTPStore) Image(name string) ([]byte, error) { return s.fetch(KindImage, name) }

func (s *HTTPStore) fetch(kind Kind, name string) ([]byte, error) {
	clean, ok := cleanName(name)
	if !ok {
		return nil, &NotFoundError{Kind: kind, Name: name, Err: errors.New("invalid asset name")}
	}
	u, err := url.JoinPath(s.BaseURL, strings.Split(clean, "/")...)
	if err != nil {
		return nil, fmt.Errorf("%s asset %q: %w", kind, name, err)
	}
	limit := s.MaxBytes
	if limit <= 0 {
		limit = maxAssetSize
	}
	b, err := util.GetBytes(u, limit)
	if errors.Is(err, util.ErrTooLarge) {
		return nil, fmt.Errorf("%s asset %q: %w", kind, name, err)
	}
	if err != nil {
		return nil, &NotFoundError{Kind: kind, Name: name, Err: err}
	}
	return b, nil
}

// cleanName rejects identifiers that would escape the asset root.
func cleanName(name string) (string, bool) {
	name = strings.TrimPrefix(strings.ReplaceAll(name, `\`, "/"), "./")
	clean := path.Clean(name)
	if clean == "." || strings.HasPrefix(clean, "/") || !fs.ValidPath(clean) {
		return "", false
	}
	return clean, true
}
