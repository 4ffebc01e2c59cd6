package postcard

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"

	"github.com/youruser/postcardapp/internal/util"
)

// ErrNotFound is returned for unknown or malformed postcard ids.
var ErrNotFound = errors.New("postcard not found")

// Postcard describes one rendered postcard.
type Postcard struct {
	ID       string            `json:"id"`
	Template int               `json:"template"`
	Texts    map[string]string `json:"texts"`
	Warnings []string          `json:"warnings,omitempty"`
	Created  time.Time         `json:"created"`
}

// Store persists rendered postcards under unique ids, so concurrent renders
// never share an output file.
type Store struct {
	dir string
}

// NewStore creates dir if needed.
func NewStore(dir string) (*Store, error) {
	if err := util.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("postcard store %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Save assigns p a new id and writes the image and its metadata. Files are
// written under temporary names and renamed, so a failed save leaves no
// partial postcard behind.
func (s *Store) Save(p *Postcard, img image.Image) error {
	id, err := newID()
	if err != nil {
		return err
	}
	p.ID = id
	if p.Created.IsZero() {
		p.Created = time.Now().UTC()
	}
	meta, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode postcard %s: %w", id, err)
	}

	if err := s.writeAtomic(s.imagePath(id), func(f *os.File) error {
		return imaging.Encode(f, img, imaging.PNG)
	}); err != nil {
		return err
	}
	if err := s.writeAtomic(s.metaPath(id), func(f *os.File) error {
		_, err := f.Write(meta)
		return err
	}); err != nil {
		os.Remove(s.imagePath(id))
		return err
	}
	return nil
}

// ImagePath returns the PNG file of a stored postcard.
func (s *Store) ImagePath(id string) (string, error) {
	if !validID(id) {
		return "", ErrNotFound
	}
	p := s.imagePath(id)
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", err
	}
	return p, nil
}

// Get returns the metadata of a stored postcard.
func (s *Store) Get(id string) (*Postcard, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	b, err := os.ReadFile(s.metaPath(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var p Postcard
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("decode postcard %s: %w", id, err)
	}
	return &p, nil
}

func (s *Store) imagePath(id string) string { return filepath.Join(s.dir, id+".png") }
func (s *Store) metaPath(id string) string  { return filepath.Join(s.dir, id+".json") }

func (s *Store) writeAtomic(path string, write func(*os.File) error) error {
	f, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if err := write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

const idBytes = 16

func newID() (string, error) {
	b := make([]byte, idBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("postcard id: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func validID(id string) bool {
	if len(id) != 2*idBytes {
		return false
	}
	_, err := hex.DecodeString(id)
	return err == nil
}
