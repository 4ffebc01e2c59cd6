package assets

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/youruser/postcardapp/internal/util"
)

func TestDirStore(t *testing.T) {
	s := &DirStore{FS: fstest.MapFS{
		"fonts/hand.ttf": {Data: []byte("font")},
		"base.png":       {Data: []byte("png")},
	}}

	b, err := s.Font("fonts/hand.ttf")
	if err != nil || string(b) != "font" {
		t.Fatalf("Font = %q, %v", b, err)
	}
	b, err = s.Image("./base.png")
	if err != nil || string(b) != "png" {
		t.Fatalf("Image = %q, %v", b, err)
	}

	for _, name := range []string{"missing.png", "../etc/passwd", "/abs.png", "", "fonts"} {
		_, err := s.Image(name)
		var nf *NotFoundError
		if !errors.As(err, &nf) {
			t.Errorf("Image(%q) error = %v, want NotFoundError", name, err)
			continue
		}
		if nf.Kind != KindImage {
			t.Errorf("Image(%q) kind = %s", name, nf.Kind)
		}
	}
}

func TestHTTPStore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/assets/fonts/hand.ttf" {
			w.Write([]byte("font"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	s := &HTTPStore{BaseURL: srv.URL + "/assets"}
	b, err := s.Font("fonts/hand.ttf")
	if err != nil || string(b) != "font" {
		t.Fatalf("Font = %q, %v", b, err)
	}
	_, err = s.Image("nope.png")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error = %v, want NotFoundError", err)
	}

	small := &HTTPStore{BaseURL: srv.URL + "/assets", MaxBytes: 3}
	_, err = small.Font("fonts/hand.ttf")
	if !errors.Is(err, util.ErrTooLarge) || errors.As(err, &nf) {
		t.Fatalf("oversized font error = %v, want ErrTooLarge", err)
	}
}
