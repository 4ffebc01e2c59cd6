package imagepkg

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/youruser/postcardapp/internal/assets"
)

// LoadImage fetches an image asset from store and decodes it.
func LoadImage(store assets.Store, name string) (image.Image, error) {
	if store == nil {
		return nil, &assets.NotFoundError{Kind: assets.KindImage, Name: name}
	}
	b, err := store.Image(name)
	if err != nil {
		return nil, err
	}
	return DecodeImage(b)
}

// DecodeImage decodes PNG, JPEG, GIF, TIFF or BMP bytes, applying any EXIF
// orientation.
func DecodeImage(b []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(b), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}
