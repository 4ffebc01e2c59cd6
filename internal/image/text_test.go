package imagepkg

import (
	"image"
	"image/color"
	"testing"

	"github.com/youruser/postcardapp/internal/catalog"
)

var opaqueBlack = color.NRGBA{A: 0xff}

func TestTextBlock_SizeContainsInk(t *testing.T) {
	f, err := NewFontResolver(nil).Resolve(catalog.FontSpec{Family: "goregular"})
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	face, err := f.Face(60)
	if err != nil {
		t.Fatal(err)
	}

	for _, text := range []string{"ǺÉ", "jÅ\nÉg", "Hello"} {
		for _, sw := range []int{0, 3} {
			b := layoutText(face, text)
			sz := b.size(sw)
			origin := Point{X: 20, Y: 20}
			layer := image.NewRGBA(image.Rect(0, 0, 400, 300))
			paintText(layer, b, origin, catalog.AlignLeft, textStyle{fill: opaqueBlack, stroke: opaqueBlack, strokeWidth: sw})

			box := image.Rect(20, 20, 20+int(sz.W), 20+int(sz.H))
			ink := inkBounds(layer)
			if ink.Empty() {
				t.Fatalf("%q: nothing painted", text)
			}
			if !ink.In(box) {
				t.Errorf("%q stroke %d: ink %v outside measured box %v", text, sw, ink, box)
			}
		}
	}
}

func inkBounds(img *image.RGBA) image.Rectangle {
	var r image.Rectangle
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y).A > 0 {
				r = r.Union(image.Rect(x, y, x+1, y+1))
			}
		}
	}
	return r
}
