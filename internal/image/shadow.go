package imagepkg

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/youruser/postcardapp/internal/catalog"
)

// addShadow paints a black, translucent copy of the block under the text
// already on layer. Offset and stroke follow the fit-search scale.
func addShadow(layer *image.RGBA, b textBlock, origin Point, align string, sh *catalog.ShadowSpec, scale, strokeWidth float64) *image.RGBA {
	a := uint8(roundHalfEven(sh.Alpha * 255))
	c := color.NRGBA{A: a}
	at := Point{X: origin.X + scale*sh.OffsetX, Y: origin.Y + scale*sh.OffsetY}

	shadow := image.NewRGBA(layer.Bounds())
	paintText(shadow, b, at, align, textStyle{
		fill:        c,
		stroke:      c,
		strokeWidth: StrokeAt(scale, strokeWidth+sh.Thickness),
	})
	draw.Draw(shadow, shadow.Bounds(), layer, layer.Bounds().Min, draw.Over)
	return shadow
}
