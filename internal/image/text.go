package imagepkg

import (
	"image"
	"image/color"
	"math"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// lineSpacing is the gap between the lines of multi-line text.
const lineSpacing = 4

type textStyle struct {
	fill        color.NRGBA
	stroke      color.NRGBA
	strokeWidth int
}

// textBlock is text split into lines and measured with one face.
type textBlock struct {
	face    font.Face
	lines   []string
	widths  []int
	ascent  int
	descent int
	// ink reaching past the advance and ascent+descent box, per side
	inkLeft, inkTop, inkRight, inkBottom int
}

func layoutText(face font.Face, text string) textBlock {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	m := face.Metrics()
	b := textBlock{
		face:    face,
		lines:   strings.Split(text, "\n"),
		ascent:  m.Ascent.Ceil(),
		descent: m.Descent.Ceil(),
	}
	for _, l := range b.lines {
		b.widths = append(b.widths, font.MeasureString(face, l).Ceil())
	}
	b.measureInk()
	return b
}

// measureInk records how far glyph ink extends outside the line boxes, e.g.
// accents above the ascent or a negative left bearing.
func (b *textBlock) measureInk() {
	height := b.innerHeight()
	for i, l := range b.lines {
		if l == "" {
			continue
		}
		ink, _ := font.BoundString(b.face, l)
		baseline := i*(b.lineHeight()+lineSpacing) + b.ascent
		b.inkLeft = max(b.inkLeft, -ink.Min.X.Floor())
		b.inkRight = max(b.inkRight, ink.Max.X.Ceil()-b.widths[i])
		b.inkTop = max(b.inkTop, -(baseline + ink.Min.Y.Floor()))
		b.inkBottom = max(b.inkBottom, baseline+ink.Max.Y.Ceil()-height)
	}
}

func (b textBlock) lineHeight() int { return b.ascent + b.descent }

func (b textBlock) innerWidth() int {
	w := 0
	for _, lw := range b.widths {
		w = max(w, lw)
	}
	return w
}

func (b textBlock) innerHeight() int {
	n := len(b.lines)
	return n*b.lineHeight() + (n-1)*lineSpacing
}

// size is the box of the block, ink included, with a stroke of the given
// width around it.
func (b textBlock) size(stroke int) Size {
	w := b.inkLeft + b.innerWidth() + b.inkRight
	h := b.inkTop + b.innerHeight() + b.inkBottom
	return Size{W: float64(w + 2*stroke), H: float64(h + 2*stroke)}
}

// measureText returns the box of text drawn with face and a stroke.
func measureText(face font.Face, text string, stroke int) Size {
	return layoutText(face, text).size(stroke)
}

// paintText draws the block onto layer with its box's top-left corner at
// origin. Lines are aligned inside the box. The stroke is painted first and
// the fill over it; both replace what is under them in proportion to glyph
// coverage.
func paintText(layer *image.RGBA, b textBlock, origin Point, align string, st textStyle) {
	bounds := layer.Bounds()
	mask := image.NewAlpha(bounds)
	inner := b.innerWidth()
	sw := st.strokeWidth

	var glyphs image.Rectangle
	for i, line := range b.lines {
		if line == "" {
			continue
		}
		x := origin.X + float64(sw+b.inkLeft+alignOffset(align, inner, b.widths[i]))
		y := origin.Y + float64(sw+b.inkTop+i*(b.lineHeight()+lineSpacing)+b.ascent)
		d := &font.Drawer{
			Dst:  mask,
			Src:  image.Opaque,
			Face: b.face,
			Dot:  fixed.Point26_6{X: toFixed(x), Y: toFixed(y)},
		}
		gb, _ := d.BoundString(line)
		glyphs = glyphs.Union(image.Rect(gb.Min.X.Floor(), gb.Min.Y.Floor(), gb.Max.X.Ceil(), gb.Max.Y.Ceil()))
		d.DrawString(line)
	}
	if glyphs.Empty() {
		return
	}

	if sw > 0 {
		area := glyphs.Inset(-sw).Intersect(bounds)
		ring := dilate(mask, area, sw)
		draw.DrawMask(layer, area, image.NewUniform(st.stroke), image.Point{}, ring, area.Min, draw.Src)
	}
	area := glyphs.Intersect(bounds)
	draw.DrawMask(layer, area, image.NewUniform(st.fill), image.Point{}, mask, area.Min, draw.Src)
}

func alignOffset(align string, inner, line int) int {
	switch align {
	case "center":
		return (inner - line) / 2
	case "right":
		return inner - line
	}
	return 0
}

// dilate grows the coverage in src by a disk of radius r, restricted to area.
func dilate(src *image.Alpha, area image.Rectangle, r int) *image.Alpha {
	dst := image.NewAlpha(area)
	type offset struct{ dx, dy int }
	var disk []offset
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				disk = append(disk, offset{dx, dy})
			}
		}
	}
	sb := src.Bounds()
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			var v uint8
			for _, o := range disk {
				px, py := x+o.dx, y+o.dy
				if px < sb.Min.X || py < sb.Min.Y || px >= sb.Max.X || py >= sb.Max.Y {
					continue
				}
				if a := src.Pix[src.PixOffset(px, py)]; a > v {
					v = a
					if v == 0xff {
						break
					}
				}
			}
			dst.Pix[dst.PixOffset(x, y)] = v
		}
	}
	return dst
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}
