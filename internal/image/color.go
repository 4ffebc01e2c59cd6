package imagepkg

import (
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// ParseColor converts a textual color into an opaque RGB color. It accepts
// #rgb, #rgba, #rrggbb, #rrggbbaa, rgb(r, g, b) with integer or percent
// components, and CSS color names. Any alpha in the input is dropped.
func ParseColor(s string) (color.NRGBA, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.HasPrefix(v, "#"):
		if c, ok := parseHex(v[1:]); ok {
			return c, nil
		}
	case strings.HasPrefix(v, "rgb(") && strings.HasSuffix(v, ")"):
		if c, ok := parseRGBFunc(v[4 : len(v)-1]); ok {
			return c, nil
		}
	default:
		if c, ok := colornames.Map[v]; ok {
			return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff}, nil
		}
	}
	return color.NRGBA{}, &ColorParseError{Value: s}
}

func parseHex(h string) (color.NRGBA, bool) {
	switch len(h) {
	case 3, 4:
		var rgb [3]uint8
		for i := 0; i < 3; i++ {
			n, err := strconv.ParseUint(h[i:i+1], 16, 8)
			if err != nil {
				return color.NRGBA{}, false
			}
			rgb[i] = uint8(n * 17)
		}
		if len(h) == 4 {
			if _, err := strconv.ParseUint(h[3:4], 16, 8); err != nil {
				return color.NRGBA{}, false
			}
		}
		return color.NRGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 0xff}, true
	case 6, 8:
		n, err := strconv.ParseUint(h, 16, 32)
		if err != nil {
			return color.NRGBA{}, false
		}
		if len(h) == 8 {
			n >>= 8
		}
		return color.NRGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 0xff}, true
	}
	return color.NRGBA{}, false
}

func parseRGBFunc(args string) (color.NRGBA, bool) {
	parts := strings.Split(args, ",")
	if len(parts) != 3 {
		return color.NRGBA{}, false
	}
	var rgb [3]uint8
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if pct, ok := strings.CutSuffix(p, "%"); ok {
			f, err := strconv.ParseFloat(pct, 64)
			if err != nil || f < 0 || f > 100 {
				return color.NRGBA{}, false
			}
			rgb[i] = uint8(roundHalfEven(f * 255 / 100))
			continue
		}
		n, err := strconv.ParseUint(p, 10, 8)
		if err != nil {
			return color.NRGBA{}, false
		}
		rgb[i] = uint8(n)
	}
	return color.NRGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 0xff}, true
}
