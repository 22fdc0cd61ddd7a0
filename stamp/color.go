package stamp

import (
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

var black = color.NRGBA{A: 0xff}

// ParseColor accepts "rgb(r, g, b)", "#rgb", "#rrggbb", "#rrggbbaa" or a CSS
// color name. Anything else is opaque black.
func ParseColor(s string) color.NRGBA {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "rgb("):
		if c, ok := parseRGBFunc(lower); ok {
			return c
		}
	case strings.HasPrefix(s, "#"):
		if c, ok := parseHex(s[1:]); ok {
			return c
		}
	default:
		if c, ok := colornames.Map[lower]; ok {
			return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
		}
	}
	return black
}

func parseRGBFunc(s string) (color.NRGBA, bool) {
	body := strings.TrimSuffix(strings.TrimPrefix(s, "rgb("), ")")
	parts := strings.Split(body, ",")
	if len(parts) != 3 {
		return color.NRGBA{}, false
	}
	var ch [3]uint8
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return color.NRGBA{}, false
		}
		ch[i] = uint8(max(0, min(v, 255)))
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: 0xff}, true
}

func parseHex(hex string) (color.NRGBA, bool) {
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 && len(hex) != 8 {
		return color.NRGBA{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, false
	}
	if len(hex) == 6 {
		return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, true
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, true
}
