package stamp

import (
	"math"
	"strconv"
	"strings"
)

// Offset is a translation between two coordinate spaces.
type Offset struct {
	X, Y float64
}

// EditorCalibration maps a position saved by the browser preview editor onto
// the raster of the stored template. The editor measures from its preview
// container while the template raster starts at the image origin.
var EditorCalibration = Offset{X: 168.5, Y: 16.5}

// Fallbacks used when a config value cannot be parsed.
const (
	DefaultFontSize  = 16
	DefaultLeft      = 50
	DefaultTop       = 50
	DefaultRectWidth = 400
)

// RectF is a rectangle in raster pixels with a fractional origin.
type RectF struct {
	X, Y, W, H float64
}

// Layout is the resolved geometry for one stamp.
type Layout struct {
	FontSize float64
	Rect     RectF
}

// ParsePx parses values like "50px", "12.5" or " 20 px". Anything that does
// not parse as a finite number yields def.
func ParsePx(s string, def float64) float64 {
	s = strings.TrimSpace(s)
	if n := len(s); n >= 2 && strings.EqualFold(s[n-2:], "px") {
		s = strings.TrimSpace(s[:n-2])
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

// ResolveLayout turns a placement config into the drawing rectangle. The
// rectangle origin is the configured left/top shifted by cal. Width and
// Height are taken as plain numbers, unlike the px-suffixed fields.
func ResolveLayout(cfg PlacementConfig, cal Offset) Layout {
	size := ParsePx(cfg.FontSize, DefaultFontSize)
	if size <= 0 {
		size = DefaultFontSize
	}
	left := ParsePx(cfg.Left, DefaultLeft)
	top := ParsePx(cfg.Top, DefaultTop)

	w := float64(DefaultRectWidth)
	if cfg.Width > 0 {
		w = float64(cfg.Width)
	}
	h := math.Max(size*2, size*1.5)
	if cfg.Height > 0 {
		h = cfg.Height
	}
	return Layout{
		FontSize: size,
		Rect:     RectF{X: left + cal.X, Y: top + cal.Y, W: w, H: h},
	}
}

// CenterX is the left edge of a run of textWidth pixels centered in rect.
func CenterX(rect RectF, textWidth float64) float64 {
	return rect.X + (rect.W-textWidth)/2
}
