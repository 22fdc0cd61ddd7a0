package stamp

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"math"
	"os"

	"github.com/labstack/gommon/log"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// templateExts are tried in order when looking up a stored template. PNG is
// what composite ingestion writes; the rest cover raw uploads.
var templateExts = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp"}

// Renderer stamps names onto stored templates.
type Renderer struct {
	root        string
	configs     *ConfigStore
	fonts       *FontResolver
	calibration Offset
	log         *log.Logger
}

// NewRenderer returns a Renderer reading templates and sidecars below root.
func NewRenderer(root string, configs *ConfigStore, fonts *FontResolver, cal Offset, logger *log.Logger) *Renderer {
	return &Renderer{root: root, configs: configs, fonts: fonts, calibration: cal, log: logger}
}

// TemplateFile returns the stored template image for key.
func (r *Renderer) TemplateFile(key string) (string, bool) {
	for _, ext := range templateExts {
		p := keyFile(r.root, key, ext)
		if fi, err := os.Stat(p); err == nil && fi.Mode().IsRegular() {
			return p, true
		}
	}
	return "", false
}

// Stamp draws name onto the template stored under key and returns the PNG.
// Nothing is written to storage.
func (r *Renderer) Stamp(key, name string) ([]byte, error) {
	path, ok := r.TemplateFile(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, key)
	}

	cfg, err := r.configs.Read(key)
	if err != nil {
		return nil, err
	}
	layout := ResolveLayout(cfg, r.calibration)

	canvas, err := loadTemplate(path)
	if err != nil {
		return nil, err
	}

	face, err := r.fonts.Face(cfg.FontFamily, layout.FontSize, cfg.Bold())
	if err != nil {
		return nil, err
	}
	defer face.Close()

	dot := drawCentered(canvas, name, face, ParseColor(cfg.Color), layout.Rect)
	r.log.Debugf("stamp %q: font %s %.1fpx at (%.2f, %.2f)", key, cfg.FontFamily, layout.FontSize,
		float64(dot.X)/64, float64(dot.Y)/64)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("encode certificate: %w", err)
	}
	return buf.Bytes(), nil
}

// loadTemplate decodes the template at full resolution into an editable
// RGBA buffer anchored at the origin.
func loadTemplate(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, path)
	}
	if err != nil {
		return nil, ioError("open", path, err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: template %s: %v", ErrDecode, path, err)
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst, nil
}

// drawCentered draws text horizontally centered in rect with its ascent
// touching the top edge, and returns the starting dot.
func drawCentered(dst draw.Image, text string, face font.Face, col color.Color, rect RectF) fixed.Point26_6 {
	width := float64(font.MeasureString(face, text)) / 64
	dot := fixed.Point26_6{
		X: toFixed(CenterX(rect, width)),
		Y: toFixed(rect.Y) + face.Metrics().Ascent,
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  dot,
	}
	d.DrawString(text)
	return dot
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}
