package stamp

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/gommon/log"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Canonical canvas for composite templates.
const (
	CanvasWidth  = 900
	CanvasHeight = 600
)

var canvasBackground = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// Fit is the letterbox geometry of a source scaled into a destination box.
// Width/Height and the paddings are exact; Rect snaps them to pixels.
type Fit struct {
	Scale  float64
	Width  float64
	Height float64
	PadX   float64
	PadY   float64
}

// LetterboxFit scales srcW×srcH to fit inside dstW×dstH without cropping.
func LetterboxFit(srcW, srcH, dstW, dstH int) Fit {
	scale := math.Min(float64(dstW)/float64(srcW), float64(dstH)/float64(srcH))
	w := float64(srcW) * scale
	h := float64(srcH) * scale
	return Fit{
		Scale:  scale,
		Width:  w,
		Height: h,
		PadX:   (float64(dstW) - w) / 2,
		PadY:   (float64(dstH) - h) / 2,
	}
}

// Rect returns the pixel rectangle inside a dstW×dstH canvas that the scaled
// source occupies. Sizes truncate and offsets round down, like the editor.
func (f Fit) Rect(dstW, dstH int) image.Rectangle {
	w := int(math.Floor(f.Width + 1e-9))
	h := int(math.Floor(f.Height + 1e-9))
	x := (dstW - w) / 2
	y := (dstH - h) / 2
	return image.Rect(x, y, x+w, y+h)
}

// Letterbox draws src centered on a white w×h canvas, preserving its aspect
// ratio.
func Letterbox(src image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(canvasBackground), image.Point{}, draw.Src)

	b := src.Bounds()
	if b.Empty() {
		return dst
	}
	fit := LetterboxFit(b.Dx(), b.Dy(), w, h)
	draw.CatmullRom.Scale(dst, fit.Rect(w, h), src, b, draw.Over, nil)
	return dst
}

// DecodeDataURL returns the payload of a "data:<mime>;base64,<payload>" string.
func DecodeDataURL(s string) ([]byte, error) {
	i := strings.IndexByte(s, ',')
	if i < 0 {
		return nil, fmt.Errorf("%w: data URL has no payload separator", ErrDecode)
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s[i+1:]))
	if err != nil {
		return nil, fmt.Errorf("%w: base64 payload: %v", ErrDecode, err)
	}
	return data, nil
}

// Ingestor stores certificate templates under the content root.
type Ingestor struct {
	root string
	log  *log.Logger
}

// NewIngestor returns an Ingestor writing below root.
func NewIngestor(root string, logger *log.Logger) *Ingestor {
	return &Ingestor{root: root, log: logger}
}

// StoreComposite decodes a flattened editor preview, normalizes it onto the
// canonical canvas and writes it as <key>/<key>.png.
func (in *Ingestor) StoreComposite(key, dataURL string) (string, error) {
	raw, err := DecodeDataURL(dataURL)
	if err != nil {
		return "", err
	}
	src, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("%w: composite image: %v", ErrDecode, err)
	}

	canvas := Letterbox(src, CanvasWidth, CanvasHeight)
	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return "", fmt.Errorf("encode template: %w", err)
	}

	if err := in.write(key, ".png", &buf); err != nil {
		return "", err
	}
	b := src.Bounds()
	in.log.Infof("template %q: composite %s %dx%d normalized to %dx%d", key, format, b.Dx(), b.Dy(), CanvasWidth, CanvasHeight)
	return PublicPath(key, ".png"), nil
}

// StoreUpload writes an uploaded image verbatim as <key>/<key><ext>, where
// ext is the lower-cased extension of filename. The image is not resized.
// Only raster formats the renderer can load are accepted.
func (in *Ingestor) StoreUpload(key, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !isTemplateExt(ext) {
		return "", fmt.Errorf("%w: upload %q is not a supported image type", ErrValidation, filename)
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(raw)); err != nil {
		return "", fmt.Errorf("%w: upload %q: %v", ErrDecode, filename, err)
	}
	if err := in.write(key, ext, bytes.NewReader(raw)); err != nil {
		return "", err
	}
	in.log.Infof("template %q: stored upload %s", key, filename)
	return PublicPath(key, ext), nil
}

func isTemplateExt(ext string) bool {
	for _, e := range templateExts {
		if e == ext {
			return true
		}
	}
	return false
}

// write replaces <key>/<key><ext> through a temp file and rename, so readers
// see either the old or the new file. Templates of the key stored under any
// other extension are removed afterwards.
func (in *Ingestor) write(key, ext string, r io.Reader) error {
	dir := keyDir(in.root, key)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ioError("create dir", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return ioError("create temp", dir, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return ioError("write", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return ioError("close", tmp.Name(), err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return ioError("chmod", tmp.Name(), err)
	}
	dst := keyFile(in.root, key, ext)
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return ioError("rename", dst, err)
	}
	for _, other := range templateExts {
		if other == ext {
			continue
		}
		p := keyFile(in.root, key, other)
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return ioError("remove", p, err)
		}
	}
	return nil
}
