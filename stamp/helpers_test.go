package stamp

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/gommon/log"
)

func testLogger() *log.Logger {
	l := log.New("stamp-test")
	l.SetLevel(log.OFF)
	return l
}

func solidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func dataURL(t *testing.T, img image.Image) string {
	t.Helper()
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(encodePNG(t, img))
}

func decodePNG(t *testing.T, b []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	return img
}

// writeTemplate stores img as the PNG template of key below root.
func writeTemplate(t *testing.T, root, key string, img image.Image) {
	t.Helper()
	dir := filepath.Join(root, TemplatesDir, key)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, key+".png"), encodePNG(t, img), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
}

func rgbaAt(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

func isWhite(c color.RGBA) bool {
	return c.R == 0xff && c.G == 0xff && c.B == 0xff && c.A == 0xff
}

func writeFileString(path, s string) error {
	return os.WriteFile(path, []byte(s), 0o644)
}
