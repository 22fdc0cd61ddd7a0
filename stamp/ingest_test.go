package stamp

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var red = color.RGBA{R: 0xff, A: 0xff}

func TestLetterboxFitScenarioA(t *testing.T) {
	fit := LetterboxFit(1200, 300, CanvasWidth, CanvasHeight)
	if fit.Scale != 0.75 {
		t.Errorf("Scale = %v, want 0.75", fit.Scale)
	}
	if fit.Width != 900 || fit.Height != 225 {
		t.Errorf("scaled size = %vx%v, want 900x225", fit.Width, fit.Height)
	}
	if fit.PadX != 0 || fit.PadY != 187.5 {
		t.Errorf("padding = (%v, %v), want (0, 187.5)", fit.PadX, fit.PadY)
	}
	if r := fit.Rect(CanvasWidth, CanvasHeight); r != image.Rect(0, 187, 900, 412) {
		t.Errorf("Rect = %v, want (0,187)-(900,412)", r)
	}
}

func TestLetterboxFitNeverCrops(t *testing.T) {
	canvas := image.Rect(0, 0, CanvasWidth, CanvasHeight)
	sizes := [][2]int{{1200, 300}, {300, 1200}, {900, 600}, {450, 300}, {1, 1}, {2700, 1800}, {1023, 767}, {7, 3000}}
	for _, s := range sizes {
		fit := LetterboxFit(s[0], s[1], CanvasWidth, CanvasHeight)
		r := fit.Rect(CanvasWidth, CanvasHeight)
		if !r.In(canvas) {
			t.Errorf("%dx%d: rect %v outside canvas", s[0], s[1], r)
		}
		if r.Dx() != CanvasWidth && r.Dy() != CanvasHeight {
			t.Errorf("%dx%d: rect %v touches neither canvas edge", s[0], s[1], r)
		}
		// Centered: the two paddings differ by at most one pixel.
		if d := (r.Min.X - 0) - (CanvasWidth - r.Max.X); d < -1 || d > 1 {
			t.Errorf("%dx%d: horizontal padding unbalanced in %v", s[0], s[1], r)
		}
		if d := (r.Min.Y - 0) - (CanvasHeight - r.Max.Y); d < -1 || d > 1 {
			t.Errorf("%dx%d: vertical padding unbalanced in %v", s[0], s[1], r)
		}
		srcAspect := float64(s[0]) / float64(s[1])
		if got := fit.Width / fit.Height; math.Abs(got-srcAspect) > 1e-9*srcAspect {
			t.Errorf("%dx%d: aspect %v, want %v", s[0], s[1], got, srcAspect)
		}
	}
}

func TestLetterboxPadsWithWhite(t *testing.T) {
	out := Letterbox(solidImage(1200, 300, red), CanvasWidth, CanvasHeight)
	if b := out.Bounds(); b.Dx() != CanvasWidth || b.Dy() != CanvasHeight {
		t.Fatalf("size = %v, want 900x600", b)
	}
	for _, p := range []image.Point{{450, 10}, {450, 180}, {0, 0}, {899, 599}, {450, 420}} {
		if c := rgbaAt(out, p.X, p.Y); !isWhite(c) {
			t.Errorf("pixel %v = %v, want white padding", p, c)
		}
	}
	for _, p := range []image.Point{{450, 300}, {10, 250}, {890, 350}} {
		if c := rgbaAt(out, p.X, p.Y); c != red {
			t.Errorf("pixel %v = %v, want source red", p, c)
		}
	}
}

func TestLetterboxPortrait(t *testing.T) {
	out := Letterbox(solidImage(300, 1200, red), CanvasWidth, CanvasHeight)
	// 300x1200 scales to 150x600, centered at x 375..525.
	if c := rgbaAt(out, 300, 300); !isWhite(c) {
		t.Errorf("left padding = %v, want white", c)
	}
	if c := rgbaAt(out, 450, 300); c != red {
		t.Errorf("center = %v, want red", c)
	}
	if c := rgbaAt(out, 600, 300); !isWhite(c) {
		t.Errorf("right padding = %v, want white", c)
	}
}

func TestDecodeDataURL(t *testing.T) {
	got, err := DecodeDataURL("data:text/plain;base64,aGVsbG8=")
	if err != nil {
		t.Fatalf("DecodeDataURL failed: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("payload = %q, want %q", got, "hello")
	}

	for _, bad := range []string{"no separator here", "data:image/png;base64,@@@@", "data:,abc"} {
		if _, err := DecodeDataURL(bad); !errors.Is(err, ErrDecode) {
			t.Errorf("DecodeDataURL(%q) error = %v, want ErrDecode", bad, err)
		}
	}
}

func TestStoreComposite(t *testing.T) {
	root := t.TempDir()
	in := NewIngestor(root, testLogger())

	path, err := in.StoreComposite("Go Basics", dataURL(t, solidImage(1200, 300, red)))
	if err != nil {
		t.Fatalf("StoreComposite failed: %v", err)
	}
	if path != "/img/certificados/Go Basics/Go Basics.png" {
		t.Errorf("path = %q", path)
	}

	data, err := os.ReadFile(filepath.Join(root, "img", "certificados", "Go Basics", "Go Basics.png"))
	if err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
	img := decodePNG(t, data)
	if b := img.Bounds(); b.Dx() != 900 || b.Dy() != 600 {
		t.Errorf("stored size = %v, want 900x600", b)
	}
}

func TestStoreCompositeOverwrites(t *testing.T) {
	root := t.TempDir()
	in := NewIngestor(root, testLogger())

	if _, err := in.StoreComposite("k", dataURL(t, solidImage(90, 60, red))); err != nil {
		t.Fatalf("first StoreComposite failed: %v", err)
	}
	blue := color.RGBA{B: 0xff, A: 0xff}
	if _, err := in.StoreComposite("k", dataURL(t, solidImage(90, 60, blue))); err != nil {
		t.Fatalf("second StoreComposite failed: %v", err)
	}
	data, err := os.ReadFile(keyFile(root, "k", ".png"))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if c := rgbaAt(decodePNG(t, data), 450, 300); c != blue {
		t.Errorf("center = %v, want last write (blue)", c)
	}
	entries, _ := os.ReadDir(keyDir(root, "k"))
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want 1 (no temp files left)", len(entries))
	}
}

func TestStoreCompositeDecodeErrors(t *testing.T) {
	in := NewIngestor(t.TempDir(), testLogger())
	for _, bad := range []string{"garbage", "data:image/png;base64,!!!", "data:image/png;base64,aGVsbG8="} {
		if _, err := in.StoreComposite("k", bad); !errors.Is(err, ErrDecode) {
			t.Errorf("StoreComposite(%q) error = %v, want ErrDecode", bad, err)
		}
	}
}

func TestStoreUploadVerbatim(t *testing.T) {
	root := t.TempDir()
	in := NewIngestor(root, testLogger())
	raw := encodePNG(t, solidImage(1234, 77, red))

	path, err := in.StoreUpload("Design", "Certificate Blank.PNG", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("StoreUpload failed: %v", err)
	}
	if path != "/img/certificados/Design/Design.png" {
		t.Errorf("path = %q", path)
	}
	got, err := os.ReadFile(keyFile(root, "Design", ".png"))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !bytes.Equal(got, raw) {
		t.Error("upload was not stored verbatim")
	}
}

func TestStoreUploadRejectsUnsupportedExtension(t *testing.T) {
	root := t.TempDir()
	in := NewIngestor(root, testLogger())
	raw := encodePNG(t, solidImage(10, 10, red))
	for _, name := range []string{"noext", "sidecar.config", "notes.txt", "scan.pdf"} {
		_, err := in.StoreUpload("k", name, bytes.NewReader(raw))
		if !errors.Is(err, ErrValidation) {
			t.Errorf("StoreUpload(%q) error = %v, want ErrValidation", name, err)
		}
	}
	if _, err := os.Stat(keyDir(root, "k")); !os.IsNotExist(err) {
		t.Errorf("nothing should be written, stat err = %v", err)
	}
}

func TestStoreUploadRejectsNonImage(t *testing.T) {
	root := t.TempDir()
	in := NewIngestor(root, testLogger())
	_, err := in.StoreUpload("k", "fake.png", strings.NewReader("just some text"))
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("error = %v, want ErrDecode", err)
	}
	if _, err := os.Stat(keyFile(root, "k", ".png")); !os.IsNotExist(err) {
		t.Errorf("nothing should be written, stat err = %v", err)
	}
}

func TestStoreReplacesOtherExtensions(t *testing.T) {
	root := t.TempDir()
	in := NewIngestor(root, testLogger())
	if _, err := in.StoreComposite("Go", dataURL(t, solidImage(30, 20, red))); err != nil {
		t.Fatal(err)
	}
	var jpg bytes.Buffer
	if err := jpeg.Encode(&jpg, solidImage(40, 30, color.White), nil); err != nil {
		t.Fatal(err)
	}
	if _, err := in.StoreUpload("Go", "new.JPG", &jpg); err != nil {
		t.Fatalf("StoreUpload failed: %v", err)
	}
	if _, err := os.Stat(keyFile(root, "Go", ".png")); !os.IsNotExist(err) {
		t.Errorf("old .png template should be removed, stat err = %v", err)
	}
	if _, err := os.Stat(keyFile(root, "Go", ".jpg")); err != nil {
		t.Errorf("new .jpg template missing: %v", err)
	}
}
