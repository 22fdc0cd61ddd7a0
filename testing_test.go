package certstamp

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/labstack/gommon/log"
)

func quietLogger() *log.Logger {
	l := log.New("test")
	l.SetLevel(log.OFF)
	return l
}

func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func pngDataURL(t *testing.T, w, h int, c color.Color) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t, w, h, c))
}

// fakeStore implements RecordStore in memory.
type fakeStore struct {
	mu        sync.Mutex
	records   map[int64]Certificate
	nextID    int64
	issued    map[string]int
	saveErr   error
	issueErr  error
	listCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[int64]Certificate), issued: make(map[string]int)}
}

func (f *fakeStore) SaveTemplateRecord(c Certificate) (Certificate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return Certificate{}, f.saveErr
	}
	f.nextID++
	c.ID = f.nextID
	if c.Code == "" {
		c.Code = "code"
	}
	f.records[c.ID] = c
	return c, nil
}

func (f *fakeStore) GetTemplateByCourse(key string) (Certificate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var best Certificate
	for _, r := range f.records {
		if r.CourseKey == key && r.ID > best.ID {
			best = r
		}
	}
	if best.ID == 0 {
		return Certificate{}, ErrNotFound
	}
	return best, nil
}

func (f *fakeStore) GetCertificate(id int64) (Certificate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	if !ok {
		return Certificate{}, ErrNotFound
	}
	return r, nil
}

func (f *fakeStore) ListCertificates() ([]Certificate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	out := make([]Certificate, 0, len(f.records))
	for _, r := range f.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeStore) DeleteTemplateRecord(id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.records, id)
	return nil
}

func (f *fakeStore) RecordIssuance(key, student string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.issueErr != nil {
		return f.issueErr
	}
	f.issued[key]++
	return nil
}

func (f *fakeStore) IssuanceCounts() (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]int, len(f.issued))
	for k, v := range f.issued {
		out[k] = v
	}
	return out, nil
}

var errBoom = errors.New("boom")

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

func writeTestFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
