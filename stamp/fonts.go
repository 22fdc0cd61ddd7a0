package stamp

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/labstack/gommon/log"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontResolver finds a face for a family name and weight. Families are
// looked up as TTF/OTF files in dir; anything missing falls back to the
// embedded Go fonts.
type FontResolver struct {
	dir string
	log *log.Logger

	mu    sync.Mutex
	fonts map[string]*opentype.Font
}

// NewFontResolver returns a resolver reading font files from dir. An empty
// dir uses the embedded fonts only.
func NewFontResolver(dir string, logger *log.Logger) *FontResolver {
	return &FontResolver{dir: dir, log: logger, fonts: make(map[string]*opentype.Font)}
}

// Font returns the parsed font for family, cached after the first lookup.
func (r *FontResolver) Font(family string, bold bool) (*opentype.Font, error) {
	cacheKey := strings.ToLower(strings.TrimSpace(family))
	if bold {
		cacheKey += "|bold"
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.fonts[cacheKey]; ok {
		return f, nil
	}

	var f *opentype.Font
	if path, data := r.find(family, bold); data != nil {
		parsed, err := opentype.Parse(data)
		if err != nil {
			r.log.Warnf("font %s: %v, using embedded face", path, err)
		} else {
			f = parsed
		}
	}
	if f == nil {
		fallback := goregular.TTF
		if bold {
			fallback = gobold.TTF
		}
		parsed, err := opentype.Parse(fallback)
		if err != nil {
			return nil, fmt.Errorf("parse embedded font: %w", err)
		}
		f = parsed
	}
	r.fonts[cacheKey] = f
	return f, nil
}

// Face returns a face of the given pixel size.
func (r *FontResolver) Face(family string, size float64, bold bool) (font.Face, error) {
	f, err := r.Font(family, bold)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face: %w", err)
	}
	return face, nil
}

func (r *FontResolver) find(family string, bold bool) (string, []byte) {
	name := SanitizeKey(strings.TrimSpace(family))
	if r.dir == "" || !validKey(name) {
		return "", nil
	}
	stems := []string{name, name + "-Regular"}
	if bold {
		stems = []string{name + "-Bold", name + " Bold", name + "bd", name + "-bold"}
	}
	for _, stem := range stems {
		for _, ext := range []string{".ttf", ".otf"} {
			p := filepath.Join(r.dir, stem+ext)
			if data, err := os.ReadFile(p); err == nil {
				return p, data
			}
		}
	}
	return "", nil
}
