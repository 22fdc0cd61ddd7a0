package stamp

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
)

const configExt = ".config"

// PlacementConfig describes where and how the student name is drawn. Values
// arrive from the browser editor as numbers or strings; Read resolves them
// once, so Top, Left and FontSize always hold their string form ("50px",
// "12.5") and Width/Height are plain numbers.
type PlacementConfig struct {
	Top        string  `json:"top"`
	Left       string  `json:"left"`
	Width      int     `json:"width"`
	Height     float64 `json:"height"`
	FontFamily string  `json:"fontFamily"`
	FontSize   string  `json:"fontSize"`
	Color      string  `json:"color"`
	FontWeight string  `json:"fontWeight"`
	TextAlign  string  `json:"textAlign"`
}

// DefaultPlacementConfig returns the values used when no sidecar exists or a
// field is missing from it.
func DefaultPlacementConfig() PlacementConfig {
	return PlacementConfig{
		Top:        "0px",
		Left:       "0px",
		FontFamily: "Arial",
		FontSize:   "16px",
		Color:      "black",
		FontWeight: "regular",
		TextAlign:  "center",
	}
}

// Bold reports whether the config asks for the bold face.
func (c PlacementConfig) Bold() bool {
	return strings.EqualFold(strings.TrimSpace(c.FontWeight), "bold")
}

// flexString accepts a JSON number or string. Numbers keep their literal
// text, so 12.50 and 1e2 come back exactly as written.
type flexString struct {
	value string
	set   bool
}

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil
	}
	switch {
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		f.value, f.set = s, true
	case b[0] == '-' || (b[0] >= '0' && b[0] <= '9'):
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		f.value, f.set = n.String(), true
	}
	// null, booleans, objects and arrays leave the field at its default.
	return nil
}

type rawPlacement struct {
	Top        flexString `json:"top"`
	Left       flexString `json:"left"`
	Width      flexString `json:"width"`
	Height     flexString `json:"height"`
	FontFamily flexString `json:"fontFamily"`
	FontSize   flexString `json:"fontSize"`
	Color      flexString `json:"color"`
	FontWeight flexString `json:"fontWeight"`
	TextAlign  flexString `json:"textAlign"`
}

func (r rawPlacement) resolve() PlacementConfig {
	cfg := DefaultPlacementConfig()
	setString := func(dst *string, f flexString) {
		if f.set {
			*dst = f.value
		}
	}
	setString(&cfg.Top, r.Top)
	setString(&cfg.Left, r.Left)
	setString(&cfg.FontFamily, r.FontFamily)
	setString(&cfg.FontSize, r.FontSize)
	setString(&cfg.Color, r.Color)
	setString(&cfg.FontWeight, r.FontWeight)
	setString(&cfg.TextAlign, r.TextAlign)

	// width and height are plain numbers in the editor output, never "Npx".
	if r.Width.set {
		if v, err := strconv.ParseFloat(strings.TrimSpace(r.Width.value), 64); err == nil {
			cfg.Width = int(v)
		}
	}
	if r.Height.set {
		if v, err := strconv.ParseFloat(strings.TrimSpace(r.Height.value), 64); err == nil {
			cfg.Height = v
		}
	}
	return cfg
}

// ParsePlacementConfig decodes a sidecar document. Keys match
// case-insensitively and unknown keys are ignored.
func ParsePlacementConfig(data []byte) (PlacementConfig, error) {
	var raw rawPlacement
	if err := json.Unmarshal(data, &raw); err != nil {
		return PlacementConfig{}, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	return raw.resolve(), nil
}

// ConfigStore keeps the placement sidecar next to each template.
type ConfigStore struct {
	root string
}

// NewConfigStore returns a store rooted at the content root.
func NewConfigStore(root string) *ConfigStore {
	return &ConfigStore{root: root}
}

// Path returns the sidecar location for key.
func (s *ConfigStore) Path(key string) string {
	return keyFile(s.root, key, configExt)
}

// Write stores text verbatim, replacing any previous sidecar.
func (s *ConfigStore) Write(key, text string) error {
	if err := os.MkdirAll(keyDir(s.root, key), 0o755); err != nil {
		return ioError("create dir", keyDir(s.root, key), err)
	}
	p := s.Path(key)
	if err := os.WriteFile(p, []byte(text), 0o644); err != nil {
		return ioError("write", p, err)
	}
	return nil
}

// Read loads the sidecar for key. A missing file yields the defaults.
func (s *ConfigStore) Read(key string) (PlacementConfig, error) {
	p := s.Path(key)
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultPlacementConfig(), nil
	}
	if err != nil {
		return PlacementConfig{}, ioError("read", p, err)
	}
	return ParsePlacementConfig(data)
}
