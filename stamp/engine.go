// Package stamp is the certificate rendering engine: it normalizes and stores
// course templates with their name-placement sidecar, and stamps student
// names onto them.
//
// Templates live on disk under <root>/img/certificados/<key>/, where key is
// the course name passed through SanitizeKey. Create and delete calls for a
// key are serialized against each other and against stamps of that key;
// distinct keys never block one another.
package stamp

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/labstack/gommon/log"
)

// Source is the image a template is created from. A non-empty Composite
// (a data URL of the flattened editor preview) wins over File.
type Source struct {
	Composite string
	File      io.Reader
	Filename  string
}

// Engine is the entry point used by the web layer and the CLI.
type Engine struct {
	root        string
	fontDir     string
	calibration Offset
	log         *log.Logger

	configs  *ConfigStore
	ingest   *Ingestor
	renderer *Renderer
	locks    *keyLocks
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used by the engine.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// WithFontDir sets the directory searched for font families.
func WithFontDir(dir string) Option {
	return func(e *Engine) {
		e.fontDir = dir
	}
}

// WithCalibration overrides EditorCalibration.
func WithCalibration(o Offset) Option {
	return func(e *Engine) {
		e.calibration = o
	}
}

// New returns an Engine storing templates below the content root.
func New(root string, opts ...Option) *Engine {
	e := &Engine{
		root:        root,
		calibration: EditorCalibration,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = log.New("stamp")
	}
	e.configs = NewConfigStore(root)
	e.ingest = NewIngestor(root, e.log)
	e.renderer = NewRenderer(root, e.configs, NewFontResolver(e.fontDir, e.log), e.calibration, e.log)
	e.locks = newKeyLocks()
	return e
}

// Key sanitizes a course name. It is idempotent, so keys may be passed
// wherever a course name is expected.
func (e *Engine) Key(course string) (string, error) {
	key := SanitizeKey(course)
	if !validKey(key) {
		return "", fmt.Errorf("%w: course name %q has no usable characters", ErrValidation, course)
	}
	return key, nil
}

// CreateTemplate stores the template for course and, when placement is not
// blank, its sidecar config. It returns the public path of the image.
// Existing files for the same key are replaced.
func (e *Engine) CreateTemplate(course string, src Source, placement string) (string, error) {
	key, err := e.Key(course)
	if err != nil {
		return "", err
	}
	if src.Composite == "" && src.File == nil {
		return "", fmt.Errorf("%w: no template image supplied", ErrValidation)
	}
	hasConfig := strings.TrimSpace(placement) != ""
	if hasConfig {
		if _, err := ParsePlacementConfig([]byte(placement)); err != nil {
			return "", err
		}
	}

	unlock := e.locks.Lock(key)
	defer unlock()

	var stored string
	if src.Composite != "" {
		stored, err = e.ingest.StoreComposite(key, src.Composite)
	} else {
		stored, err = e.ingest.StoreUpload(key, src.Filename, src.File)
	}
	if err != nil {
		return "", err
	}
	if hasConfig {
		if err := e.configs.Write(key, placement); err != nil {
			return "", err
		}
	}
	return stored, nil
}

// StampName renders student onto the template of course and returns PNG
// bytes. It fails with ErrTemplateNotFound when no template is stored.
func (e *Engine) StampName(course, student string) ([]byte, error) {
	key, err := e.Key(course)
	if err != nil {
		return nil, err
	}
	unlock := e.locks.RLock(key)
	defer unlock()
	return e.renderer.Stamp(key, student)
}

// DeleteTemplate removes the template directory of course. Deleting a
// course without a template is not an error.
func (e *Engine) DeleteTemplate(course string) error {
	key, err := e.Key(course)
	if err != nil {
		return err
	}
	unlock := e.locks.Lock(key)
	defer unlock()

	dir := keyDir(e.root, key)
	if err := os.RemoveAll(dir); err != nil {
		return ioError("remove", dir, err)
	}
	e.log.Infof("template %q deleted", key)
	return nil
}

// TemplateFile returns the on-disk template image for course, if any.
func (e *Engine) TemplateFile(course string) (string, bool) {
	key, err := e.Key(course)
	if err != nil {
		return "", false
	}
	return e.renderer.TemplateFile(key)
}

// Placement returns the resolved placement config for course.
func (e *Engine) Placement(course string) (PlacementConfig, error) {
	key, err := e.Key(course)
	if err != nil {
		return PlacementConfig{}, err
	}
	unlock := e.locks.RLock(key)
	defer unlock()
	return e.configs.Read(key)
}
