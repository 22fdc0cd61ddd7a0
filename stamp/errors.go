package stamp

import (
	"errors"
	"fmt"
)

// Error kinds returned by the engine. Callers match them with errors.Is;
// the wrapped message carries the detail for the user.
var (
	ErrValidation       = errors.New("invalid input")
	ErrDecode           = errors.New("decode failed")
	ErrConfigParse      = errors.New("placement config is not valid JSON")
	ErrTemplateNotFound = errors.New("certificate template not found")
	ErrIO               = errors.New("storage error")
)

func ioError(op, path string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrIO, op, path, err)
}
