package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyDocument is returned when the configuration file has no content.
	ErrEmptyDocument = errors.New("empty configuration document")
	// ErrInvalidEntry wraps schema validation failures for a single element.
	ErrInvalidEntry = errors.New("invalid configuration entry")
	// ErrUnknownFormat is returned for a content format other than text, image or html.
	ErrUnknownFormat = errors.New("unknown content format")
	// ErrDuplicatePackage is returned when two overrides name the same package.
	ErrDuplicatePackage = errors.New("duplicate override package")
)

// ConfigError reports a configuration document that could not be used at all.
// It never stops the SDK: the accompanying catalog is empty and content
// resolution falls back to the built-in ad.
type ConfigError struct {
	Op  string
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("pattern config %s: %v", e.Op, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }
