package faster

import (
	"fmt"

	"github.com/pkg/errors"
)

// ConfigError reports an unknown detector name, invalid format string, or
// missing required configuration variable (§7).
type ConfigError struct {
	Key string
	Msg string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Key, e.Msg)
}

// DatasetError reports a missing image, a warp file that ends before
// expected, or an image of the wrong dimensions (§7).
type DatasetError struct {
	Path string
	Msg  string
}

func (e *DatasetError) Error() string {
	return fmt.Sprintf("dataset: %s: %s", e.Path, e.Msg)
}

// ParseError reports a malformed tree or feature descriptor line (§7).
type ParseError struct {
	Source string
	Line   int
	Msg    string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Source, e.Line, e.Msg)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Source, e.Msg)
}

// wrapf is a thin alias over pkg/errors so every package in this module
// wraps I/O and parse failures the same way the teacher's process.go does.
func wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}
