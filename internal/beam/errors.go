package beam

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration indicates malformed or incomplete beam input.
	ErrConfiguration = errors.New("beam: invalid configuration")

	// ErrInsufficientData indicates a fit was requested on fewer than two
	// particles.
	ErrInsufficientData = errors.New("beam: at least two particles required")
)

// ConfigError wraps ErrConfiguration with the offending style and field.
type ConfigError struct {
	Style  string
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	switch {
	case e.Style != "" && e.Field != "":
		return fmt.Sprintf("beam: style %q, field %q: %s", e.Style, e.Field, e.Reason)
	case e.Field != "":
		return fmt.Sprintf("beam: field %q: %s", e.Field, e.Reason)
	case e.Style != "":
		return fmt.Sprintf("beam: style %q: %s", e.Style, e.Reason)
	default:
		return "beam: " + e.Reason
	}
}

func (e *ConfigError) Unwrap() error {
	return ErrConfiguration
}
