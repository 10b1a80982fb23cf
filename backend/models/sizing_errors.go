// ABOUTME: Structured configuration errors raised by the capacity planner
// ABOUTME: Identifies the offending field, its value, and the violated constraint

package models

import (
	"errors"
	"fmt"
)

// ConfigErrorKind classifies a planner validation failure
type ConfigErrorKind string

const (
	KindInvalidInstanceProfile ConfigErrorKind = "InvalidInstanceProfile"
	KindInvalidOverride        ConfigErrorKind = "InvalidOverride"
	KindInconsistentBounds     ConfigErrorKind = "InconsistentBounds"
)

// Sentinels for errors.Is matching against a *ConfigError
var (
	ErrInvalidInstanceProfile = errors.New("invalid instance profile")
	ErrInvalidOverride        = errors.New("invalid override")
	ErrInconsistentBounds     = errors.New("inconsistent bounds")
)

// ConfigError reports a single configuration problem found before planning
type ConfigError struct {
	Kind       ConfigErrorKind `json:"kind"`
	Field      string          `json:"field"`
	Value      int             `json:"value"`
	Constraint string          `json:"constraint"`
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s=%d violates %s", e.Kind, e.Field, e.Value, e.Constraint)
}

// Is lets errors.Is match a ConfigError against its kind sentinel
func (e *ConfigError) Is(target error) bool {
	switch target {
	case ErrInvalidInstanceProfile:
		return e.Kind == KindInvalidInstanceProfile
	case ErrInvalidOverride:
		return e.Kind == KindInvalidOverride
	case ErrInconsistentBounds:
		return e.Kind == KindInconsistentBounds
	}
	return false
}

// AsConfigError unwraps err into a *ConfigError if it carries one
func AsConfigError(err error) (*ConfigError, bool) {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
