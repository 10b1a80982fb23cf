// ABOUTME: Input validation functions for API parameters
// ABOUTME: Rejects malformed instance type names before any provider lookup

package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const maxInstanceTypeNameLen = 128

// ErrInvalidInstanceTypeName marks names rejected before any lookup
var ErrInvalidInstanceTypeName = errors.New("invalid instance type name")

// instanceTypePattern matches EC2 type names (m5.large) and vSphere template
// names or inventory paths (templates/pypi-2x4)
var instanceTypePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._/-]*$`)

// sanitizeForLog removes control characters from strings to prevent log injection
// when including user input in error messages
func sanitizeForLog(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1 // Remove control characters
		}
		return r
	}, s)
}

// ValidateInstanceTypeName validates that an instance type name has a safe format.
func ValidateInstanceTypeName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: cannot be empty", ErrInvalidInstanceTypeName)
	}
	if len(name) > maxInstanceTypeNameLen {
		return fmt.Errorf("%w: exceeds %d characters", ErrInvalidInstanceTypeName, maxInstanceTypeNameLen)
	}
	if strings.Contains(name, "..") || !instanceTypePattern.MatchString(name) {
		return fmt.Errorf("%w: %s", ErrInvalidInstanceTypeName, sanitizeForLog(name))
	}
	return nil
}
