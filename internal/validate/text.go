// Package validate holds the plain input checks shared by the reference
// table editor and the API layer.
package validate

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Rules describes the constraints applied to a single text field.
type Rules struct {
	Required  bool
	MinLength int
	MaxLength int
	FieldName string
}

// TextField validates value against the given rules. The value is trimmed
// before any length check. It returns ok=false with a human readable message
// when a rule is violated.
func TextField(value string, r Rules) (bool, string) {
	name := r.FieldName
	if name == "" {
		name = "value"
	}
	v := strings.TrimSpace(value)
	if v == "" {
		if r.Required {
			return false, fmt.Sprintf("%s is required", name)
		}
		return true, ""
	}
	n := utf8.RuneCountInString(v)
	if r.MinLength > 0 && n < r.MinLength {
		return false, fmt.Sprintf("%s must be at least %d characters", name, r.MinLength)
	}
	if r.MaxLength > 0 && n > r.MaxLength {
		return false, fmt.Sprintf("%s must be at most %d characters", name, r.MaxLength)
	}
	return true, ""
}
