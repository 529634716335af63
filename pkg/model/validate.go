package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrFieldNameRequired is returned for descriptors without a name.
	ErrFieldNameRequired = errors.New("model: field name is required")
	// ErrDuplicateField is returned when two descriptors share a name.
	ErrDuplicateField = errors.New("model: duplicate field name")
	// ErrOptionsRequired is returned when a choice field has no options.
	ErrOptionsRequired = errors.New("model: options are required")
	// ErrInvalidPattern is returned when a validation pattern does not compile.
	ErrInvalidPattern = errors.New("model: invalid validation pattern")
)

// ValidateFields checks the descriptor invariants: names are present and
// unique, choice fields carry options and patterns compile. All violations are
// reported together.
func ValidateFields(fields []Field) error {
	var errs []error
	seen := make(map[string]struct{}, len(fields))

	for idx, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			errs = append(errs, fmt.Errorf("%w (index %d)", ErrFieldNameRequired, idx))
			continue
		}
		if _, dup := seen[name]; dup {
			errs = append(errs, fmt.Errorf("%w: %q", ErrDuplicateField, name))
		}
		seen[name] = struct{}{}

		if field.Type.NeedsOptions() && len(field.Options) == 0 {
			errs = append(errs, fmt.Errorf("%w: field %q of type %s", ErrOptionsRequired, name, field.Type))
		}
		if field.Validation.Pattern != "" {
			if _, err := regexp.Compile(field.Validation.Pattern); err != nil {
				errs = append(errs, fmt.Errorf("%w: field %q: %v", ErrInvalidPattern, name, err))
			}
		}
	}

	return errors.Join(errs...)
}

// CompilePatterns returns the compiled validation patterns keyed by field
// name. Call ValidateFields first; invalid patterns are skipped here.
func CompilePatterns(fields []Field) map[string]*regexp.Regexp {
	out := make(map[string]*regexp.Regexp)
	for _, field := range fields {
		if field.Validation.Pattern == "" {
			continue
		}
		re, err := regexp.Compile(field.Validation.Pattern)
		if err != nil {
			continue
		}
		out[field.Name] = re
	}
	return out
}
