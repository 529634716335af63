package form

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/goliatone/go-tutordash/pkg/model"
)

// validate runs the rules of one field in order: required, minLength,
// maxLength, pattern, custom. The first failing rule's message is returned.
// Rules after required only look at non-empty values.
func validate(field model.Field, value any, draft model.Values, pattern *regexp.Regexp) string {
	rules := field.Validation
	label := displayLabel(field)

	if model.IsEmpty(value) {
		if field.IsRequired() {
			return firstNonEmpty(rules.RequiredMessage, fmt.Sprintf("%s is required", label))
		}
		return ""
	}

	if text, ok := value.(string); ok {
		length := utf8.RuneCountInString(text)
		if rules.MinLength > 0 && length < rules.MinLength {
			return firstNonEmpty(rules.MinLengthMessage,
				fmt.Sprintf("%s must be at least %d characters", label, rules.MinLength))
		}
		if rules.MaxLength > 0 && length > rules.MaxLength {
			return firstNonEmpty(rules.MaxLengthMessage,
				fmt.Sprintf("%s must be at most %d characters", label, rules.MaxLength))
		}
		if pattern != nil && !pattern.MatchString(text) {
			return firstNonEmpty(rules.PatternMessage, fmt.Sprintf("%s format is invalid", label))
		}
	}

	if rules.Custom != nil {
		return rules.Custom(value, draft)
	}
	return ""
}

func displayLabel(field model.Field) string {
	if field.Label != "" {
		return field.Label
	}
	return field.Name
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
