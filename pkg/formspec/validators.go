package formspec

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/goliatone/go-tutordash/pkg/model"
)

// ErrUnknownValidator is returned when a field names a custom validator that
// is not registered.
var ErrUnknownValidator = errors.New("formspec: unknown custom validator")

// PhoneValidator is the name of the phone number format rule.
const PhoneValidator = "phone"

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ()-]{5,19}$`)

// Validators maps validation.custom names to implementations.
type Validators map[string]model.CustomValidator

// DefaultValidators returns the validators the built-in forms reference.
func DefaultValidators() Validators {
	return Validators{
		PhoneValidator: phoneNumber,
	}
}

// Attach resolves every field's CustomName into its Custom function. Fields
// that already carry a function are left alone.
func (v Validators) Attach(spec *model.FormSpec) error {
	var errs []error
	for idx := range spec.Fields {
		field := &spec.Fields[idx]
		name := strings.TrimSpace(field.Validation.CustomName)
		if name == "" || field.Validation.Custom != nil {
			continue
		}
		fn, ok := v[name]
		if !ok {
			errs = append(errs, fmt.Errorf("%w %q on field %q", ErrUnknownValidator, name, field.Name))
			continue
		}
		field.Validation.Custom = fn
	}
	return errors.Join(errs...)
}

func phoneNumber(value any, _ model.Values) string {
	if phonePattern.MatchString(strings.TrimSpace(model.StringValue(value))) {
		return ""
	}
	return "Enter a phone number with country code (e.g., +1234567890)"
}

// FormError is a form-level rejection. It carries its message under the
// non_field_errors key so the form engine shows it in the banner.
type FormError struct {
	Message string
}

func (e FormError) Error() string {
	return e.Message
}

func (e FormError) FieldErrors() map[string][]string {
	return map[string][]string{"non_field_errors": {e.Message}}
}

// RequireEmailOrPhone enforces the manual contact rule: at least one way to
// reach the contact. Field validation skips empty optional values, so the
// rule runs at submit time.
func RequireEmailOrPhone(values model.Values) error {
	if strings.TrimSpace(values.String("email")) != "" || strings.TrimSpace(values.String("phone_number")) != "" {
		return nil
	}
	return FormError{Message: "Either email address or phone number is required"}
}
