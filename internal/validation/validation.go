// Package validation checks form input before anything is sent to the backend.
// Forms are normalized first (trimmed, lowercased...) and the normalized value
// is the one to submit. Each invalid field gets exactly one message: the one
// of its first failing rule.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/wolfeidau/roomzy/internal/models"
)

// PhonePrefix is shown in front of phone numbers but never stored.
const PhonePrefix = "+56"

var (
	phoneRe    = regexp.MustCompile(`^9[0-9]{8}$`)
	codeRe     = regexp.MustCompile(`^[A-Z0-9]{6}$`)
	nameRe     = regexp.MustCompile(`^[a-zA-ZáéíóúÁÉÍÓÚñÑ\s]+$`)
	phoneNoise = regexp.MustCompile(`[\s\-()]`)
)

// Errors maps a field name to its message.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	slices.Sort(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, e[f]))
	}
	return strings.Join(parts, "; ")
}

// FieldErrors returns the errors sorted by field, in the backend's shape.
func (e Errors) FieldErrors() []models.FieldError {
	out := make([]models.FieldError, 0, len(e))
	for f, msg := range e {
		out = append(out, models.FieldError{Field: f, Message: msg})
	}
	slices.SortFunc(out, func(a, b models.FieldError) int {
		return strings.Compare(a.Field, b.Field)
	})
	return out
}

// Form is implemented by every form in this package.
type Form interface {
	normalize()
	messages() fieldMessages
}

// fieldMessages maps field -> rule tag -> message.
type fieldMessages map[string]map[string]string

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name, the one the forms and the backend use
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	mustRegister(v, "phone", func(fl validator.FieldLevel) bool {
		return IsPhone(fl.Field().String())
	})
	mustRegister(v, "strongpassword", func(fl validator.FieldLevel) bool {
		return IsStrongPassword(fl.Field().String())
	})
	mustRegister(v, "code", func(fl validator.FieldLevel) bool {
		return codeRe.MatchString(fl.Field().String())
	})
	mustRegister(v, "personname", func(fl validator.FieldLevel) bool {
		return nameRe.MatchString(fl.Field().String())
	})
	mustRegister(v, "role", func(fl validator.FieldLevel) bool {
		return models.Role(fl.Field().String()).Valid()
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("failed to register %s validation: %v", tag, err))
	}
}

// Validate normalizes f in place and checks it. The error, if any, is Errors.
func Validate(f Form) error {
	f.normalize()

	err := validate.Struct(f)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate form: %w", err)
	}

	msgs := f.messages()
	out := Errors{}
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		msg := msgs[field][fe.Tag()]
		if msg == "" {
			msg = fmt.Sprintf("El campo %s no es válido", field)
		}
		out[field] = msg
	}

	return out
}

// IsStrongPassword reports whether p has a lowercase letter, an uppercase
// letter and a digit. Length is checked separately.
func IsStrongPassword(p string) bool {
	var lower, upper, digit bool
	for _, r := range p {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	return lower && upper && digit
}

// IsPhone reports whether phone is a normalized mobile number.
func IsPhone(phone string) bool {
	return phoneRe.MatchString(phone)
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeCode trims and uppercases a verification code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NormalizePhone strips the display prefix and any spaces, dashes or
// parentheses, leaving the stored form.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	phone = strings.TrimPrefix(phone, PhonePrefix)
	return phoneNoise.ReplaceAllString(phone, "")
}

// FormatPhone renders a stored phone number for display.
func FormatPhone(phone string) string {
	phone = NormalizePhone(phone)
	if phone == "" {
		return ""
	}
	return PhonePrefix + " " + phone
}
