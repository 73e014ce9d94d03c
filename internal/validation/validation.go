// Package validation normalises registration input and enforces the field
// rules a record must satisfy before it is created.
//
// Rules are expressed as go-playground/validator struct tags on
// Registration, plus one custom tag (student_email) for the address shape.
// Each failure is reported as exactly one error kind so the CLI can show a
// single, specific message:
//
//	ErrMissingField  → a field is empty after normalisation
//	ErrWeakPassword  → password shorter than MinPasswordLength
//	ErrInvalidEmail  → email is not local@domain.tld
//	ErrDuplicateID   → the normalised ID is already registered
package validation

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MinPasswordLength is the shortest accepted password, in characters.
const MinPasswordLength = 6

// Error kinds reported by Registration.Validate.
var (
	ErrMissingField = errors.New("all fields are required")
	ErrWeakPassword = errors.New("password is too short")
	ErrInvalidEmail = errors.New("invalid email format")
	ErrDuplicateID  = errors.New("student id is already registered")
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// validate is safe for concurrent use and caches struct metadata, so one
// instance is shared by the whole process.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("student_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// Validator returns the shared validator instance, with the custom tags
// registered. Storage backends use it to check decoded records.
func Validator() *validator.Validate {
	return validate
}

// Registration is the normalised input of a registration request.
// Password is kept verbatim: case and whitespace are significant.
type Registration struct {
	Name     string `validate:"required"`
	ID       string `validate:"required"`
	Email    string `validate:"required,student_email"`
	Password string `validate:"required,min=6"`
}

// Normalize builds a Registration from raw input:
//
//	name  → trimmed, title case ("ada lovelace" → "Ada Lovelace")
//	id    → trimmed, upper case
//	email → trimmed, lower case
func Normalize(name, id, email, password string) Registration {
	return Registration{
		Name:     NormalizeName(name),
		ID:       NormalizeID(id),
		Email:    NormalizeEmail(email),
		Password: password,
	}
}

// NormalizeName trims and title-cases a student name. Every run of cased
// letters starts with a capital and continues in lower case, so any
// non-letter starts a new run: "o'neil" → "O'Neil", "ada2lovelace" →
// "Ada2Lovelace".
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	// cases.Caser keeps state between calls, so one is made per call.
	caser := cases.Title(language.Und)

	var b strings.Builder
	start := -1
	flush := func(end int) {
		if start >= 0 {
			b.WriteString(caser.String(name[start:end]))
			start = -1
		}
	}
	for i, r := range name {
		if isCased(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
		b.WriteRune(r)
	}
	flush(len(name))
	return b.String()
}

func isCased(r rune) bool {
	return unicode.IsUpper(r) || unicode.IsLower(r) || unicode.IsTitle(r)
}

// NormalizeID trims and upper-cases a student ID.
func NormalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate checks r against the field rules, then asks exists whether the
// ID is taken. When several rules fail the first kind in the order
// missing field, weak password, invalid email, duplicate ID is reported.
func (r Registration) Validate(exists func(id string) bool) error {
	if err := validate.Struct(r); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return oops.Code("VALIDATION_FAILED").Wrap(err)
		}
		return firstKind(fieldErrs)
	}

	if exists != nil && exists(r.ID) {
		return oops.Code("STUDENT_DUPLICATE_ID").
			With("id", r.ID).
			Wrapf(ErrDuplicateID, "student id %q", r.ID)
	}
	return nil
}

func firstKind(errs validator.ValidationErrors) error {
	has := func(tag string) (validator.FieldError, bool) {
		for _, e := range errs {
			if e.Tag() == tag {
				return e, true
			}
		}
		return nil, false
	}

	if e, ok := has("required"); ok {
		return oops.Code("STUDENT_MISSING_FIELD").
			With("field", e.Field()).
			Wrap(ErrMissingField)
	}
	if _, ok := has("min"); ok {
		return oops.Code("STUDENT_WEAK_PASSWORD").
			With("min_length", MinPasswordLength).
			Wrap(ErrWeakPassword)
	}
	if _, ok := has("student_email"); ok {
		return oops.Code("STUDENT_INVALID_EMAIL").Wrap(ErrInvalidEmail)
	}
	return oops.Code("VALIDATION_FAILED").Wrap(errs)
}
