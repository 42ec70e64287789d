// Package validation wraps a shared go-playground validator and turns its
// failures into per-field messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/and161185/foodgram/internal/errs"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once

	usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)
	slugRe     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	// the tags table accepts #RRGGBB or #RGB only, no alpha channel
	colorRe    = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)
)

// ReservedUsername cannot be registered because /api/users/me/ shadows it.
const ReservedUsername = "me"

// FieldErrors maps a JSON field name to its failed rules.
type FieldErrors map[string][]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(fe[k], ", "))
	}
	return strings.Join(parts, "; ")
}

// Unwrap lets errors.Is(err, errs.ErrValidation) match.
func (fe FieldErrors) Unwrap() error { return errs.ErrValidation }

// GetValidator returns the process-wide validator with the custom rules registered.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(fieldName)
		_ = validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return usernameRe.MatchString(s) && s != ReservedUsername
		})
		_ = validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return slugRe.MatchString(fl.Field().String())
		})
		_ = validate.RegisterValidation("color", func(fl validator.FieldLevel) bool {
			return colorRe.MatchString(fl.Field().String())
		})
	})
	return validate
}

// fieldName reports the json name of a field, or its snake_case form when untagged.
func fieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return snake(f.Name)
	}
	return name
}

func snake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Struct validates s and returns FieldErrors on failure.
func Struct(s any) error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := FieldErrors{}
	for _, fe := range verrs {
		out[fe.Field()] = append(out[fe.Field()], translate(fe))
	}
	return out
}

var messages = map[string]string{
	"required": "this field is required",
	"email":    "enter a valid email address",
	"username": "only letters, digits and @/./+/-/_ are allowed; \"me\" is reserved",
	"slug":     "only letters, digits, hyphens and underscores are allowed",
	"color":    "enter a hex color such as #49B64E",
}

var paramMessages = map[string]string{
	"max": "ensure this field has no more than %s characters",
	"min": "ensure this field has at least %s characters",
	"gte": "ensure this value is greater than or equal to %s",
	"lte": "ensure this value is less than or equal to %s",
}

func translate(fe validator.FieldError) string {
	if m, ok := messages[fe.Tag()]; ok {
		return m
	}
	if m, ok := paramMessages[fe.Tag()]; ok {
		return fmt.Sprintf(m, fe.Param())
	}
	return fmt.Sprintf("failed on the %q rule", fe.Tag())
}
