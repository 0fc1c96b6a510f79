package config

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidConfig is matched by every ValidationErrors value.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// ValidationError is a single failed field.
type ValidationError struct {
	FieldPath string // dot-notation path using yaml names, e.g. "fastcoll.source_url"
	Message   string
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "validation failed with %d error(s):", len(ve))
	for i, e := range ve {
		fmt.Fprintf(&sb, "\n  %d. %s: %s", i+1, e.FieldPath, e.Message)
	}
	return sb.String()
}

func (ve ValidationErrors) Is(target error) bool {
	return target == ErrInvalidConfig
}

// IsInvalid reports whether err is (or wraps) a validation failure.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}

var validate *validator.Validate

func init() {
	validate = validator.New()

	if err := validate.RegisterValidation("pad_byte", validatePadByte); err != nil {
		panic(err)
	}
	if err := validate.RegisterValidation("escaped", validateEscaped); err != nil {
		panic(err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validatePadByte(fl validator.FieldLevel) bool {
	b, err := Unescape(fl.Field().String())
	return err == nil && len(b) == 1
}

func validateEscaped(fl validator.FieldLevel) bool {
	b, err := Unescape(fl.Field().String())
	return err == nil && len(b) > 0
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "field is required"
	case "min":
		return fmt.Sprintf("must be >= %s", e.Param())
	case "max":
		return fmt.Sprintf("must be <= %s", e.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	case "url":
		return "must be a valid URL"
	case "pad_byte":
		return `must decode to exactly one byte (e.g. " " or \x00)`
	case "escaped":
		return `must be a non-empty byte string; use \xNN for raw bytes`
	default:
		return fmt.Sprintf("validation failed: %s", e.Tag())
	}
}

// Validate checks every field and returns ValidationErrors when any fail.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(ValidationErrors, 0, len(verrs))
	for _, e := range verrs {
		// Namespace is "Config.fastcoll.source_url"; drop the root type.
		path := e.Namespace()
		if i := strings.IndexByte(path, '.'); i >= 0 {
			path = path[i+1:]
		}
		out = append(out, ValidationError{FieldPath: path, Message: validationMessage(e)})
	}
	return out
}

// Unescape decodes Go-style backslash escapes (\xNN, \n, \t, \\ and friends)
// into raw bytes. Unescaped text is kept as UTF-8.
func Unescape(s string) ([]byte, error) {
	out := make([]byte, 0, len(s))
	for len(s) > 0 {
		r, multibyte, tail, err := strconv.UnquoteChar(s, 0)
		if err != nil {
			return nil, fmt.Errorf("invalid escape in %q: %w", s, err)
		}
		if multibyte {
			out = utf8.AppendRune(out, r)
		} else {
			out = append(out, byte(r))
		}
		s = tail
	}
	return out, nil
}
