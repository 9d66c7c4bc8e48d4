// Package validator runs struct tag validation for API payloads and reports failures
// with client-readable messages.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// domainRules are string checks registered as tags, with the message shown when one fails.
var domainRules = map[string]struct {
	check func(string) error
	hint  string
}{
	"password": {CheckPasswordStrength, "must be at least 8 characters with upper and lower case letters, a digit and one of @$!%*?&"},
	"vin":      {CheckVIN, "must be a 17 character VIN without I, O or Q"},
	"plate":    {CheckPlate, "must be up to 16 letters, digits, spaces or hyphens"},
}

// ValidationError is one failed rule on one field. Field uses the json name.
type ValidationError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Param string `json:"param"`
}

// Message renders the failure for API clients, e.g. "first name is required".
func (e ValidationError) Message() string {
	field := strings.ToLower(strings.ReplaceAll(e.Field, "_", " "))
	if field == "" {
		field = "field"
	}

	switch e.Tag {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, e.Param)
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, e.Param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(e.Param, " ", ", "))
	}
	if rule, ok := domainRules[e.Tag]; ok {
		return field + " " + rule.hint
	}
	if e.Param != "" {
		return fmt.Sprintf("%s failed validation: %s=%s", field, e.Tag, e.Param)
	}
	return fmt.Sprintf("%s failed validation: %s", field, e.Tag)
}

// ValidationErrors is every failure reported for one struct, in field order.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.Field + " failed on " + e.Tag
		if e.Param != "" {
			parts[i] += "=" + e.Param
		}
	}
	return strings.Join(parts, "; ")
}

// Messages joins the client-facing message of each failure.
func (v ValidationErrors) Messages() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Message()
	}
	return strings.Join(msgs, "; ")
}

// ValidateStruct applies the struct's validate tags. Rule failures are returned as
// ValidationErrors; anything else (such as a non-struct argument) is returned as is.
func ValidateStruct(s any) error {
	err := instance().Struct(s)

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := make(ValidationErrors, len(fieldErrs))
	for i, fe := range fieldErrs {
		out[i] = ValidationError{Field: fe.Field(), Tag: fe.Tag(), Param: fe.Param()}
	}
	return out
}

// RegisterValidation adds a custom tag to the shared validator.
func RegisterValidation(tag string, fn validator.Func) error {
	return instance().RegisterValidation(tag, fn)
}

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(jsonName)
		for tag, rule := range domainRules {
			check := rule.check
			_ = validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
				return check(fl.Field().String()) == nil
			})
		}
	})
	return validate
}

func jsonName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return fld.Name
	}
	return name
}
