package validator

import (
	"fmt"
	"strings"

	validators "github.com/go-playground/validator/v10"
)

// Validator interface
type Validator interface {
	ValidateStruct(inf interface{}) error
}

type validator struct {
	validator *validators.Validate
}

// New Validator func
func New() Validator {
	v := validators.New()
	return &validator{
		validator: v,
	}
}

// ValidateStruct func
func (v *validator) ValidateStruct(inf interface{}) error {
	return v.validator.Struct(inf)
}

// Describe flattens validation errors into short "field: rule" messages.
// Errors that are not validation errors are returned as a single message.
func Describe(err error) []string {
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validators.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg := fmt.Sprintf("%s: failed '%s'", lowerFirst(fe.Field()), fe.Tag())
		if fe.Param() != "" {
			msg += " " + fe.Param()
		}
		messages = append(messages, msg)
	}
	return messages
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
