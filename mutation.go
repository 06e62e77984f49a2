package pagequery

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// MutationResponse is the envelope returned by create and update operations.
type MutationResponse[T any] struct {
	Success bool     `json:"success"`
	Record  *T       `json:"record,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

func MutationSucceeded[T any](record *T) *MutationResponse[T] {
	return &MutationResponse[T]{Success: true, Record: record}
}

func MutationFailed[T any](errs ...string) *MutationResponse[T] {
	return &MutationResponse[T]{Success: false, Errors: errs}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// ValidateInput checks a mutation input against its `validate` tags.
// Field problems are returned as messages; any other failure is returned as an error.
func ValidateInput(input any) ([]string, error) {
	err := validate.Struct(input)
	if err == nil {
		return nil, nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil, errors.Wrap(err, "validate input")
	}
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, fieldMessage(fe))
	}
	return messages, nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag())
	}
}

// MutationFailure reports an expected mutation outcome as a failed response: an invalid
// input, a missing record or a unique constraint violation. Anything else is returned as
// a StorageError.
func MutationFailure[T any](err error) (*MutationResponse[T], error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return MutationFailed[T](verr.Error()), nil
	case errors.Is(err, ErrNotFound):
		return MutationFailed[T]("record not found"), nil
	case errors.Is(err, ErrDuplicate):
		return MutationFailed[T]("record already exists"), nil
	default:
		return nil, NewStorageError(err)
	}
}
