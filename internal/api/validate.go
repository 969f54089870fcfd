package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate enforces the `validate` tags on request payloads before any
// network call, the same checks the backend runs server-side. Catching
// them here keeps bad submissions off the wire.
var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrValidation wraps field-level failures of an outgoing payload.
var ErrValidation = errors.New("données invalides")

func checkPayload(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(fields, ", "))
}
