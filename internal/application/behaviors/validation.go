package behaviors

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"

	"github.com/andrescamacho/grpc-mediator-go/internal/application/mediator"
)

// ValidationBehavior checks `validate` struct tags on the request before it reaches the handler.
// Requests that are not structs (or pointers to structs) pass through unchecked.
type ValidationBehavior struct {
	validate *validator.Validate
}

// NewValidationBehavior creates the behavior; a nil validator gets a default instance
func NewValidationBehavior(validate *validator.Validate) *ValidationBehavior {
	if validate == nil {
		validate = validator.New(validator.WithRequiredStructEnabled())
	}
	return &ValidationBehavior{validate: validate}
}

// Name implements the mediator's behavior naming
func (b *ValidationBehavior) Name() string { return "validation" }

// Handle implements mediator.Behavior
func (b *ValidationBehavior) Handle(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
	if !isStruct(request) {
		return next(ctx, request)
	}

	if err := b.validate.StructCtx(ctx, request); err != nil {
		var validationErrs validator.ValidationErrors
		if !errors.As(err, &validationErrs) {
			return nil, fmt.Errorf("failed to validate request: %w", err)
		}

		verr := &ValidationError{RequestType: fmt.Sprintf("%T", request)}
		for _, fe := range validationErrs {
			verr.Fields = append(verr.Fields, FieldError{
				Field: fe.Field(),
				Rule:  fe.Tag(),
				Param: fe.Param(),
			})
		}
		return nil, verr
	}

	return next(ctx, request)
}

func isStruct(request mediator.Request) bool {
	v := reflect.ValueOf(request)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return false
		}
		v = v.Elem()
	}
	return v.Kind() == reflect.Struct
}
