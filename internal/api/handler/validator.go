package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/workdesk/accounts-api/internal/core/domain"
)

// requestValidator adapts go-playground/validator to echo.Validator. Besides
// the built-in tags it understands:
//   - role:      any domain.Role
//   - status:    any domain.Status
//   - self_role: a role an account may pick for itself (client, collaborator)
type requestValidator struct {
	v *validator.Validate
}

// NewValidator returns a validator ready to be assigned to echo.Echo.Validator.
func NewValidator() *requestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name so messages match the payload.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return domain.Role(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("status", func(fl validator.FieldLevel) bool {
		return domain.Status(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("self_role", func(fl validator.FieldLevel) bool {
		switch domain.Role(fl.Field().String()) {
		case domain.RoleClient, domain.RoleCollaborator:
			return true
		}
		return false
	})

	return &requestValidator{v: v}
}

// Validate satisfies the echo.Validator interface.
func (rv *requestValidator) Validate(i any) error {
	err := rv.v.Struct(i)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fieldError(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "role":
		return field + " must be one of: client collaborator admin"
	case "self_role":
		return field + " must be one of: client collaborator"
	case "status":
		return field + " must be one of: pending active inactive rejected"
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
