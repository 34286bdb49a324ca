package api

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/adboard/adboard-api/internal/api/shared"
	"github.com/adboard/adboard-api/internal/domain"
)

// Common request/response structures.

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	Token  string `json:"token"`
	UserID int64  `json:"user_id"`
}

// CreateListingRequest defines the payload for creating an advertisement.
type CreateListingRequest struct {
	Title       string `json:"title"       validate:"required,min=3,max=200"`
	Description string `json:"description" validate:"required,min=10"`
}

// UpdateListingRequest defines the payload for partially updating an
// advertisement. Absent fields are left untouched. The creation timestamp
// is deliberately not accepted here; it is immutable after insert.
type UpdateListingRequest struct {
	Title       *string `json:"title"       validate:"omitempty,min=3,max=200"`
	Description *string `json:"description" validate:"omitempty,min=10"`
}

// IDResponse carries just the identifier of the affected advertisement.
type IDResponse struct {
	ID int64 `json:"id"`
}

// decodeValid decodes the request body into v and validates it, converting
// validator output into the enumerated field-error form.
func decodeValid(r *http.Request, v interface{}) error {
	if err := shared.DecodeJSON(r, v); err != nil {
		return err
	}
	if err := shared.Validate.Struct(v); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return &domain.ValidationError{Fields: validationFields(fieldErrs)}
		}
		return err
	}
	return nil
}
