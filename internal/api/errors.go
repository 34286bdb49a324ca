package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/adboard/adboard-api/internal/api/shared"
	"github.com/adboard/adboard-api/internal/domain"
	"github.com/adboard/adboard-api/internal/platform/logger"
	"github.com/adboard/adboard-api/internal/service/auth"
	"github.com/adboard/adboard-api/internal/store"
)

// Error is a request-scoped failure carrying the status and message that
// go on the wire verbatim. Handlers raise it for failures whose wording is
// endpoint-specific (e.g. ownership refusals); everything else is
// classified by sentinel in translateError.
type Error struct {
	Status  int
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates an Error with the given status and client-safe message.
func NewError(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

// translateError is the single point where request failures are mapped to
// the wire contract. Handlers never format error bodies themselves; they
// return errors and the pipeline funnels them through here.
func translateError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	// Structured request errors carry their status and message verbatim.
	var apiErr *Error
	if errors.As(err, &apiErr) {
		shared.RespondWithError(w, r, apiErr.Status, apiErr.Message)
		return
	}

	// Validation failures enumerate every violated field.
	var valErr *domain.ValidationError
	if errors.As(err, &valErr) {
		shared.RespondWithFieldErrors(w, r, http.StatusBadRequest, "Validation failed", valErr.Fields)
		return
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		shared.RespondWithFieldErrors(w, r, http.StatusBadRequest, "Validation failed", validationFields(fieldErrs))
		return
	}

	// Malformed request bodies all collapse into one fixed message.
	if isJSONDecodeError(err) {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid JSON")
		return
	}

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		log.Debug("request failed authentication: token expired")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Token expired")

	case errors.Is(err, auth.ErrInvalidToken):
		log.Debug("request failed authentication: invalid token")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")

	case errors.Is(err, auth.ErrAuthRequired), errors.Is(err, domain.ErrUnauthorized):
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization required")

	case errors.Is(err, store.ErrEmailExists):
		shared.RespondWithError(w, r, http.StatusConflict, "User already exists")

	case store.IsDuplicateError(err), errors.Is(err, store.ErrInvalidEntity):
		// Integrity violations surface at statement or commit time; both
		// map to Conflict.
		log.Warn("integrity violation", "error", err.Error())
		shared.RespondWithError(w, r, http.StatusConflict, "database error")

	case errors.Is(err, store.ErrListingNotFound):
		shared.RespondWithError(w, r, http.StatusNotFound, "advertisement not found")

	case errors.Is(err, store.ErrUserNotFound):
		shared.RespondWithError(w, r, http.StatusNotFound, "user not found")

	case store.IsNotFoundError(err):
		shared.RespondWithError(w, r, http.StatusNotFound, "not found")

	default:
		log.Error("unhandled request error", "error", err.Error())
		shared.RespondWithError(w, r, http.StatusInternalServerError, err.Error())
	}
}

// isJSONDecodeError reports whether err came from decoding a malformed
// request body.
func isJSONDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) ||
		errors.As(err, &typeErr) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}

// validationFields converts validator errors into the wire-level field
// error list, keeping every violation rather than just the first.
func validationFields(errs validator.ValidationErrors) []domain.FieldError {
	fields := make([]domain.FieldError, 0, len(errs))
	for _, fe := range errs {
		fields = append(fields, domain.FieldError{
			Field:   fe.Field(),
			Message: validationMessage(fe),
		})
	}
	return fields
}

// validationMessage maps a validator tag to a user-facing message.
func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters long"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters long"
	default:
		return fe.Field() + " is invalid"
	}
}
