package extract

import (
	"errors"
	"fmt"
	"net/http"

	weberrors "github.com/Roshick/go-autumn-validation/errors"
	"github.com/Roshick/go-autumn-validation/validation"
	"github.com/go-chi/render"
)

var (
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrPayloadTooLarge      = errors.New("payload too large")
	ErrEmptyBody            = errors.New("empty request body")
	ErrNullBody             = errors.New("null request body")
	ErrInvalidToken         = errors.New("invalid token")
)

// Error is returned by Extract when a request cannot be turned into a valid value.
type Error struct {
	Source     Source
	Reason     Reason
	Violations validation.Violations
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s extraction failed (%s): %v", e.Source, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) IsValidation() bool {
	return e.Reason == ReasonValidate
}

// AsError extracts an *Error from an error chain.
func AsError(err error) (*Error, bool) {
	var extractErr *Error
	if errors.As(err, &extractErr) {
		return extractErr, true
	}
	return nil, false
}

func newDecodeError(source Source, err error) *Error {
	reason := ReasonDeserialize
	switch {
	case errors.Is(err, ErrUnsupportedMediaType):
		reason = ReasonContentType
	case errors.Is(err, ErrPayloadTooLarge):
		reason = ReasonPayloadTooLarge
	}
	return &Error{Source: source, Reason: reason, Err: err}
}

func newValidateError(source Source, err error) *Error {
	if violations, ok := validation.AsViolations(err); ok {
		return &Error{Source: source, Reason: ReasonValidate, Violations: violations, Err: err}
	}
	return &Error{Source: source, Reason: ReasonInternal, Err: err}
}

// ErrorHandlerFn turns a failed extraction into the response sent to the client.
type ErrorHandlerFn func(err *Error, req *http.Request) render.Renderer

// DefaultErrorHandler renders violations as a JSON array of {field, code, message} and all other
// failures as a status/message object. Path failures map to 404, claims failures to 401 and 403.
func DefaultErrorHandler(err *Error, _ *http.Request) render.Renderer {
	if err.IsValidation() {
		return weberrors.NewViolationsResponse(validateStatus(err.Source), err.Violations)
	}
	switch err.Reason {
	case ReasonContentType:
		return weberrors.NewUnsupportedMediaTypeResponse(err.Err.Error())
	case ReasonPayloadTooLarge:
		return weberrors.NewPayloadTooLargeResponse(err.Err.Error())
	case ReasonInternal:
		return weberrors.NewInternalServerErrorResponse("")
	}

	switch err.Source {
	case SourcePath:
		return weberrors.NewNotFoundResponse(err.Error())
	case SourceClaims:
		return weberrors.NewUnauthorizedResponse(err.Error())
	}
	return weberrors.NewBadRequestResponse(err.Error())
}

func validateStatus(source Source) int {
	switch source {
	case SourcePath:
		return http.StatusNotFound
	case SourceClaims:
		return http.StatusForbidden
	}
	return http.StatusBadRequest
}
