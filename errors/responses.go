package errors

import (
	"encoding/json"
	"net/http"

	"github.com/Roshick/go-autumn-validation/validation"
	"github.com/go-chi/render"
)

// Base error response structure
type ErrorResponse struct {
	HTTPStatusCode int    `json:"-"`
	StatusText     string `json:"status"`
	Message        string `json:"message"`
}

func (e *ErrorResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func newErrorResponse(statusCode int, message string, fallback string) ErrorResponse {
	if message == "" {
		message = fallback
	}
	return ErrorResponse{
		HTTPStatusCode: statusCode,
		StatusText:     http.StatusText(statusCode),
		Message:        message,
	}
}

// BadRequestResponse represents a 400 Bad Request error
type BadRequestResponse struct {
	ErrorResponse
}

func NewBadRequestResponse(message string) *BadRequestResponse {
	return &BadRequestResponse{ErrorResponse: newErrorResponse(http.StatusBadRequest, message, "Invalid request")}
}

// UnauthorizedResponse represents a 401 Unauthorized error
type UnauthorizedResponse struct {
	ErrorResponse
}

func NewUnauthorizedResponse(message string) *UnauthorizedResponse {
	return &UnauthorizedResponse{ErrorResponse: newErrorResponse(http.StatusUnauthorized, message, "Authentication required")}
}

// ForbiddenResponse represents a 403 Forbidden error
type ForbiddenResponse struct {
	ErrorResponse
}

func NewForbiddenResponse(message string) *ForbiddenResponse {
	return &ForbiddenResponse{ErrorResponse: newErrorResponse(http.StatusForbidden, message, "Access denied")}
}

// NotFoundResponse represents a 404 Not Found error
type NotFoundResponse struct {
	ErrorResponse
}

func NewNotFoundResponse(message string) *NotFoundResponse {
	return &NotFoundResponse{ErrorResponse: newErrorResponse(http.StatusNotFound, message, "Resource not found")}
}

// PayloadTooLargeResponse represents a 413 Payload Too Large error
type PayloadTooLargeResponse struct {
	ErrorResponse
}

func NewPayloadTooLargeResponse(message string) *PayloadTooLargeResponse {
	return &PayloadTooLargeResponse{ErrorResponse: newErrorResponse(http.StatusRequestEntityTooLarge, message, "Payload too large")}
}

// UnsupportedMediaTypeResponse represents a 415 Unsupported Media Type error
type UnsupportedMediaTypeResponse struct {
	ErrorResponse
}

func NewUnsupportedMediaTypeResponse(message string) *UnsupportedMediaTypeResponse {
	return &UnsupportedMediaTypeResponse{ErrorResponse: newErrorResponse(http.StatusUnsupportedMediaType, message, "Unsupported media type")}
}

// InternalServerErrorResponse represents a 500 Internal Server Error
type InternalServerErrorResponse struct {
	ErrorResponse
}

func NewInternalServerErrorResponse(message string) *InternalServerErrorResponse {
	return &InternalServerErrorResponse{ErrorResponse: newErrorResponse(http.StatusInternalServerError, message, "An unexpected error occurred")}
}

// ViolationsResponse renders validation violations as a bare JSON array.
type ViolationsResponse struct {
	HTTPStatusCode int
	Violations     validation.Violations
}

func NewViolationsResponse(statusCode int, violations validation.Violations) *ViolationsResponse {
	if statusCode == 0 {
		statusCode = http.StatusBadRequest
	}
	return &ViolationsResponse{
		HTTPStatusCode: statusCode,
		Violations:     violations,
	}
}

func (v *ViolationsResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, v.HTTPStatusCode)
	return nil
}

func (v *ViolationsResponse) MarshalJSON() ([]byte, error) {
	if v.Violations == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]validation.Violation(v.Violations))
}

// Convenience functions for common use cases

func NewInvalidRequestBodyResponse() *BadRequestResponse {
	return NewBadRequestResponse("Invalid request body")
}

func NewAuthenticationRequiredResponse() *UnauthorizedResponse {
	return NewUnauthorizedResponse("Authentication required")
}

func NewAccessDeniedResponse() *ForbiddenResponse {
	return NewForbiddenResponse("Access denied")
}
