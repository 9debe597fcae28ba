package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse is the JSON body of every error the API returns.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError is an error with a stable machine-readable code. Handlers map
// codes to HTTP statuses; services never choose a status themselves.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func newAppError(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func NewNotFoundError(resource string, id interface{}) *AppError {
	return newAppError("NOT_FOUND", fmt.Sprintf("%s with ID %v not found", resource, id))
}

func NewValidationError(message string) *AppError {
	return newAppError("VALIDATION_ERROR", message)
}

func NewUnauthorizedError(message string) *AppError {
	return newAppError("UNAUTHORIZED", message)
}

func NewForbiddenError(message string) *AppError {
	return newAppError("FORBIDDEN", message)
}

func NewConflictError(message string) *AppError {
	return newAppError("CONFLICT", message)
}

func NewInternalError(err error) *AppError {
	return &AppError{Code: "INTERNAL_ERROR", Message: "Internal server error", Err: err}
}

// RespondWithError writes err as a standard error body with the given status.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return c.Status(status).JSON(ErrorResponse{Error: err.Error()})
	}

	resp := ErrorResponse{Error: appErr.Message, Code: appErr.Code}
	if appErr.Err != nil {
		resp.Details = appErr.Err.Error()
	}
	return c.Status(status).JSON(resp)
}
