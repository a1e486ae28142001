package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse is the failure half of the API envelope. Clients branch on
// Success alone, so it mirrors the success shape with Data pinned to null.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Error   string `json:"error"`
}

// AppError is the single error kind used across the API: a human-readable
// message plus the HTTP status it should be served with.
type AppError struct {
	Status  int
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

// Predefined error constructors
func NewNotFoundError(resource string, id any) *AppError {
	return &AppError{
		Status:  fiber.StatusNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Status:  fiber.StatusBadRequest,
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Status:  fiber.StatusUnauthorized,
		Message: message,
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Status:  fiber.StatusForbidden,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Status:  fiber.StatusInternalServerError,
		Message: "Internal server error",
		Err:     err,
	}
}

// StatusOf returns the HTTP status carried by err, or 500 for plain errors.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return fiber.StatusInternalServerError
}

// RespondWithError writes the standardized failure envelope. The status comes
// from the AppError; bare errors are masked as a generic 500 so internal
// details never leak to clients.
func RespondWithError(c *fiber.Ctx, err error) error {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = NewInternalError(err)
	}

	return c.Status(appErr.Status).JSON(ErrorResponse{
		Success: false,
		Data:    nil,
		Error:   appErr.Message,
	})
}
