package models

import "github.com/stockroom/backend/internal/apperror"

// APIResponse is the envelope for error and confirmation bodies.
type APIResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message,omitempty"`
	Error   string                `json:"error,omitempty"`
	Errors  []apperror.FieldError `json:"errors,omitempty"`
}

// NewErrorResponse creates an error response
func NewErrorResponse(message string) APIResponse {
	return APIResponse{
		Success: false,
		Error:   message,
	}
}

// NewValidationErrorResponse creates a validation error response
func NewValidationErrorResponse(errors []apperror.FieldError) APIResponse {
	return APIResponse{
		Success: false,
		Error:   "Validation failed",
		Errors:  errors,
	}
}

// NewMessageResponse creates a success response carrying only a message.
func NewMessageResponse(message string) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
	}
}

// MessageResponse is the body returned after deleting an item.
type MessageResponse struct {
	Message string `json:"message" example:"Item deleted successfully"`
}
