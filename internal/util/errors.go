package util

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	Err        error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Common error codes
const (
	ErrCodeInternal            = "INTERNAL_ERROR"
	ErrCodeBadRequest          = "BAD_REQUEST"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeConflict            = "CONFLICT"
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeInvalidCredentials  = "INVALID_CREDENTIALS"
	ErrCodeTokenExpired        = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid        = "TOKEN_INVALID"
	ErrCodeBotNotFound         = "BOT_NOT_FOUND"
	ErrCodeDuplicateActiveBot  = "DUPLICATE_ACTIVE_BOT"
	ErrCodeWorkspaceExists     = "WORKSPACE_EXISTS"
	ErrCodeSymbolNotFound      = "SYMBOL_NOT_FOUND"
	ErrCodeProviderUnavailable = "PROVIDER_UNAVAILABLE"
)

// NewAppError creates a new application error
func NewAppError(statusCode int, code, message string) *AppError {
	return &AppError{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
	}
}

// WrapError wraps an existing error
func WrapError(statusCode int, code, message string, err error) *AppError {
	return &AppError{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
		Err:        err,
	}
}

// Common error constructors

func ErrBadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, ErrCodeBadRequest, message)
}

func ErrUnauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

func ErrNotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, ErrCodeNotFound, message)
}

func ErrConflict(message string) *AppError {
	return NewAppError(http.StatusConflict, ErrCodeConflict, message)
}

func ErrValidation(message string) *AppError {
	return NewAppError(http.StatusBadRequest, ErrCodeValidation, message)
}

func ErrInternalServer(message string) *AppError {
	return NewAppError(http.StatusInternalServerError, ErrCodeInternal, message)
}

// Domain error constructors

func ErrBotNotFound(symbol string) *AppError {
	return NewAppError(http.StatusNotFound, ErrCodeBotNotFound,
		fmt.Sprintf("No bot found for %s", symbol))
}

func ErrDuplicateActiveBot(symbol string) *AppError {
	return NewAppError(http.StatusConflict, ErrCodeDuplicateActiveBot,
		fmt.Sprintf("A bot is already running for %s", symbol))
}

func ErrWorkspaceExists(id string) *AppError {
	return NewAppError(http.StatusConflict, ErrCodeWorkspaceExists,
		fmt.Sprintf("Workspace %s already exists", id))
}

func ErrSymbolNotFound(symbol string) *AppError {
	return NewAppError(http.StatusBadRequest, ErrCodeSymbolNotFound,
		fmt.Sprintf("Symbol %s is not tradable", symbol))
}

func ErrProviderUnavailable(err error) *AppError {
	return WrapError(http.StatusBadGateway, ErrCodeProviderUnavailable,
		"Market data provider unavailable", err)
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from error
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}
