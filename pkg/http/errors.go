package http

import (
	"fmt"
	"net/http"
)

// AppError is an error the handlers render as one entry of the response data.
type AppError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Field   string                 `json:"field,omitempty"`
	Params  map[string]interface{} `json:"params,omitempty"`
	Status  int                    `json:"-"`
	Err     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

func NewAppError(code, field, message string, status int) *AppError {
	return &AppError{Code: code, Field: field, Message: message, Status: status}
}

func (e *AppError) WithParam(key string, value interface{}) *AppError {
	if e.Params == nil {
		e.Params = map[string]interface{}{}
	}
	e.Params[key] = value
	return e
}

// WithError keeps err for logging; it is never serialized.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

func errorKind(code string, status int) func(string) *AppError {
	return func(message string) *AppError { return NewAppError(code, "", message, status) }
}

var (
	NotFoundError           = errorKind("ERR_NOT_FOUND", http.StatusNotFound)
	UnprocessableError      = errorKind("ERR_UNPROCESSABLE", http.StatusUnprocessableEntity)
	BadGatewayError         = errorKind("ERR_UPSTREAM", http.StatusBadGateway)
	ServiceUnavailableError = errorKind("ERR_UNAVAILABLE", http.StatusServiceUnavailable)
	InternalError           = errorKind("ERR_INTERNAL", http.StatusInternalServerError)
)
