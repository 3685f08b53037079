package pkg

import "fmt"

// ErrorDetail is a single entry of the HTTP error envelope.
type ErrorDetail struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Field       string `json:"field,omitempty"`
}

// HTTPError is the body returned on every failed request.
//
// Error carries the machine-readable class; Errors always holds at least one
// entry so clients can iterate without special-casing.
type HTTPError struct {
	Error  string        `json:"error"`
	Errors []ErrorDetail `json:"errors"`
}

// AppError is the HTTP-facing error produced by the handler layer.
type AppError struct {
	Code       string
	Message    string
	Err        error
	HTTPStatus int
	Details    []ErrorDetail
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewDomainError(code, message string, err error, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, Err: err, HTTPStatus: httpStatus}
}

func NewDomainErrorSimple(code, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus}
}

// WithDetails attaches field-level entries rendered instead of the summary entry.
func (e *AppError) WithDetails(details []ErrorDetail) *AppError {
	e.Details = details
	return e
}

// ToHTTPError renders the envelope. The wrapped error is never exposed.
func (e *AppError) ToHTTPError() HTTPError {
	if len(e.Details) > 0 {
		out := make([]ErrorDetail, len(e.Details))
		copy(out, e.Details)
		return HTTPError{Error: e.Code, Errors: out}
	}
	return HTTPError{
		Error:  e.Code,
		Errors: []ErrorDetail{{Code: e.Code, Description: e.Message}},
	}
}
