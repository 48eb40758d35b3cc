// Package http provides HTTP server and handler implementations.
//
// This file implements the Builder Pattern for constructing JSON responses
// and maps domain errors to status codes.

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"financas/internal/core"
)

// ResponseBuilder provides a fluent API for building JSON responses.
type ResponseBuilder struct {
	statusCode int
	body       []byte
	headers    map[string]string
	err        error
}

// NewResponse creates a new response builder with default 200 status.
func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// JSON sets v, encoded as JSON, as the response body.
func (b *ResponseBuilder) JSON(v any) *ResponseBuilder {
	body, err := json.Marshal(v)
	if err != nil {
		b.err = err
		return b
	}
	b.headers["Content-Type"] = "application/json; charset=utf-8"
	b.body = body
	return b
}

// Body sets a raw response body with its content type.
func (b *ResponseBuilder) Body(contentType string, content []byte) *ResponseBuilder {
	b.headers["Content-Type"] = contentType
	b.body = content
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	if b.err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// ErrorResponse creates a JSON error response.
func ErrorResponse(statusCode int, message string) *ResponseBuilder {
	return NewResponse().Status(statusCode).JSON(errorBody{Error: message})
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// MethodNotAllowedError creates a 405 Method Not Allowed error response.
func MethodNotAllowedError(allowedMethods string) *ResponseBuilder {
	return ErrorResponse(http.StatusMethodNotAllowed, "method not allowed").
		Header("Allow", allowedMethods)
}

// StatusFor maps an operation error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrMissingResource):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// FromError builds the error response for err. Internal errors are not
// echoed to the client.
func FromError(err error) *ResponseBuilder {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		return InternalServerError("internal error")
	}
	return ErrorResponse(status, err.Error())
}
