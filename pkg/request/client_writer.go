package request

import (
	"errors"
	"net/http"
)

// ErrInternalServer is the error returned to clients when a handler fails unexpectedly.
var ErrInternalServer = errors.New("internal server error")

// ClientWriter is a http.ResponseWriter that remembers the status code written to it.
type ClientWriter struct {
	http.ResponseWriter
	statusCode int
}

// NewClientWriter wraps w. The status code defaults to 200 until one is written.
func NewClientWriter(w http.ResponseWriter) *ClientWriter {
	return &ClientWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (c *ClientWriter) WriteHeader(statusCode int) {
	c.statusCode = statusCode
	c.ResponseWriter.WriteHeader(statusCode)
}

// StatusCode returns the status code written to the response.
func (c *ClientWriter) StatusCode() int {
	return c.statusCode
}
