package util

import (
	"fmt"
	"net/http"
)

// MyResponseError carries an HTTP status through the handler chain to the error handler.
type MyResponseError struct {
	Msg    string
	Status int
}

func (e MyResponseError) Error() string { return e.Msg }

func NewResponseError(status int, format string, args ...interface{}) error {
	return MyResponseError{
		Msg:    fmt.Sprintf(format, args...),
		Status: status,
	}
}

func BadRequest(format string, args ...interface{}) error {
	return NewResponseError(http.StatusBadRequest, format, args...)
}
