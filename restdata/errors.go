// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"

	"github.com/diffeo/go-enamel/enamel"
	"github.com/diffeo/go-enamel/microversion"
)

// ErrorStatus describes errors that correspond to specific HTTP status
// codes.
type ErrorStatus interface {
	// HTTPStatus returns the HTTP status code for this error.
	HTTPStatus() int
}

// ErrUnsupportedMediaType is returned from Decode() if the provided
// Content-Type: is unrecognized.  This translates directly into the
// equivalent HTTP 415 error.
type ErrUnsupportedMediaType struct {
	Type string
}

func (e ErrUnsupportedMediaType) Error() string {
	return fmt.Sprintf("Unsupported media type %q", e.Type)
}

// HTTPStatus returns a fixed 415 Unsupported Media Type error code.
func (e ErrUnsupportedMediaType) HTTPStatus() int {
	return http.StatusUnsupportedMediaType
}

// ErrNotFound is a wrapper error that indicates that, due to the
// embedded error, a REST service should return a 404 Not Found error.
type ErrNotFound struct {
	Err error
}

func (e ErrNotFound) Error() string {
	return e.Err.Error()
}

// HTTPStatus returns a fixed 404 Not Found error code.
func (e ErrNotFound) HTTPStatus() int {
	return http.StatusNotFound
}

// ErrBadRequest is returned as an error when there is an error decoding
// HTTP headers or the request body.
type ErrBadRequest struct {
	Err error
}

func (e ErrBadRequest) Error() string {
	return e.Err.Error()
}

// HTTPStatus returns a fixed 400 Bad Request HTTP status code.
func (e ErrBadRequest) HTTPStatus() int {
	return http.StatusBadRequest
}

// ErrNotAcceptable is returned when the requested microversion cannot
// be served.
type ErrNotAcceptable struct {
	Err error
}

func (e ErrNotAcceptable) Error() string {
	return "unable to use provided version: " + e.Err.Error()
}

// HTTPStatus returns a fixed 406 Not Acceptable HTTP status code.
func (e ErrNotAcceptable) HTTPStatus() int {
	return http.StatusNotAcceptable
}

// ErrMethodNotAllowed is returned when a resource exists but does not
// support the request method.
type ErrMethodNotAllowed struct {
	Method string
}

func (e ErrMethodNotAllowed) Error() string {
	return fmt.Sprintf("Method %s is not allowed", e.Method)
}

// HTTPStatus returns a fixed 405 Method Not Allowed HTTP status code.
func (e ErrMethodNotAllowed) HTTPStatus() int {
	return http.StatusMethodNotAllowed
}

// ErrorItem is a single entry in an error response.
type ErrorItem struct {
	Status    int    `json:"status"`
	RequestID string `json:"request_id"`
	Title     string `json:"title"`
	Detail    string `json:"detail"`

	// Code names a well-known error type, if this is one.
	Code string `json:"code,omitempty"`

	// Stack is the Go stack trace of a recovered panic.
	Stack string `json:"stack,omitempty"`
}

// ErrorResponse is the body of every failing HTTP response.
type ErrorResponse struct {
	Errors []ErrorItem `json:"errors"`
}

// StatusOf returns the HTTP status code that should be reported for
// err.  Errors that do not map to any more specific code are 500
// Internal Server Error.
func StatusOf(err error) int {
	var status ErrorStatus
	if errors.As(err, &status) {
		return status.HTTPStatus()
	}
	switch err.(type) {
	case enamel.ErrNoSuchTask, enamel.ErrNoSuchTaskItem:
		return http.StatusNotFound
	case enamel.ErrBadUUID:
		return http.StatusBadRequest
	case enamel.ErrDuplicateUUID:
		return http.StatusConflict
	case microversion.ErrUnacceptableVersion:
		return http.StatusNotAcceptable
	}
	return http.StatusInternalServerError
}

// FromError populates an ErrorResponse to fill in its fields based
// on an error value.  This remaps the well-known enamel errors to
// specific codes.
func (e *ErrorResponse) FromError(err error, requestID string) {
	status := StatusOf(err)
	item := ErrorItem{
		Status:    status,
		RequestID: requestID,
		Title:     http.StatusText(status),
		Detail:    err.Error(),
		Code:      errorCode(err),
	}
	e.Errors = append(e.Errors, item)
}

func errorCode(err error) string {
	switch et := err.(type) {
	case enamel.ErrNoSuchTask:
		return "ErrNoSuchTask"
	case enamel.ErrNoSuchTaskItem:
		return "ErrNoSuchTaskItem"
	case enamel.ErrBadUUID:
		return "ErrBadUUID"
	case enamel.ErrDuplicateUUID:
		return "ErrDuplicateUUID"
	case ErrNotFound:
		// Discard this wrapper and report the embedded error
		return errorCode(et.Err)
	case ErrBadRequest:
		return errorCode(et.Err)
	}
	return ""
}

// ToError converts e back to an enamel error, if that is possible.
// The error response does not carry the error's fields, so uuid and
// taskID fill them in from the request that failed.  If the error is
// not a well-known one, returns a plain error with the detail text.
func (e *ErrorResponse) ToError(uuid string, taskID int) error {
	if len(e.Errors) == 0 {
		return errors.New("unknown error")
	}
	item := e.Errors[0]
	switch item.Code {
	case "ErrNoSuchTask":
		if uuid == "" {
			return enamel.ErrNoSuchTask{ID: taskID}
		}
		return enamel.ErrNoSuchTask{UUID: uuid}
	case "ErrNoSuchTaskItem":
		return enamel.ErrNoSuchTaskItem{UUID: uuid}
	case "ErrBadUUID":
		return enamel.ErrBadUUID{UUID: uuid}
	case "ErrDuplicateUUID":
		return enamel.ErrDuplicateUUID{UUID: uuid}
	}
	return errors.New(item.Detail)
}

// FromPanic populates an error response based on a panic.  Typical use
// is:
//
//	defer func() {
//	    if obj := recover(); obj != nil {
//	        resp := restdata.ErrorResponse{}
//	        resp.FromPanic(obj, requestID)
//	        // write resp out as makes sense
//	    }
//	}
func (e *ErrorResponse) FromPanic(obj interface{}, requestID string) {
	item := ErrorItem{
		Status:    http.StatusInternalServerError,
		RequestID: requestID,
		Title:     http.StatusText(http.StatusInternalServerError),
		Code:      "panic",
	}
	if recoveredError, isError := obj.(error); isError {
		item.Detail = recoveredError.Error()
	} else {
		item.Detail = fmt.Sprintf("%+v", obj)
	}
	var stack [4096]byte
	len := runtime.Stack(stack[:], false)
	item.Stack = string(stack[:len])
	e.Errors = append(e.Errors, item)
}
