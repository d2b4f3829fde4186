package errcodes

import (
	"fmt"
	"net/http"
)

type Error struct {
	HTTPCode int
	Message  string
	Code     string
	Details  map[string]interface{}
}

func (err *Error) Error() string {
	return err.Message
}

func (err *Error) As(target interface{}) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	te.HTTPCode = err.HTTPCode
	te.Message = err.Message
	te.Code = err.Code
	te.Details = err.Details
	return true
}

func (err *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return te.HTTPCode == err.HTTPCode &&
		te.Message == err.Message &&
		te.Code == err.Code
}

// Forbidden returns a 403 error with a message indicating the action is
// forbidden.
func Forbidden(action string) error {
	return &Error{
		http.StatusForbidden,
		action + " is not allowed.",
		"forbidden",
		nil,
	}
}

// NotFound returns a 404 error with a message indicating the given resource.
func NotFound(resource string) error {
	return &Error{
		http.StatusNotFound,
		resource + " not found.",
		"not_found",
		nil,
	}
}

func UnsupportedMediaType() error {
	return &Error{
		http.StatusUnsupportedMediaType,
		"Unsupported Media Type",
		"unsupported_media_type",
		nil,
	}
}

func UnknownParameter(param string) error {
	return &Error{
		http.StatusUnprocessableEntity,
		fmt.Sprintf("Unknown Parameter %q", param),
		"unknown_parameter",
		nil,
	}
}

func ValidationTypeError(msg string) error {
	return &Error{
		http.StatusUnprocessableEntity,
		msg,
		"validation_type_error",
		nil,
	}
}

func ValidationError(msg string) error {
	return &Error{
		http.StatusUnprocessableEntity,
		msg,
		"validation_error",
		nil,
	}
}

// ParseFailed returns a 422 error for structure text that couldn't be parsed.
// The details carry the format plus the line and column when they're known.
func ParseFailed(msg string, details map[string]interface{}) error {
	return &Error{
		http.StatusUnprocessableEntity,
		msg,
		"parse_error",
		details,
	}
}

// InvalidStructure returns a 422 error for a tree that parsed but failed
// validation, e.g. an illegal name or a duplicate sibling.
func InvalidStructure(msg string, details map[string]interface{}) error {
	return &Error{
		http.StatusUnprocessableEntity,
		msg,
		"validation_error",
		details,
	}
}

// ExecutionFailed returns a 422 error for a run that couldn't start, e.g. a
// base directory that couldn't be created.
func ExecutionFailed(msg string, details map[string]interface{}) error {
	return &Error{
		http.StatusUnprocessableEntity,
		msg,
		"execution_error",
		details,
	}
}

func MalformedPayload() error {
	return &Error{
		http.StatusBadRequest,
		"Malformed Payload",
		"malformed_payload",
		nil,
	}
}

func EmptyRequestBody() error {
	return &Error{
		http.StatusBadRequest,
		"Request body can't be empty.",
		"empty_request_body",
		nil,
	}
}
