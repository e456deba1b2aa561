package bulkapi

import (
	"errors"
	"fmt"
)

// Stages of a request at which an APIError can occur
const (
	StageBeforeRequest = "before-request"
	StageRequest       = "request"
	StageAfterRequest  = "after-request"
)

// Error types
const (
	TypeRequestPrep = "request-prep"
	TypeIO          = "io"
	TypeHTTPStatus  = "http-status"
	TypeJSONParse   = "json"
	TypeBusiness    = "business"
)

// GenericErrorMessage is shown when the server did not explain the failure
const GenericErrorMessage = "No se pudo conectar con el servidor. Intente nuevamente."

// APIError describes a failed call to the bulk-messaging API
type APIError struct {
	Operation  string
	Stage      string
	Type       string
	StatusCode int
	// Message is the server-provided message or error field, if any
	Message string
	Body    []byte
	Err     error
}

var _ error = &APIError{}

func (e *APIError) Error() string {
	detail := e.Message
	if detail == "" && e.Err != nil {
		detail = e.Err.Error()
	}
	if detail == "" {
		detail = string(e.Body)
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s failed (%s, HTTP %d): %s", e.Operation, e.Stage, e.Type, e.StatusCode, detail)
	}
	return fmt.Sprintf("%s: %s failed (%s): %s", e.Operation, e.Stage, e.Type, detail)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsBusiness reports whether the server answered success:false
func (e *APIError) IsBusiness() bool {
	return e.Type == TypeBusiness
}

// UserMessage converts an error into the text shown to the operator.
// A server-supplied message always takes precedence.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return GenericErrorMessage
	}
	return err.Error()
}
