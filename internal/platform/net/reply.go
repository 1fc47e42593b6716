package net

import (
	"net/http"

	perr "hubconnect/internal/platform/errors"
)

// ErrorWire is the body for single-message failures, e.g. {"error":"invalid_connector_token"}
type ErrorWire struct {
	Error string `json:"error"`
}

// ValidationWire is the body for field validation failures
type ValidationWire struct {
	Errors map[string]string `json:"errors"`
}

// InvalidConnectorToken is the fixed message for a backend rejecting the vendor token
const InvalidConnectorToken = "invalid_connector_token"

// Error builds the status and body for a project error
// validation errors carry their field map; everything else a single message
// unknown failures never echo their message to the client
func Error(err error) (int, any) {
	if err == nil {
		return http.StatusOK, nil
	}
	status := perr.HTTPStatus(err)
	e, ok := perr.As(err)
	if !ok {
		return status, ErrorWire{Error: http.StatusText(status)}
	}
	switch e.Code() {
	case perr.ErrorCodeValidation:
		return status, ValidationWire{Errors: e.Fields()}
	case perr.ErrorCodeUnknown, perr.ErrorCodePanic, perr.ErrorCodeMissingMessageKey, perr.ErrorCodeIllegalArgument:
		return status, ErrorWire{Error: http.StatusText(status)}
	default:
		return status, ErrorWire{Error: e.Message()}
	}
}
