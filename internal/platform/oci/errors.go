package oci

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a service error returned by the provider.
type APIError struct {
	StatusCode   int
	Code         string
	Message      string
	OpcRequestID string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("oci: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("oci: status %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// AsAPIError returns the APIError in err's chain, if any.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// StatusAndMessage extracts the HTTP status and message of a provider error.
// Errors that did not come from the service report status 0 and their text.
func StatusAndMessage(err error) (int, string) {
	if err == nil {
		return 0, ""
	}
	if apiErr, ok := AsAPIError(err); ok {
		msg := apiErr.Message
		if apiErr.Code != "" {
			msg = apiErr.Code + ": " + msg
		}
		return apiErr.StatusCode, msg
	}
	return 0, err.Error()
}

// IsNotFound checks if an error indicates a resource was not found.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsAuthorization checks if an error indicates missing permissions.
// OCI reports inaccessible resources as 404 NotAuthorizedOrNotFound, so
// callers usually want IsNotFound || IsAuthorization.
func IsAuthorization(err error) bool {
	return hasStatus(err, http.StatusUnauthorized, http.StatusForbidden)
}

// isClientError reports 4xx responses that will not succeed on retry.
func isClientError(err error) bool {
	apiErr, ok := AsAPIError(err)
	if !ok {
		return false
	}
	return apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 &&
		apiErr.StatusCode != http.StatusTooManyRequests &&
		apiErr.StatusCode != http.StatusConflict
}

func hasStatus(err error, codes ...int) bool {
	apiErr, ok := AsAPIError(err)
	if !ok {
		return false
	}
	for _, code := range codes {
		if apiErr.StatusCode == code {
			return true
		}
	}
	return false
}
