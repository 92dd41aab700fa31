package provisioning

import (
	"net/http"
	"strings"

	"github.com/imamik/ociclaim/internal/platform/oci"
)

// notRetryableKeywords mark authorization and missing-resource failures.
var notRetryableKeywords = []string{
	"notauthorizedornotfound",
	"notauthorized",
	"not authorized",
	"notauthenticated",
	"authorization failed",
	"not found",
	"forbidden",
	"permission",
}

// capacityKeywords mark host capacity shortages in the target AD.
var capacityKeywords = []string{
	"outofhostcapacity",
	"out of capacity",
	"out of host capacity",
	"capacity",
	"insufficient",
}

// Classify maps a provider status and message to a retry-policy outcome.
// Authorization/not-found rules take precedence over capacity rules.
func Classify(statusCode int, message string) AttemptOutcome {
	lower := strings.ToLower(message)

	if statusCode == http.StatusNotFound || containsAny(lower, notRetryableKeywords) {
		return NotRetryable(statusCode, message)
	}
	if containsAny(lower, capacityKeywords) {
		return CapacityExhausted(statusCode, message)
	}
	return TransientError(statusCode, message)
}

// ClassifyError classifies an error returned by the oci adapter. Errors that
// carry no provider status are classified on their text alone.
func ClassifyError(err error) AttemptOutcome {
	status, message := oci.StatusAndMessage(err)
	return Classify(status, message)
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
