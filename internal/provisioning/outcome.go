package provisioning

import "fmt"

// OutcomeKind is the retry-policy verdict of a launch attempt.
type OutcomeKind int

const (
	// OutcomeSuccess means an instance reached RUNNING and has a public IP.
	OutcomeSuccess OutcomeKind = iota + 1
	// OutcomeCapacityExhausted means the provider has no host capacity right now.
	OutcomeCapacityExhausted
	// OutcomeNotRetryable means the failure will not resolve by waiting.
	OutcomeNotRetryable
	// OutcomeTransientError means anything else; retried on the normal cadence.
	OutcomeTransientError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeCapacityExhausted:
		return "capacity_exhausted"
	case OutcomeNotRetryable:
		return "not_retryable"
	case OutcomeTransientError:
		return "transient_error"
	default:
		return "unknown"
	}
}

// AttemptOutcome is produced once per attempt. InstanceID and PublicIP are set
// only on success; Reason carries the provider detail otherwise.
type AttemptOutcome struct {
	Kind       OutcomeKind
	InstanceID string
	PublicIP   string
	StatusCode int
	Reason     string
}

// Success builds a successful outcome.
func Success(instanceID, publicIP string) AttemptOutcome {
	return AttemptOutcome{Kind: OutcomeSuccess, InstanceID: instanceID, PublicIP: publicIP}
}

// CapacityExhausted builds a capacity outcome.
func CapacityExhausted(statusCode int, reason string) AttemptOutcome {
	return AttemptOutcome{Kind: OutcomeCapacityExhausted, StatusCode: statusCode, Reason: reason}
}

// NotRetryable builds a terminal failure outcome.
func NotRetryable(statusCode int, reason string) AttemptOutcome {
	return AttemptOutcome{Kind: OutcomeNotRetryable, StatusCode: statusCode, Reason: reason}
}

// TransientError builds a retryable failure outcome.
func TransientError(statusCode int, reason string) AttemptOutcome {
	return AttemptOutcome{Kind: OutcomeTransientError, StatusCode: statusCode, Reason: reason}
}

// Retryable reports whether the scheduler should keep going after this outcome.
func (o AttemptOutcome) Retryable() bool {
	return o.Kind == OutcomeCapacityExhausted || o.Kind == OutcomeTransientError
}

func (o AttemptOutcome) String() string {
	switch o.Kind {
	case OutcomeSuccess:
		return fmt.Sprintf("success instance=%s ip=%s", o.InstanceID, o.PublicIP)
	case OutcomeCapacityExhausted:
		if o.Reason == "" {
			return "capacity exhausted"
		}
		return "capacity exhausted: " + o.Reason
	}
	if o.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d): %s", o.Kind, o.StatusCode, o.Reason)
	}
	return fmt.Sprintf("%s: %s", o.Kind, o.Reason)
}
