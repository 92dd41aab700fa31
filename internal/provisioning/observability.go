package provisioning

import (
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
)

// Logger is the minimal printf-style logging surface used across the engine.
type Logger interface {
	Printf(format string, v ...interface{})
}

// Observer defines the interface for structured observability during a claim run.
type Observer interface {
	Logger

	// Event emits a structured event
	Event(event Event)

	// WithFields returns a new Observer with additional context fields
	WithFields(fields map[string]string) Observer
}

// Event represents a structured engine event.
type Event struct {
	Type      EventType         // Type of event
	Phase     string            // Phase name (e.g., "resolve", "schedule")
	Message   string            // Human-readable message
	Resource  string            // Resource OCID or name if applicable
	Timestamp time.Time         // When the event occurred
	Fields    map[string]string // Additional contextual fields
}

// EventType represents the type of engine event.
type EventType string

const (
	// EventPhaseStarted indicates a phase has started.
	EventPhaseStarted EventType = "phase.started"
	// EventPhaseCompleted indicates a phase completed successfully.
	EventPhaseCompleted EventType = "phase.completed"
	// EventPhaseFailed indicates a phase failed.
	EventPhaseFailed EventType = "phase.failed"

	// EventResourceResolved indicates a placement resource was resolved.
	EventResourceResolved EventType = "resource.resolved"
	// EventRegionSwitched indicates resolution moved to another region.
	EventRegionSwitched EventType = "region.switched"

	// EventAttemptStarted indicates a launch attempt is being submitted.
	EventAttemptStarted EventType = "attempt.started"
	// EventAttemptSucceeded indicates a launch attempt produced a running instance.
	EventAttemptSucceeded EventType = "attempt.succeeded"
	// EventAttemptFailed indicates a launch attempt failed.
	EventAttemptFailed EventType = "attempt.failed"

	// EventBackoff indicates the scheduler is sleeping before the next candidate.
	EventBackoff EventType = "backoff"
)

// ConsoleObserver implements Observer on top of a logr sink that writes
// through the standard log package.
type ConsoleObserver struct {
	logger        logr.Logger
	contextFields map[string]string
}

// NewConsoleObserver creates a new console-based observer.
func NewConsoleObserver() *ConsoleObserver {
	return NewObserver(funcr.New(func(prefix, args string) {
		if prefix != "" {
			log.Printf("%s: %s", prefix, args)
			return
		}
		log.Print(args)
	}, funcr.Options{}))
}

// NewObserver wraps an arbitrary logr.Logger.
func NewObserver(logger logr.Logger) *ConsoleObserver {
	return &ConsoleObserver{
		logger:        logger,
		contextFields: make(map[string]string),
	}
}

// Printf implements Logger.
func (o *ConsoleObserver) Printf(format string, v ...interface{}) {
	o.logger.Info(fmt.Sprintf(format, v...), o.keysAndValues(nil)...)
}

// Event implements Observer.
func (o *ConsoleObserver) Event(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	kv := []interface{}{"event", string(event.Type)}
	if event.Phase != "" {
		kv = append(kv, "phase", event.Phase)
	}
	if event.Resource != "" {
		kv = append(kv, "resource", event.Resource)
	}
	kv = append(kv, o.keysAndValues(event.Fields)...)

	o.logger.Info(event.Message, kv...)
}

// WithFields implements Observer.
func (o *ConsoleObserver) WithFields(fields map[string]string) Observer {
	newFields := make(map[string]string, len(o.contextFields)+len(fields))
	for k, v := range o.contextFields {
		newFields[k] = v
	}
	for k, v := range fields {
		newFields[k] = v
	}

	return &ConsoleObserver{
		logger:        o.logger,
		contextFields: newFields,
	}
}

// keysAndValues merges event fields over context fields and flattens them
// in key order so output is stable.
func (o *ConsoleObserver) keysAndValues(fields map[string]string) []interface{} {
	merged := make(map[string]string, len(o.contextFields)+len(fields))
	for k, v := range o.contextFields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	kv := make([]interface{}, 0, len(keys)*2)
	for _, k := range keys {
		kv = append(kv, k, merged[k])
	}
	return kv
}

// Helper functions for common events

// LogPhaseStart logs a phase start event.
func LogPhaseStart(observer Observer, phase string) {
	observer.Event(Event{
		Type:    EventPhaseStarted,
		Phase:   phase,
		Message: "starting",
	})
}

// LogPhaseComplete logs a phase completion event.
func LogPhaseComplete(observer Observer, phase string, duration time.Duration) {
	observer.Event(Event{
		Type:    EventPhaseCompleted,
		Phase:   phase,
		Message: fmt.Sprintf("completed in %v", duration.Round(time.Millisecond)),
	})
}

// LogPhaseFailed logs a phase failure event.
func LogPhaseFailed(observer Observer, phase string, err error) {
	observer.Event(Event{
		Type:    EventPhaseFailed,
		Phase:   phase,
		Message: fmt.Sprintf("failed: %v", err),
	})
}

// LogResourceResolved logs a resolved placement resource.
func LogResourceResolved(observer Observer, resourceType, name, id string) {
	observer.Event(Event{
		Type:     EventResourceResolved,
		Phase:    phaseResolve,
		Resource: name,
		Message:  fmt.Sprintf("%s resolved", resourceType),
		Fields: map[string]string{
			"type": resourceType,
			"id":   id,
		},
	})
}

// LogAttemptStarted logs the submission of a launch attempt.
func LogAttemptStarted(observer Observer, attempt int, candidate CandidateSpec) {
	observer.Event(Event{
		Type:    EventAttemptStarted,
		Phase:   phaseSchedule,
		Message: fmt.Sprintf("attempt %d: %s", attempt, candidate),
		Fields:  candidateFields(candidate),
	})
}

// LogAttemptOutcome logs the verdict of a launch attempt.
func LogAttemptOutcome(observer Observer, attempt int, candidate CandidateSpec, outcome AttemptOutcome) {
	fields := candidateFields(candidate)
	fields["outcome"] = outcome.Kind.String()

	event := Event{
		Phase:  phaseSchedule,
		Fields: fields,
	}
	if outcome.Kind == OutcomeSuccess {
		event.Type = EventAttemptSucceeded
		event.Resource = outcome.InstanceID
		event.Message = fmt.Sprintf("attempt %d: instance running at %s", attempt, outcome.PublicIP)
	} else {
		event.Type = EventAttemptFailed
		event.Message = fmt.Sprintf("attempt %d: %s", attempt, outcome)
	}
	observer.Event(event)
}

// LogBackoff logs a scheduler sleep.
func LogBackoff(observer Observer, d time.Duration, reason string) {
	observer.Event(Event{
		Type:    EventBackoff,
		Phase:   phaseSchedule,
		Message: fmt.Sprintf("sleeping %v (%s)", d, reason),
	})
}

func candidateFields(c CandidateSpec) map[string]string {
	return map[string]string{
		"ad":     c.AvailabilityDomain,
		"ocpus":  fmt.Sprint(c.OCPUs),
		"memory": fmt.Sprintf("%dGB", c.MemoryGB),
	}
}
