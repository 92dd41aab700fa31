package provisioning

import (
	"context"
	"fmt"

	"github.com/imamik/ociclaim/internal/record"
)

// Notifier delivers human-readable progress messages to a side channel.
// Implementations must not block the engine on delivery failures.
// Implemented by internal/notify.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// Attempter performs a single launch attempt for one candidate.
// Implemented by ProvisionAttempt.
type Attempter interface {
	Attempt(ctx context.Context, env ResolvedEnvironment, candidate CandidateSpec) AttemptOutcome
}

// RecordStore persists the success record of a claim.
// Implemented by internal/record.
type RecordStore interface {
	Save(ctx context.Context, rec record.Record) error
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, string) {}

// reporter sends a line to both the observer and the notifier.
type reporter struct {
	observer Observer
	notifier Notifier
}

func (r reporter) say(ctx context.Context, format string, v ...interface{}) {
	msg := format
	if len(v) > 0 {
		msg = fmt.Sprintf(format, v...)
	}
	r.observer.Printf("%s", msg)
	r.notifier.Notify(ctx, msg)
}
