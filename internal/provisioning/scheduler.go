package provisioning

import (
	"context"
	"fmt"
	"time"

	"github.com/imamik/ociclaim/internal/config"
	"github.com/imamik/ociclaim/internal/record"
	"github.com/imamik/ociclaim/internal/util/retry"
)

// RunPhase is the scheduler state.
type RunPhase int

const (
	// StateScanning selects the next candidate.
	StateScanning RunPhase = iota
	// StateAttempting has an attempt in flight.
	StateAttempting
	// StateSucceeded is terminal: an instance was claimed.
	StateSucceeded
	// StateAborted is terminal: a non-retryable failure was observed.
	StateAborted
)

func (p RunPhase) String() string {
	switch p {
	case StateScanning:
		return "scanning"
	case StateAttempting:
		return "attempting"
	case StateSucceeded:
		return "succeeded"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// RunState is the scheduler's view of one run.
type RunState struct {
	Attempts       int
	CandidateIndex int
	Passes         int
	State          RunPhase
	LastOutcome    AttemptOutcome
	Record         *record.Record
}

// Scheduler walks the candidate list until an attempt succeeds or fails
// for good.
type Scheduler struct {
	env        ResolvedEnvironment
	candidates []CandidateSpec
	attempter  Attempter
	store      RecordStore
	interval   time.Duration
	delay      retry.DelayFunc
	observer   Observer
	report     reporter
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithDelay replaces the sleep between attempts. Tests use it to run many
// cycles without waiting.
func WithDelay(d retry.DelayFunc) SchedulerOption {
	return func(s *Scheduler) { s.delay = d }
}

// WithNotifier sets the side channel for progress messages.
func WithNotifier(n Notifier) SchedulerOption {
	return func(s *Scheduler) {
		if n != nil {
			s.report.notifier = n
		}
	}
}

// NewScheduler builds the candidate list from env's availability domains and
// the configured sizes.
func NewScheduler(env ResolvedEnvironment, cfg *config.Config, attempter Attempter, store RecordStore, observer Observer, opts ...SchedulerOption) (*Scheduler, error) {
	candidates := BuildCandidates(env.AvailabilityDomains, cfg.Schedule.OCPUs, cfg.Schedule.MemPerOCPU)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidates (ADs=%v, OCPUs=%v)",
			config.ErrConfiguration, env.AvailabilityDomains, cfg.Schedule.OCPUs)
	}

	s := &Scheduler{
		env:        env,
		candidates: candidates,
		attempter:  attempter,
		store:      store,
		interval:   cfg.Schedule.SleepInterval(),
		delay:      retry.Sleep,
		observer:   observer,
		report:     reporter{observer: observer, notifier: nopNotifier{}},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Candidates returns the search order.
func (s *Scheduler) Candidates() []CandidateSpec {
	return append([]CandidateSpec(nil), s.candidates...)
}

// Run attempts candidates until one succeeds, one is not retryable, or ctx
// is cancelled. On abort the error is an *AbortError. A record persistence
// failure is returned with the state already Succeeded.
func (s *Scheduler) Run(ctx context.Context) (RunState, error) {
	state := RunState{State: StateScanning}
	s.report.say(ctx, "Starting claim in %s: %d candidates, %v between attempts",
		s.env.Region, len(s.candidates), s.interval)

	for {
		c := s.candidates[state.CandidateIndex]
		recordCandidateMetric(state.CandidateIndex)

		state.State = StateAttempting
		state.Attempts++
		LogAttemptStarted(s.observer, state.Attempts, c)
		s.report.notifier.Notify(ctx, fmt.Sprintf("[%d] Attempting %s", state.Attempts, c))

		start := time.Now()
		outcome := s.attempter.Attempt(ctx, s.env, c)
		recordAttemptMetric(c, outcome.Kind, time.Since(start).Seconds())
		LogAttemptOutcome(s.observer, state.Attempts, c, outcome)
		state.LastOutcome = outcome

		switch {
		case outcome.Kind == OutcomeSuccess:
			rec := record.Record{InstanceID: outcome.InstanceID, PublicIP: outcome.PublicIP}
			state.State = StateSucceeded
			state.Record = &rec
			s.report.notifier.Notify(ctx, fmt.Sprintf("Claimed %s\nInstance: %s\nPublic IP: %s",
				c, outcome.InstanceID, outcome.PublicIP))
			if err := s.store.Save(ctx, rec); err != nil {
				return state, fmt.Errorf("persist success record: %w", err)
			}
			return state, nil

		case !outcome.Retryable():
			state.State = StateAborted
			s.report.notifier.Notify(ctx, fmt.Sprintf("Stopping after attempt %d (%s): %s",
				state.Attempts, c, outcome))
			return state, &AbortError{Attempt: state.Attempts, Candidate: c, Outcome: outcome}

		case outcome.Kind == OutcomeCapacityExhausted:
			s.report.notifier.Notify(ctx, fmt.Sprintf("[%d] Out of capacity for %s, retrying in %v",
				state.Attempts, c, s.interval))

		default:
			s.report.notifier.Notify(ctx, fmt.Sprintf("[%d] Error for %s: %s, retrying in %v",
				state.Attempts, c, outcome, s.interval))
		}

		state.State = StateScanning
		if err := s.sleep(ctx, "next candidate"); err != nil {
			return state, err
		}

		state.CandidateIndex++
		if state.CandidateIndex == len(s.candidates) {
			state.CandidateIndex = 0
			state.Passes++
			recordPassMetric()
			if err := s.sleep(ctx, "pass complete"); err != nil {
				return state, err
			}
		}
	}
}

func (s *Scheduler) sleep(ctx context.Context, reason string) error {
	LogBackoff(s.observer, s.interval, reason)
	if err := s.delay(ctx, s.interval); err != nil {
		return fmt.Errorf("claim cancelled: %w", err)
	}
	return nil
}
