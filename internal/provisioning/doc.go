// Package provisioning contains the claim engine for Oracle Cloud A1 Flex instances.
//
// # Components
//
//   - Resolver validates and derives region, compartment, subnet, availability
//     domains and image before any launch is attempted. It may auto-discover a
//     subnet and switch region when the configured subnet lives elsewhere.
//   - ProvisionAttempt performs exactly one launch and waits for the instance
//     to reach RUNNING or for the launch timeout to expire.
//   - Classify maps provider failures to retry-policy outcomes.
//   - Scheduler drives the unbounded candidate loop until an instance is
//     claimed or a non-retryable failure is observed.
//
// # Core Types
//
// ResolvedEnvironment is produced once at startup and never mutated.
// CandidateSpec is one (availability domain, OCPU count, memory) placement.
// AttemptOutcome is the verdict of a single ProvisionAttempt.
// RunState is the scheduler's view of one run.
package provisioning
