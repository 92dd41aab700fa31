// Package retry provides backoff helpers for provider calls.
//
// [WithExponentialBackoff] retries an idempotent operation with configurable
// max attempts, initial delay and maximum delay. It is used by the Oracle
// Cloud adapter for read calls that may fail transiently. Errors wrapped with
// [Fatal] are returned immediately.
//
// [Sleep] is the context-aware fixed delay used between provisioning
// attempts; tests replace it with a function that records the requested
// durations instead of waiting.
package retry
