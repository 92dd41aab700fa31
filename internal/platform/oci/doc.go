// Package oci provides a wrapper around the Oracle Cloud Infrastructure API
// with the subset of identity, network and compute calls needed to claim an
// instance.
//
// # Architecture
//
//   - client.go: Provider interfaces and SDK-independent resource types
//   - real_client.go: RealClient backed by the OCI Go SDK
//   - errors.go: APIError and error classification helpers
//   - mock_client.go: MockClient with overridable function fields for tests
//
// Every RealClient is bound to a single region. [RealClient.ForRegion]
// returns a sibling client for another subscribed region that shares the
// same credentials, which is how the resolver follows a subnet that lives
// outside the configured region.
//
// Read calls are retried with exponential backoff for transient failures.
// Client errors (4xx except 429) are returned immediately so callers can
// tell "not found" from "try again". LaunchInstance is never retried here;
// its failures are classified by the caller.
package oci
