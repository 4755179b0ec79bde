// Package authcore is the token lifecycle and revocation manager: it
// issues, verifies, rotates, and revokes the access/refresh token pairs
// that authenticate API clients.
//
// The package is designed for concurrent server workloads: Manager
// methods are safe to call from multiple goroutines after initialization
// through [Builder.Build]. The only shared mutable state is the
// credential store behind [kv.Store]; every mutation on it is a single
// atomic operation.
//
// # Architecture boundaries
//
// authcore is the public surface. It exposes [Manager], [Builder],
// [Config], typed errors, and value types ([Principal], [TokenPair],
// MetricsSnapshot). Signing lives in the token subpackage, revocation
// state in revocation, and the store adapter in kv.
//
// # Failure policy
//
// Verification failures are expected traffic and come back as typed
// errors, never panics. When the credential store is unreachable the
// manager fails closed: it refuses to verify ([ErrVerificationUnavailable])
// and refuses to issue ([ErrIssuanceFailed]) rather than trust state it
// cannot check.
package authcore
