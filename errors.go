package authcore

import "errors"

// The failure taxonomy. Everything a Manager method can reject with is
// one of these (possibly wrapped); callers branch with errors.Is.
var (
	// ErrMalformed means the presented string is not a parseable token.
	ErrMalformed = errors.New("malformed token")
	// ErrInvalidSignature means the token did not verify against the
	// signing key for its context.
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrExpired means the token is past its natural expiry.
	ErrExpired = errors.New("token expired")
	// ErrWrongKind means a refresh token was presented where an access
	// token was required, or vice versa.
	ErrWrongKind = errors.New("wrong token kind")
	// ErrRevoked means the token was blacklisted, already rotated, or
	// minted before the subject's last revoke-all.
	ErrRevoked = errors.New("token revoked")
	// ErrVerificationUnavailable means the revocation state could not be
	// checked. An unverifiable token is rejected, never trusted.
	ErrVerificationUnavailable = errors.New("verification unavailable")
	// ErrIssuanceFailed means the subject's revocation version could not
	// be read at mint time; no tokens are issued on a stale version.
	ErrIssuanceFailed = errors.New("token issuance failed")

	// ErrInvalidCredentials covers both unknown identifiers and wrong
	// passwords, deliberately indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrLoginRateLimited means the login attempt budget is exhausted.
	ErrLoginRateLimited = errors.New("login rate limited")
	// ErrRefreshRateLimited means the rotation budget is exhausted.
	ErrRefreshRateLimited = errors.New("refresh rate limited")

	// ErrManagerNotReady is returned by methods on a nil or unbuilt Manager.
	ErrManagerNotReady = errors.New("manager not initialized")
)

// Reason maps a Manager error onto the coarse reason code exposed at the
// HTTP boundary. Credential failures all collapse to codes that do not
// help an attacker distinguish a revoked token from a malformed one at
// the status level; store outages map to "unavailable" (503, not 401).
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrRevoked):
		return "revoked"
	case errors.Is(err, ErrMalformed), errors.Is(err, ErrInvalidSignature), errors.Is(err, ErrWrongKind):
		return "malformed"
	case errors.Is(err, ErrVerificationUnavailable), errors.Is(err, ErrIssuanceFailed):
		return "unavailable"
	default:
		return "unauthorized"
	}
}
