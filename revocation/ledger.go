package revocation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/localista/authcore/kv"
)

// ErrCheckFailed is returned when the credential store cannot answer a
// revocation question or record a revocation. The verifier treats it as a
// verification failure: an unverifiable token is never trusted.
var ErrCheckFailed = errors.New("revocation check failed")

const (
	blacklistPrefix = "tbl:"
	versionPrefix   = "tvr:"

	// Floor for blacklist TTLs so a token at the edge of expiry still
	// gets an entry that outlives it.
	minBlacklistTTL = time.Second
)

// Ledger is the single source of truth for token revocation state. It
// tracks individually blacklisted token IDs and per-subject revocation
// version markers, both with TTLs so the store never grows unbounded.
type Ledger struct {
	store kv.Store
}

// NewLedger creates a Ledger over the given store adapter.
func NewLedger(store kv.Store) *Ledger {
	return &Ledger{store: store}
}

// Blacklist records a token ID as revoked for at least ttl. The write is
// idempotent; first reports whether this call created the entry, which is
// how rotation decides the winner when two requests race to consume the
// same refresh token. An existing entry always carries a TTL at least as
// long as the token's remaining lifetime was when it got written, so NX
// never needs to extend it.
func (l *Ledger) Blacklist(ctx context.Context, tokenID string, ttl time.Duration) (first bool, err error) {
	if tokenID == "" {
		return false, errors.New("empty token id")
	}
	if ttl < minBlacklistTTL {
		ttl = minBlacklistTTL
	}

	first, err = l.store.PutNX(ctx, blacklistPrefix+tokenID, "1", ttl)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrCheckFailed, err)
	}
	return first, nil
}

// IsBlacklisted reports whether the token ID has a live blacklist entry.
// Store failures surface as ErrCheckFailed, never as "not blacklisted".
func (l *Ledger) IsBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	_, found, err := l.store.Get(ctx, blacklistPrefix+tokenID)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrCheckFailed, err)
	}
	return found, nil
}

// RevokeAllForSubject bumps the subject's revocation version marker in a
// single atomic store operation, invalidating every token minted before
// the bump without enumerating them. ttl must cover the longest lifetime
// a still-outstanding token can have (the refresh TTL); the marker's TTL
// is refreshed on every bump and the key self-expires once nothing it
// invalidates can still be alive.
func (l *Ledger) RevokeAllForSubject(ctx context.Context, subjectID string, ttl time.Duration) (int64, error) {
	if subjectID == "" {
		return 0, errors.New("empty subject id")
	}

	version, err := l.store.IncrWithTTL(ctx, versionPrefix+subjectID, ttl)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCheckFailed, err)
	}
	return version, nil
}

// SubjectVersion returns the subject's current revocation version, zero
// when the subject has never been mass-revoked (or the marker expired).
func (l *Ledger) SubjectVersion(ctx context.Context, subjectID string) (int64, error) {
	value, found, err := l.store.Get(ctx, versionPrefix+subjectID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCheckFailed, err)
	}
	if !found {
		return 0, nil
	}

	version, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: corrupt version marker for subject %s", ErrCheckFailed, subjectID)
	}
	return version, nil
}
