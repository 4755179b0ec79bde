// Package revocation tracks which issued tokens are no longer acceptable.
// Two record kinds live in the credential store: per-token blacklist
// entries keyed by jti, and per-subject version markers that invalidate
// everything minted before a "revoke all" in O(1). Both carry TTLs sized
// to the tokens they cover, so revocation state expires with the tokens
// themselves.
package revocation
