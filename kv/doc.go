// Package kv defines the credential store adapter used by the revocation
// ledger, and its Redis implementation. The adapter is intentionally
// narrow: conditional put with TTL, read, and atomic increment with TTL
// refresh. Anything the manager cannot express in those three operations
// does not belong in the store.
package kv
