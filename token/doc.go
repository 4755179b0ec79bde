// Package token implements the stateless signer for access and refresh
// tokens. It owns the claim layout, the access/refresh signing contexts,
// and the mapping from library parse errors onto the typed failures the
// rest of the module branches on.
//
// The signer performs no I/O and reads no global clock: time comes from
// the injected Now function, which makes expiry paths directly testable.
package token
