// Package middleware adapts the manager's access-token verification to
// net/http handler chains.
package middleware
