// Package rate implements the Redis fixed-window throttles the manager
// applies to login attempts and refresh rotations.
package rate
