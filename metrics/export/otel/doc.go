// Package otel exports the manager's counters through the OpenTelemetry
// metric API as observable counters.
package otel
