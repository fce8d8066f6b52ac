package tests

import (
	"runtime/debug"
	"testing"
)

// Success and Failed annotate test log output.
const (
	Success = "✓"
	Failed  = "✗"
)

// Recover is a utility for tests to capture a panic with a stack trace
// instead of crashing the whole run.
func Recover(t testing.TB) {
	if r := recover(); r != nil {
		t.Fatalf("Unhandled Exception: %v\n%s", r, debug.Stack())
	}
}
