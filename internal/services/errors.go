// Package services implements the intake use-case layer: session
// hydration, flow dispatch, draft checkpointing, and the save protocol.
// This file centralizes the service-level error values and the mapping of
// store failures to the short kind tags shown to users.
package services

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrDraftStore wraps failures reading or writing the draft store.
	// The session is preserved so the user can retry.
	ErrDraftStore = errors.New("draft store failure")

	// ErrRecordStore wraps failures appending to the record store.
	// The draft is left intact so the user can retry the save.
	ErrRecordStore = errors.New("record store failure")
)

// storeErrorKind reduces a store failure to a short category tag safe to
// show in the chat transcript. No credentials or driver internals leak
// through; operators correlate the tag with server logs.
func storeErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	}
	low := strings.ToLower(err.Error())
	switch {
	case strings.Contains(low, "database is locked"), strings.Contains(low, "busy"):
		return "busy"
	case strings.Contains(low, "constraint"):
		return "conflict"
	case strings.Contains(low, "no such table"), strings.Contains(low, "no such column"):
		return "schema"
	default:
		return "internal"
	}
}
