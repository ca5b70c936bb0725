package dumper

import "errors"

// Sentinel errors returned by Run and its collaborators. Per-task failures
// (extract/render errors) are never returned from Run itself — they are
// logged and the task's cursor is advanced per spec; only failures that
// threaten the ordering contract itself propagate here.
var (
	// ErrCanceled is returned when ctx is done before every task could be
	// dispatched. No partial-task cancellation is attempted mid-render:
	// Run always waits for every already-dispatched task to finish before
	// returning, so no task is still in flight once ErrCanceled comes back
	// — only tasks that were never dispatched are left unprocessed.
	ErrCanceled = errors.New("dumper: run canceled")

	// ErrNoTasks is returned by Run when called with an empty task slice.
	ErrNoTasks = errors.New("dumper: no tasks")
)
