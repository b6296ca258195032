package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoDriver is returned by Collect when no prompt driver is configured.
	ErrNoDriver = errors.New("tui: prompt driver is nil")
)
