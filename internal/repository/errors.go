package repository

import "errors"

var (
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrVideoNotFound is returned when no video matches the lookup. A video
	// owned by a different user is reported identically so that existence
	// cannot be probed across accounts.
	ErrVideoNotFound = errors.New("video not found")
	// ErrResultNotFound is returned when a video has no inference result yet.
	ErrResultNotFound = errors.New("inference result not found")
	// ErrStaleAttempt is returned when a terminal status write loses the
	// attempt-token compare-and-swap to a newer processing run.
	ErrStaleAttempt = errors.New("stale processing attempt")
)
