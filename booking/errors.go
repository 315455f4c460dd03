package booking

import "errors"

// ErrNotFound is returned when the referenced unit or reservation does
// not exist. Routes map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when the write-time availability re-check
// fails: the unit was booked out between search and create. Routes map
// this to HTTP 409; the client's recovery is a new search, never an
// automatic retry.
var ErrConflict = errors.New("booking conflict")

// ErrInvalidTransition is returned for a status change outside the
// reservation state machine. Always a client error, mapped to HTTP 422.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrInvalidWindow is returned when a requested window has
// start >= end or a zero pickup instant.
var ErrInvalidWindow = errors.New("invalid booking window")
