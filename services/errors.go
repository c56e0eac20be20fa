package services

import "errors"

// Error taxonomy surfaced to callers. Anything not listed here is a store
// failure and bubbles up after the enclosing transaction has rolled back.
var (
	// ErrInvalidInput means a malformed schedule rule or parameter; the
	// caller should fix the request, not retry.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidDuration means the requested duration is not in the
	// allow-list.
	ErrInvalidDuration = errors.New("invalid duration")

	// ErrSlotUnavailable means the window is booked or held by someone
	// else; the caller should re-list and pick another window.
	ErrSlotUnavailable = errors.New("slot unavailable")

	// ErrHoldExpiredOrStolen means a confirmation arrived after the hold
	// lapsed or was reassigned; the booking flow must restart.
	ErrHoldExpiredOrStolen = errors.New("hold expired or reassigned")

	ErrProviderNotFound = errors.New("provider not found")
)
