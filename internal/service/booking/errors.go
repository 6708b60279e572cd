package booking

import "errors"

// ErrEmailNotVerified rejects a request before any event state is read;
// retryable once the user verifies their contact address.
var ErrEmailNotVerified = errors.New("user email address must be verified before booking")

// ErrDeadlinePassed rejects a request submitted after the event's booking
// deadline, regardless of remaining capacity.
var ErrDeadlinePassed = errors.New("booking deadline for the event has passed")

// ErrEventFull is returned when capacity is exhausted; retryable as a
// waiting-list request.
var ErrEventFull = errors.New("event is full")

// ErrInvalidTransition is returned when a status change is not legal from
// the booking's current status. Usage error, never silently applied.
var ErrInvalidTransition = errors.New("invalid booking status transition")
