// Package repository persists event bookings and event metadata in
// Postgres. Sentinel errors let higher layers distinguish a missing row
// from an infrastructure failure without inspecting driver errors.
package repository

import "errors"

// ErrBookingNotFound is returned when no booking matches the lookup.
var ErrBookingNotFound = errors.New("booking not found")

// ErrEventNotFound is returned when no event matches the given id.
var ErrEventNotFound = errors.New("event not found")
