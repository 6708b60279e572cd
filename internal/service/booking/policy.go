package booking

import "github.com/avoronov/eventbooking/internal/domain"

type Decision int

const (
	DecisionConfirm Decision = iota
	DecisionWaitingList
	DecisionFull
)

// AdmissionPolicy decides whether a new booking is confirmed, queued or
// rejected. It is a pure function over state read fresh under the event
// lock; preconditions (deadline, contact verification, idempotency) are the
// engine's job.
type AdmissionPolicy func(event domain.Event, current []domain.EventBooking, role domain.Role, asWaitingList bool) Decision

// SharedPoolPolicy admits into a single shared pool of places. Audience
// tags constrain who the event is aimed at, not a hard sub-quota: any role
// may take a place while capacity remains, and once occupied == capacity
// every further request is full regardless of role. Waiting-list bookings
// do not count toward capacity.
func SharedPoolPolicy(event domain.Event, current []domain.EventBooking, role domain.Role, asWaitingList bool) Decision {
	if asWaitingList {
		return DecisionWaitingList
	}

	occupied := 0
	for _, b := range current {
		if b.Status == domain.BookingStatusConfirmed {
			occupied++
		}
	}
	if occupied < event.NumberOfPlaces {
		return DecisionConfirm
	}
	return DecisionFull
}

var _ AdmissionPolicy = SharedPoolPolicy
