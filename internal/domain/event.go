package domain

import "time"

// Event is read-only metadata owned by the content service. The booking
// engine never mutates it.
type Event struct {
	ID              string
	Title           string
	NumberOfPlaces  int
	Tags            []string
	Location        string
	StartDate       time.Time
	BookingDeadline *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (e Event) DeadlinePassed(now time.Time) bool {
	return e.BookingDeadline != nil && now.After(*e.BookingDeadline)
}

func (e Event) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
