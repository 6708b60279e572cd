package domain

import "time"

type BookingStatus string

const (
	BookingStatusConfirmed   BookingStatus = "CONFIRMED"
	BookingStatusWaitingList BookingStatus = "WAITING_LIST"
	BookingStatusCancelled   BookingStatus = "CANCELLED"
	BookingStatusAttended    BookingStatus = "ATTENDED"
	BookingStatusAbsent      BookingStatus = "ABSENT"
)

// transitions lists the legal next statuses for each status. Statuses
// without an entry are terminal.
var transitions = map[BookingStatus][]BookingStatus{
	BookingStatusWaitingList: {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed:   {BookingStatusCancelled, BookingStatusAttended, BookingStatusAbsent},
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// Active reports whether the booking still holds or competes for a place.
func (s BookingStatus) Active() bool {
	return s == BookingStatusConfirmed || s == BookingStatusWaitingList
}

type EventBooking struct {
	ID                    int64
	EventID               string
	UserID                int64
	ReservedByID          int64
	Status                BookingStatus
	AdditionalInformation map[string]string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}
