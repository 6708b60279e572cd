package email

import (
	"context"
	"fmt"

	"github.com/avoronov/eventbooking/internal/kafka"
)

// Sender delivers booking status emails. Delivery is best-effort; the
// booking itself is never rolled back on failure.
type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, n kafka.BookingNotification) error {
	fmt.Printf("send %s email to user %d for event %s (status %s)\n", n.Type, n.UserID, n.EventID, n.Status)
	return nil
}
