package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// NotificationHandler processes one decoded booking notification. A
// returned error stops the consume loop.
type NotificationHandler func(ctx context.Context, notification BookingNotification) error

// Consumer reads booking notifications from the notifications topic as
// part of a consumer group and hands decoded payloads to a handler.
type Consumer struct {
	reader *kafka.Reader
	onSkip func(err error)
}

type ConsumerOption func(*Consumer)

// WithSkipCallback is invoked for every message dropped because its
// payload could not be decoded.
func WithSkipCallback(fn func(err error)) ConsumerOption {
	return func(c *Consumer) {
		c.onSkip = fn
	}
}

func NewConsumer(brokers []string, groupID, topic string, opts ...ConsumerOption) *Consumer {
	consumer := &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
	}
	for _, opt := range opts {
		opt(consumer)
	}
	return consumer
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume blocks reading notifications until ctx is done, the reader
// fails, or the handler returns an error. Messages that do not decode as
// a BookingNotification are skipped so one bad payload cannot stall the
// group.
func (c *Consumer) Consume(ctx context.Context, handler NotificationHandler) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		notification, err := decodeNotification(msg.Value)
		if err != nil {
			if c.onSkip != nil {
				c.onSkip(err)
			}
			continue
		}

		if err := handler(ctx, notification); err != nil {
			return err
		}
	}
}

func decodeNotification(value []byte) (BookingNotification, error) {
	var notification BookingNotification
	if err := json.Unmarshal(value, &notification); err != nil {
		return BookingNotification{}, fmt.Errorf("decode booking notification: %w", err)
	}
	return notification, nil
}
