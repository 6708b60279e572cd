// Package booking implements the admission engine: the single component
// allowed to decide and persist booking changes for an event. Every write
// path runs under the per-event distributed lock so that concurrent
// requests from any process never oversell capacity.
package booking

import (
	"context"
	"errors"
	"time"

	"github.com/avoronov/eventbooking/internal/domain"
	"github.com/avoronov/eventbooking/internal/kafka"
	"github.com/avoronov/eventbooking/internal/repository"
	"go.uber.org/zap"
)

type BookingUseCase interface {
	RequestBooking(ctx context.Context, event domain.Event, user domain.User, req BookingRequest) (*domain.EventBooking, error)
	CancelBooking(ctx context.Context, event domain.Event, userID int64) error
	PromoteWaitingList(ctx context.Context, event domain.Event) ([]domain.EventBooking, error)
	RecordAttendance(ctx context.Context, event domain.Event, userID int64, attended bool) (*domain.EventBooking, error)
	GetPlacesAvailable(ctx context.Context, event domain.Event) (int, error)
	GetBookingStatusCounts(ctx context.Context, eventID string, includeDeletedUsers bool) (map[domain.BookingStatus]int64, error)
	IsUserBooked(ctx context.Context, eventID string, userID int64) (bool, error)
	ListBookingsForUser(ctx context.Context, userID int64) ([]domain.EventBooking, error)
	ListReservationsForUser(ctx context.Context, reservedByID int64) ([]domain.EventBooking, error)
	DeleteBooking(ctx context.Context, eventID string, userID int64) error
	EraseAdditionalInformation(ctx context.Context, userID int64) error
}

// Locker is the named cross-process mutual exclusion the engine brackets
// its write paths with. Acquire returns a token bound to that acquisition
// and Release consumes it, so a release can only ever free the
// acquisition it belongs to. The engine owns every acquire/release pair;
// tokens are never exposed to callers.
type Locker interface {
	Acquire(ctx context.Context, resourceID string) (string, error)
	Release(ctx context.Context, resourceID, token string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingRequest struct {
	// ActingUserID is who creates the booking. Zero means self-service;
	// authority for proxy bookings is validated by the association layer
	// before the engine is called.
	ActingUserID          int64
	AdditionalInformation map[string]string
	AsWaitingList         bool
}

type BookingEngine struct {
	bookings           repository.BookingRepository
	locks              Locker
	producer           Producer
	policy             AdmissionPolicy
	notificationsTopic string
	logger             *zap.Logger
}

type BookingEngineOption func(*BookingEngine)

func WithPolicy(policy AdmissionPolicy) BookingEngineOption {
	return func(e *BookingEngine) {
		e.policy = policy
	}
}

func WithLogger(logger *zap.Logger) BookingEngineOption {
	return func(e *BookingEngine) {
		e.logger = logger
	}
}

func NewBookingEngine(
	bookings repository.BookingRepository,
	locks Locker,
	producer Producer,
	notificationsTopic string,
	opts ...BookingEngineOption,
) *BookingEngine {
	engine := &BookingEngine{
		bookings:           bookings,
		locks:              locks,
		producer:           producer,
		policy:             SharedPoolPolicy,
		notificationsTopic: notificationsTopic,
		logger:             zap.NewNop(),
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// RequestBooking runs one admission decision end to end. Preconditions that
// need no event state run before the lock; the capacity decision and the
// write happen inside it, against a fresh read.
func (e *BookingEngine) RequestBooking(ctx context.Context, event domain.Event, user domain.User, req BookingRequest) (*domain.EventBooking, error) {
	if event.ID == "" {
		return nil, errors.New("event id is required")
	}
	if event.DeadlinePassed(time.Now()) {
		return nil, ErrDeadlinePassed
	}
	if !user.ContactVerified() {
		return nil, ErrEmailNotVerified
	}

	token, err := e.locks.Acquire(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	defer e.release(ctx, event.ID, token)

	existing, err := e.bookings.FindByEventAndUser(ctx, event.ID, user.ID)
	if err != nil && !errors.Is(err, repository.ErrBookingNotFound) {
		return nil, err
	}
	if existing != nil {
		// Idempotent: the user already holds a non-cancelled booking.
		return existing, nil
	}

	current, err := e.bookings.FindAllByEventID(ctx, event.ID)
	if err != nil {
		return nil, err
	}

	var status domain.BookingStatus
	switch e.policy(event, current, user.Role, req.AsWaitingList) {
	case DecisionConfirm:
		status = domain.BookingStatusConfirmed
	case DecisionWaitingList:
		status = domain.BookingStatusWaitingList
	default:
		return nil, ErrEventFull
	}

	reservedBy := req.ActingUserID
	if reservedBy == 0 {
		reservedBy = user.ID
	}

	created := &domain.EventBooking{
		EventID:               event.ID,
		UserID:                user.ID,
		ReservedByID:          reservedBy,
		Status:                status,
		AdditionalInformation: req.AdditionalInformation,
	}
	if err := e.bookings.Add(ctx, created); err != nil {
		return nil, err
	}

	if status == domain.BookingStatusConfirmed {
		e.notify(ctx, "booking_confirmed", created)
	} else {
		e.notify(ctx, "booking_waiting_list", created)
	}
	return created, nil
}

// CancelBooking moves the user's booking to CANCELLED and, when a confirmed
// place was freed, promotes from the waiting list in creation order.
func (e *BookingEngine) CancelBooking(ctx context.Context, event domain.Event, userID int64) error {
	token, err := e.locks.Acquire(ctx, event.ID)
	if err != nil {
		return err
	}
	defer e.release(ctx, event.ID, token)

	current, err := e.bookings.FindByEventAndUser(ctx, event.ID, userID)
	if err != nil {
		return err
	}
	if !current.Status.CanTransitionTo(domain.BookingStatusCancelled) {
		return ErrInvalidTransition
	}
	freedPlace := current.Status == domain.BookingStatusConfirmed

	cancelled, err := e.bookings.UpdateStatus(ctx, event.ID, userID, domain.BookingStatusCancelled, nil)
	if err != nil {
		return err
	}
	e.notify(ctx, "booking_cancelled", cancelled)

	if freedPlace {
		if _, err := e.promoteLocked(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

// PromoteWaitingList fills any free places from the waiting list. Used by
// the sweep worker to catch promotions missed at cancellation time.
func (e *BookingEngine) PromoteWaitingList(ctx context.Context, event domain.Event) ([]domain.EventBooking, error) {
	token, err := e.locks.Acquire(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	defer e.release(ctx, event.ID, token)

	return e.promoteLocked(ctx, event)
}

// promoteLocked must be called with the event lock held.
func (e *BookingEngine) promoteLocked(ctx context.Context, event domain.Event) ([]domain.EventBooking, error) {
	confirmed, err := e.bookings.FindAllByEventIDAndStatus(ctx, event.ID, domain.BookingStatusConfirmed)
	if err != nil {
		return nil, err
	}
	free := event.NumberOfPlaces - len(confirmed)
	if free <= 0 {
		return nil, nil
	}

	waiting, err := e.bookings.FindAllByEventIDAndStatus(ctx, event.ID, domain.BookingStatusWaitingList)
	if err != nil {
		return nil, err
	}

	var promoted []domain.EventBooking
	for _, w := range waiting {
		if free <= 0 {
			break
		}
		updated, err := e.bookings.UpdateStatus(ctx, event.ID, w.UserID, domain.BookingStatusConfirmed, nil)
		if err != nil {
			return promoted, err
		}
		promoted = append(promoted, *updated)
		e.notify(ctx, "booking_promoted", updated)
		free--
	}
	return promoted, nil
}

// RecordAttendance marks a confirmed booking ATTENDED or ABSENT after the
// event has taken place.
func (e *BookingEngine) RecordAttendance(ctx context.Context, event domain.Event, userID int64, attended bool) (*domain.EventBooking, error) {
	target := domain.BookingStatusAbsent
	if attended {
		target = domain.BookingStatusAttended
	}

	token, err := e.locks.Acquire(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	defer e.release(ctx, event.ID, token)

	current, err := e.bookings.FindByEventAndUser(ctx, event.ID, userID)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransitionTo(target) {
		return nil, ErrInvalidTransition
	}
	return e.bookings.UpdateStatus(ctx, event.ID, userID, target, nil)
}

// GetPlacesAvailable is a lock-free snapshot. It may be stale; admission
// correctness is enforced only on the write path.
func (e *BookingEngine) GetPlacesAvailable(ctx context.Context, event domain.Event) (int, error) {
	counts, err := e.bookings.StatusCounts(ctx, event.ID, false)
	if err != nil {
		return 0, err
	}
	available := event.NumberOfPlaces - int(counts[domain.BookingStatusConfirmed])
	if available < 0 {
		available = 0
	}
	return available, nil
}

func (e *BookingEngine) GetBookingStatusCounts(ctx context.Context, eventID string, includeDeletedUsers bool) (map[domain.BookingStatus]int64, error) {
	return e.bookings.StatusCounts(ctx, eventID, includeDeletedUsers)
}

func (e *BookingEngine) IsUserBooked(ctx context.Context, eventID string, userID int64) (bool, error) {
	booking, err := e.bookings.FindByEventAndUser(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return false, nil
		}
		return false, err
	}
	return booking.Status.Active(), nil
}

// ListBookingsForUser returns every booking the user holds, across events
// and including past statuses.
func (e *BookingEngine) ListBookingsForUser(ctx context.Context, userID int64) ([]domain.EventBooking, error) {
	return e.bookings.FindAllByUserID(ctx, userID)
}

// ListReservationsForUser returns the bookings the user created on behalf
// of others, their own included.
func (e *BookingEngine) ListReservationsForUser(ctx context.Context, reservedByID int64) ([]domain.EventBooking, error) {
	return e.bookings.FindAllReservationsByUserID(ctx, reservedByID)
}

// DeleteBooking removes the record entirely. Cancellation is a status
// change; deletion is for administrative cleanup only.
func (e *BookingEngine) DeleteBooking(ctx context.Context, eventID string, userID int64) error {
	token, err := e.locks.Acquire(ctx, eventID)
	if err != nil {
		return err
	}
	defer e.release(ctx, eventID, token)

	return e.bookings.Delete(ctx, eventID, userID)
}

// EraseAdditionalInformation clears stored booking answers for a user
// without touching the bookings themselves.
func (e *BookingEngine) EraseAdditionalInformation(ctx context.Context, userID int64) error {
	return e.bookings.DeleteAdditionalInformation(ctx, userID)
}

// release runs on every exit path of a locked operation. It detaches from
// the caller's cancellation so an abandoned request cannot leave the event
// wedged.
func (e *BookingEngine) release(ctx context.Context, eventID, token string) {
	if err := e.locks.Release(context.WithoutCancel(ctx), eventID, token); err != nil {
		e.logger.Warn("release event lock", zap.String("event_id", eventID), zap.Error(err))
	}
}

func (e *BookingEngine) notify(ctx context.Context, eventType string, booking *domain.EventBooking) {
	if e.producer == nil || e.notificationsTopic == "" {
		return
	}
	notification := kafka.BookingNotification{
		Type:      eventType,
		EventID:   booking.EventID,
		UserID:    booking.UserID,
		Status:    string(booking.Status),
		CreatedAt: time.Now(),
	}
	if err := e.producer.Publish(ctx, e.notificationsTopic, booking.EventID, notification); err != nil {
		e.logger.Warn("publish booking notification",
			zap.String("type", eventType),
			zap.String("event_id", booking.EventID),
			zap.Int64("user_id", booking.UserID),
			zap.Error(err))
	}
}

var _ BookingUseCase = (*BookingEngine)(nil)
