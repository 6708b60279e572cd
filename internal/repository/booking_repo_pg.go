package repository

import (
	"context"
	"errors"

	"github.com/avoronov/eventbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	Add(ctx context.Context, booking *domain.EventBooking) error
	UpdateStatus(ctx context.Context, eventID string, userID int64, status domain.BookingStatus, additionalInformation map[string]string) (*domain.EventBooking, error)
	Delete(ctx context.Context, eventID string, userID int64) error
	FindByEventAndUser(ctx context.Context, eventID string, userID int64) (*domain.EventBooking, error)
	FindAllByEventID(ctx context.Context, eventID string) ([]domain.EventBooking, error)
	FindAllByEventIDAndStatus(ctx context.Context, eventID string, status domain.BookingStatus) ([]domain.EventBooking, error)
	FindAllByUserID(ctx context.Context, userID int64) ([]domain.EventBooking, error)
	FindAllReservationsByUserID(ctx context.Context, reservedByID int64) ([]domain.EventBooking, error)
	StatusCounts(ctx context.Context, eventID string, includeDeletedUsers bool) (map[domain.BookingStatus]int64, error)
	CountAll(ctx context.Context) (int64, error)
	DeleteAdditionalInformation(ctx context.Context, userID int64) error
	ListEventIDsWithStatus(ctx context.Context, status domain.BookingStatus) ([]string, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, event_id, user_id, reserved_by, status, additional_information, created_at, updated_at`

func (r *PGBookingRepository) Add(ctx context.Context, booking *domain.EventBooking) error {
	info := booking.AdditionalInformation
	if info == nil {
		info = map[string]string{}
	}
	return r.db.QueryRow(ctx, `INSERT INTO event_bookings (event_id, user_id, reserved_by, status, additional_information)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		booking.EventID, booking.UserID, booking.ReservedByID, booking.Status, info).
		Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
}

// UpdateStatus targets the user's non-cancelled booking for the event. A nil
// additionalInformation leaves the stored field unmodified.
func (r *PGBookingRepository) UpdateStatus(ctx context.Context, eventID string, userID int64, status domain.BookingStatus, additionalInformation map[string]string) (*domain.EventBooking, error) {
	var row pgx.Row
	if additionalInformation == nil {
		row = r.db.QueryRow(ctx, `UPDATE event_bookings SET status=$1, updated_at=now()
			WHERE event_id=$2 AND user_id=$3 AND status <> 'CANCELLED'
			RETURNING `+bookingColumns, status, eventID, userID)
	} else {
		row = r.db.QueryRow(ctx, `UPDATE event_bookings SET status=$1, additional_information=$2, updated_at=now()
			WHERE event_id=$3 AND user_id=$4 AND status <> 'CANCELLED'
			RETURNING `+bookingColumns, status, additionalInformation, eventID, userID)
	}
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *PGBookingRepository) Delete(ctx context.Context, eventID string, userID int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM event_bookings WHERE event_id=$1 AND user_id=$2`, eventID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func (r *PGBookingRepository) FindByEventAndUser(ctx context.Context, eventID string, userID int64) (*domain.EventBooking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM event_bookings
		WHERE event_id=$1 AND user_id=$2 AND status <> 'CANCELLED'
		ORDER BY created_at DESC LIMIT 1`, eventID, userID)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *PGBookingRepository) FindAllByEventID(ctx context.Context, eventID string) ([]domain.EventBooking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM event_bookings
		WHERE event_id=$1 ORDER BY created_at`, eventID)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

// FindAllByEventIDAndStatus returns bookings in creation order, which the
// engine relies on for waiting-list promotion.
func (r *PGBookingRepository) FindAllByEventIDAndStatus(ctx context.Context, eventID string, status domain.BookingStatus) ([]domain.EventBooking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM event_bookings
		WHERE event_id=$1 AND status=$2 ORDER BY created_at`, eventID, status)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *PGBookingRepository) FindAllByUserID(ctx context.Context, userID int64) ([]domain.EventBooking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM event_bookings
		WHERE user_id=$1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *PGBookingRepository) FindAllReservationsByUserID(ctx context.Context, reservedByID int64) ([]domain.EventBooking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM event_bookings
		WHERE reserved_by=$1 ORDER BY created_at`, reservedByID)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *PGBookingRepository) StatusCounts(ctx context.Context, eventID string, includeDeletedUsers bool) (map[domain.BookingStatus]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT b.status, count(*) FROM event_bookings b
		JOIN users u ON u.id = b.user_id
		WHERE b.event_id=$1 AND ($2 OR NOT u.deleted)
		GROUP BY b.status`, eventID, includeDeletedUsers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.BookingStatus]int64)
	for rows.Next() {
		var status domain.BookingStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *PGBookingRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM event_bookings`).Scan(&count)
	return count, err
}

// DeleteAdditionalInformation clears the stored answers for every booking of
// the user without touching status or existence of the bookings.
func (r *PGBookingRepository) DeleteAdditionalInformation(ctx context.Context, userID int64) error {
	_, err := r.db.Exec(ctx, `UPDATE event_bookings SET additional_information='{}'::jsonb, updated_at=now() WHERE user_id=$1`, userID)
	return err
}

func (r *PGBookingRepository) ListEventIDsWithStatus(ctx context.Context, status domain.BookingStatus) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT event_id FROM event_bookings WHERE status=$1`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanBooking(row pgx.Row) (*domain.EventBooking, error) {
	var b domain.EventBooking
	if err := row.Scan(&b.ID, &b.EventID, &b.UserID, &b.ReservedByID, &b.Status, &b.AdditionalInformation, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func collectBookings(rows pgx.Rows) ([]domain.EventBooking, error) {
	defer rows.Close()

	bookings := make([]domain.EventBooking, 0)
	for rows.Next() {
		var b domain.EventBooking
		if err := rows.Scan(&b.ID, &b.EventID, &b.UserID, &b.ReservedByID, &b.Status, &b.AdditionalInformation, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

var _ BookingRepository = (*PGBookingRepository)(nil)
