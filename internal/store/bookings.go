package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"salonbook/internal/model"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*model.Booking, error) {
	var b model.Booking
	if err := row.Scan(
		&b.ID, &b.StaffID, &b.CustomerID, &b.StartTime, &b.EndTime,
		&b.Status, &b.DurationMinutes, &b.CreatedAt, &b.UpdatedAt, &b.Version,
	); err != nil {
		return nil, err
	}
	return &b, nil
}

// GetBooking returns one booking with its linked service ids.
func (s *Store) GetBooking(ctx context.Context, id string) (*model.Booking, error) {
	row := s.QueryRowContext(ctx, `
		SELECT id, staff_id, customer_id, start_time, end_time, status,
		       duration_minutes, created_at, updated_at, version
		FROM bookings WHERE id = ?`, id)

	b, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select booking: %w", err)
	}

	rows, err := s.QueryContext(ctx,
		"SELECT service_id FROM booking_services WHERE booking_id = ? ORDER BY position", id)
	if err != nil {
		return nil, fmt.Errorf("select booking services: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var sid string
		if err := rows.Scan(&sid); err != nil {
			return nil, err
		}
		b.ServiceIDs = append(b.ServiceIDs, sid)
	}
	return b, rows.Err()
}

// CreateBooking persists a new reservation. The buffered overlap re-check
// runs inside the same transaction as the insert, closing the race between
// availability display and commit: losing the race fails with ErrSlotTaken
// instead of overwriting anyone.
func (s *Store) CreateBooking(ctx context.Context, b *model.Booking) error {
	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	taken, err := s.windowTaken(ctx, tx, b.StaffID, b.StartTime, b.EndTime, "")
	if err != nil {
		return err
	}
	if taken {
		return ErrSlotTaken
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO bookings (id, staff_id, customer_id, start_time, end_time,
		                      status, duration_minutes, created_at, updated_at, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1)`,
		b.ID, b.StaffID, b.CustomerID, b.StartTime, b.EndTime,
		b.Status, b.DurationMinutes, now, now,
	); err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}

	if err := linkServices(ctx, tx, b.ID, b.ServiceIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit booking: %w", err)
	}
	b.CreatedAt, b.UpdatedAt, b.Version = now, now, 1
	return nil
}

// UpdateBookingSchedule overwrites staff, span and status of an existing
// booking (the reschedule path). The booking excludes itself from the
// overlap re-check, and the update is conditional on the version the
// caller read: a concurrent writer makes this fail with
// ErrVersionConflict instead of silently clobbering.
func (s *Store) UpdateBookingSchedule(ctx context.Context, b *model.Booking, expectedVersion int64) error {
	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	taken, err := s.windowTaken(ctx, tx, b.StaffID, b.StartTime, b.EndTime, b.ID)
	if err != nil {
		return err
	}
	if taken {
		return ErrSlotTaken
	}

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx, `
		UPDATE bookings
		SET staff_id = ?, start_time = ?, end_time = ?, status = ?,
		    duration_minutes = ?, updated_at = ?, version = version + 1
		WHERE id = ? AND version = ?`,
		b.StaffID, b.StartTime, b.EndTime, b.Status,
		b.DurationMinutes, now, b.ID, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("update booking: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrVersionConflict
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM booking_services WHERE booking_id = ?", b.ID); err != nil {
		return fmt.Errorf("unlink services: %w", err)
	}
	if err := linkServices(ctx, tx, b.ID, b.ServiceIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reschedule: %w", err)
	}
	b.UpdatedAt, b.Version = now, expectedVersion+1
	return nil
}

// SetBookingStatus moves a booking to a new lifecycle status.
func (s *Store) SetBookingStatus(ctx context.Context, id, status string) error {
	res, err := s.ExecContext(ctx,
		"UPDATE bookings SET status = ?, updated_at = ?, version = version + 1 WHERE id = ?",
		status, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpcomingBookings returns confirmed bookings starting within lookAhead
// from now whose reminder has not gone out yet.
func (s *Store) UpcomingBookings(ctx context.Context, now time.Time, lookAhead time.Duration) ([]model.Booking, error) {
	rows, err := s.QueryContext(ctx, `
		SELECT id, staff_id, customer_id, start_time, end_time, status,
		       duration_minutes, created_at, updated_at, version
		FROM bookings
		WHERE status = 'confirmed'
		AND reminder_sent = 0
		AND start_time >= ? AND start_time < ?
		ORDER BY start_time`,
		now, now.Add(lookAhead),
	)
	if err != nil {
		return nil, fmt.Errorf("select upcoming: %w", err)
	}
	defer rows.Close()

	var out []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// BookingsSince lists all bookings starting at or after the given
// instant, oldest first. Feeds the spreadsheet mirror.
func (s *Store) BookingsSince(ctx context.Context, from time.Time) ([]model.Booking, error) {
	rows, err := s.QueryContext(ctx, `
		SELECT id, staff_id, customer_id, start_time, end_time, status,
		       duration_minutes, created_at, updated_at, version
		FROM bookings
		WHERE start_time >= ?
		ORDER BY start_time`,
		from,
	)
	if err != nil {
		return nil, fmt.Errorf("select bookings since: %w", err)
	}
	defer rows.Close()

	var out []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// MarkReminderSent records that the reminder for a booking went out, so
// the loop never sends twice.
func (s *Store) MarkReminderSent(ctx context.Context, id string) error {
	res, err := s.ExecContext(ctx,
		"UPDATE bookings SET reminder_sent = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("mark reminder sent: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// windowTaken is the storage-side twin of the scheduling core's overlap
// predicate: a conflict exists when start < b.end+buffer && end > b.start.
// The buffer is applied as end_time > start-buffer so the comparison stays
// a plain column test.
func (s *Store) windowTaken(ctx context.Context, tx *sql.Tx, staffID string, start, end time.Time, excludeID string) (bool, error) {
	var count int
	err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM bookings
		WHERE staff_id = ?
		AND start_time < ? AND end_time > ?
		AND status NOT IN ('cancelled', 'completed')
		AND id != ?`,
		staffID, end, start.Add(-s.buffer), excludeID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("overlap check: %w", err)
	}
	return count > 0, nil
}

func linkServices(ctx context.Context, tx *sql.Tx, bookingID string, serviceIDs []string) error {
	for i, sid := range serviceIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO booking_services (booking_id, service_id, position) VALUES (?, ?, ?)",
			bookingID, sid, i,
		); err != nil {
			return fmt.Errorf("link service %s: %w", sid, err)
		}
	}
	return nil
}
