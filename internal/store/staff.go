package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"salonbook/internal/model"
)

// CreateStaff inserts a staff member and their working-hour rules.
func (s *Store) CreateStaff(ctx context.Context, staff *model.StaffMember) error {
	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO staff (id, name) VALUES (?, ?)",
		staff.ID, staff.Name,
	); err != nil {
		return fmt.Errorf("insert staff: %w", err)
	}

	for i := range staff.Rules {
		if err := insertRule(ctx, tx, staff.ID, &staff.Rules[i]); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// AddWorkingHours attaches an extra rule to an existing staff member.
func (s *Store) AddWorkingHours(ctx context.Context, staffID string, rule *model.WorkingHoursRule) error {
	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := insertRule(ctx, tx, staffID, rule); err != nil {
		return err
	}
	return tx.Commit()
}

func insertRule(ctx context.Context, tx *sql.Tx, staffID string, rule *model.WorkingHoursRule) error {
	if rule.StartTime >= rule.EndTime {
		return fmt.Errorf("working hours %s-%s: start must precede end", rule.StartTime, rule.EndTime)
	}
	if len(rule.Days) == 0 {
		return fmt.Errorf("working hours %s-%s: empty weekday set", rule.StartTime, rule.EndTime)
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO working_hours (staff_id, start_time, end_time, days) VALUES (?, ?, ?, ?)",
		staffID, rule.StartTime, rule.EndTime, encodeDays(rule.Days),
	)
	if err != nil {
		return fmt.Errorf("insert working hours: %w", err)
	}
	rule.ID, _ = res.LastInsertId()
	rule.StaffID = staffID
	return nil
}

// GetStaff returns one staff member with rules; bookings are loaded
// separately via LoadBookings.
func (s *Store) GetStaff(ctx context.Context, id string) (*model.StaffMember, error) {
	var st model.StaffMember
	err := s.QueryRowContext(ctx,
		"SELECT id, name FROM staff WHERE id = ?", id,
	).Scan(&st.ID, &st.Name)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select staff: %w", err)
	}
	if err := s.loadRules(ctx, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// ListStaff returns all staff members with their rules.
func (s *Store) ListStaff(ctx context.Context) ([]model.StaffMember, error) {
	rows, err := s.QueryContext(ctx, "SELECT id, name FROM staff ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("select staff: %w", err)
	}
	defer rows.Close()

	var out []model.StaffMember
	for rows.Next() {
		var st model.StaffMember
		if err := rows.Scan(&st.ID, &st.Name); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if err := s.loadRules(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) loadRules(ctx context.Context, st *model.StaffMember) error {
	rows, err := s.QueryContext(ctx,
		"SELECT id, start_time, end_time, days FROM working_hours WHERE staff_id = ? ORDER BY id",
		st.ID,
	)
	if err != nil {
		return fmt.Errorf("select working hours: %w", err)
	}
	defer rows.Close()

	st.Rules = nil
	for rows.Next() {
		var r model.WorkingHoursRule
		var days string
		if err := rows.Scan(&r.ID, &r.StartTime, &r.EndTime, &days); err != nil {
			return err
		}
		r.StaffID = st.ID
		r.Days = decodeDays(days)
		st.Rules = append(st.Rules, r)
	}
	return rows.Err()
}

// LoadBookings fills each staff member's booking list for a bounded UTC
// window. Terminal bookings are excluded here: they never participate in
// conflict checks.
func (s *Store) LoadBookings(ctx context.Context, staffSet []model.StaffMember, from, to time.Time) error {
	for i := range staffSet {
		bookings, err := s.StaffBookings(ctx, staffSet[i].ID, from, to)
		if err != nil {
			return err
		}
		staffSet[i].Bookings = bookings
	}
	return nil
}

// StaffBookings returns the non-terminal bookings of one staff member
// overlapping the [from, to) UTC window, ordered by start time.
func (s *Store) StaffBookings(ctx context.Context, staffID string, from, to time.Time) ([]model.Booking, error) {
	rows, err := s.QueryContext(ctx, `
		SELECT id, staff_id, customer_id, start_time, end_time, status,
		       duration_minutes, created_at, updated_at, version
		FROM bookings
		WHERE staff_id = ?
		AND start_time < ? AND end_time > ?
		AND status NOT IN ('cancelled', 'completed')
		ORDER BY start_time`,
		staffID, to, from,
	)
	if err != nil {
		return nil, fmt.Errorf("select bookings: %w", err)
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

func encodeDays(days []time.Weekday) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(int(d))
	}
	return strings.Join(parts, ",")
}

func decodeDays(s string) []time.Weekday {
	if s == "" {
		return nil
	}
	var out []time.Weekday
	for _, p := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 || n > 6 {
			continue
		}
		out = append(out, time.Weekday(n))
	}
	return out
}
