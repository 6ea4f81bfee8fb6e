// Package store is the sqlite-backed persistence collaborator: staff
// records with their working-hour rules, the service catalog, and the
// booking store with its conditional-write guarantee.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrSlotTaken is returned when the pre-write conflict re-check finds
	// the requested window already occupied.
	ErrSlotTaken = errors.New("slot already booked")

	// ErrVersionConflict is returned when a conditional update loses the
	// optimistic-lock race.
	ErrVersionConflict = errors.New("booking modified concurrently")
)

// Store wraps sql.DB over sqlite. bufferMinutes is the relief time folded
// into the overlap re-check so the storage-level guard matches the
// scheduling core's predicate.
type Store struct {
	*sql.DB
	buffer time.Duration
}

// New opens the database at path and bootstraps the schema.
func New(path string, bufferMinutes int) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := createTables(db); err != nil {
		return nil, err
	}
	return &Store{DB: db, buffer: time.Duration(bufferMinutes) * time.Minute}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS staff (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS working_hours (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			staff_id TEXT NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			days TEXT NOT NULL,
			FOREIGN KEY (staff_id) REFERENCES staff(id)
		)`,

		`CREATE TABLE IF NOT EXISTS services (
			id TEXT PRIMARY KEY,
			catalogue_id TEXT,
			name TEXT NOT NULL,
			duration TEXT NOT NULL,
			price REAL NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS bookings (
			id TEXT PRIMARY KEY,
			staff_id TEXT NOT NULL,
			customer_id TEXT NOT NULL,
			start_time DATETIME NOT NULL,
			end_time DATETIME NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			duration_minutes INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			version INTEGER NOT NULL DEFAULT 1,
			reminder_sent INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY (staff_id) REFERENCES staff(id)
		)`,

		`CREATE TABLE IF NOT EXISTS booking_services (
			booking_id TEXT NOT NULL,
			service_id TEXT NOT NULL,
			position INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (booking_id, service_id),
			FOREIGN KEY (booking_id) REFERENCES bookings(id),
			FOREIGN KEY (service_id) REFERENCES services(id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_working_hours_staff ON working_hours(staff_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_staff_times ON bookings(staff_id, start_time, end_time)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings(status)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("exec migration %s: %w", trimSQL(q), err)
		}
	}
	return nil
}

func trimSQL(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 60 {
		return s[:60] + "..."
	}
	return s
}
