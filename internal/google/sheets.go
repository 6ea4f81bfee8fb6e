// Package google mirrors the booking ledger into a Google Sheets
// spreadsheet for staff who live in a spreadsheet view.
package google

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"salonbook/internal/model"
)

const ledgerSheet = "Bookings"

var ledgerHeader = []interface{}{
	"ID", "Staff", "Customer", "Start (UTC)", "End (UTC)",
	"Duration (min)", "Status", "Updated",
}

// SheetsService keeps one spreadsheet tab in sync with the booking store.
// rowCache maps booking id to its spreadsheet row so updates rewrite in
// place instead of appending duplicates.
type SheetsService struct {
	srv           *sheets.Service
	spreadsheetID string
	logger        *zerolog.Logger

	mu       sync.Mutex
	rowCache map[string]int
}

// NewSheetsService authenticates with a service-account credentials file.
func NewSheetsService(ctx context.Context, credentialsFile, spreadsheetID string, logger *zerolog.Logger) (*SheetsService, error) {
	srv, err := sheets.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("sheets client: %w", err)
	}
	return &SheetsService{
		srv:           srv,
		spreadsheetID: spreadsheetID,
		logger:        logger,
		rowCache:      make(map[string]int),
	}, nil
}

// SyncBookings pushes the current non-terminal bookings to the ledger
// tab. The full range is rewritten; the sheet is a mirror, not a source
// of truth.
func (s *SheetsService) SyncBookings(ctx context.Context, bookings []model.Booking) error {
	active := s.filterActiveBookings(bookings)

	values := [][]interface{}{ledgerHeader}
	for i, b := range active {
		values = append(values, bookingRowValues(&b))
		s.setCachedRow(b.ID, i+2)
	}

	rng := fmt.Sprintf("%s!A1", ledgerSheet)
	_, err := s.srv.Spreadsheets.Values.Update(s.spreadsheetID, rng, &sheets.ValueRange{
		Values: values,
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets update: %w", err)
	}

	s.logger.Info().Int("rows", len(active)).Msg("sheets ledger synced")
	return nil
}

// UpdateBooking rewrites one booking's row if it is cached, falling back
// to appending at the end of the tab. Cancelled bookings leave the mirror:
// an unmirrored one is skipped, a mirrored one gets its final status
// written and its cached position dropped so the next full sync removes it.
func (s *SheetsService) UpdateBooking(ctx context.Context, b *model.Booking) error {
	row, ok := s.getCachedRow(b.ID)
	if !ok {
		if b.Status == model.StatusCancelled {
			return nil
		}
		_, err := s.srv.Spreadsheets.Values.Append(s.spreadsheetID, ledgerSheet, &sheets.ValueRange{
			Values: [][]interface{}{bookingRowValues(b)},
		}).ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("sheets append: %w", err)
		}
		return nil
	}

	rng := fmt.Sprintf("%s!A%d", ledgerSheet, row)
	_, err := s.srv.Spreadsheets.Values.Update(s.spreadsheetID, rng, &sheets.ValueRange{
		Values: [][]interface{}{bookingRowValues(b)},
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets update row %d: %w", row, err)
	}
	if b.Status == model.StatusCancelled {
		s.deleteCacheRow(b.ID)
	}
	return nil
}

// filterActiveBookings drops terminal bookings from the mirror.
func (s *SheetsService) filterActiveBookings(bookings []model.Booking) []model.Booking {
	var active []model.Booking
	for _, b := range bookings {
		if b.Status == model.StatusCancelled {
			continue
		}
		active = append(active, b)
	}
	return active
}

func bookingRowValues(b *model.Booking) []interface{} {
	return []interface{}{
		b.ID,
		b.StaffID,
		b.CustomerID,
		b.StartTime.UTC().Format("2006-01-02 15:04"),
		b.EndTime.UTC().Format("2006-01-02 15:04"),
		b.DurationMinutes,
		b.Status,
		b.UpdatedAt.UTC().Format("2006-01-02 15:04:05"),
	}
}

func (s *SheetsService) getCachedRow(id string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rowCache[id]
	return row, ok
}

func (s *SheetsService) setCachedRow(id string, row int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rowCache[id] = row
}

func (s *SheetsService) deleteCacheRow(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rowCache, id)
}

// ClearCache drops all cached row positions; the next sync rebuilds them.
func (s *SheetsService) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rowCache = make(map[string]int)
}
