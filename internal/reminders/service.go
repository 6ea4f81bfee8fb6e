// Package reminders runs the periodic loop that notifies staff channels
// about upcoming confirmed bookings.
package reminders

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"salonbook/internal/model"
)

// BookingSource lists upcoming bookings and records delivered reminders.
type BookingSource interface {
	UpcomingBookings(ctx context.Context, now time.Time, lookAhead time.Duration) ([]model.Booking, error)
	MarkReminderSent(ctx context.Context, id string) error
}

// Notifier delivers one reminder.
type Notifier interface {
	BookingReminder(ctx context.Context, b model.Booking) error
}

// Config holds the loop parameters.
type Config struct {
	// CheckInterval is how often to check for upcoming bookings.
	CheckInterval time.Duration

	// Lead is how far before the start time a reminder goes out.
	Lead time.Duration

	// MaxConcurrent limits parallel notification sends.
	MaxConcurrent int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		CheckInterval: 15 * time.Minute,
		Lead:          24 * time.Hour,
		MaxConcurrent: 10,
	}
}

// Service is the reminder loop.
type Service struct {
	config   Config
	bookings BookingSource
	notifier Notifier
	logger   *zerolog.Logger

	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// NewService creates the loop; zero config fields fall back to defaults.
func NewService(config Config, bookings BookingSource, notifier Notifier, logger *zerolog.Logger) *Service {
	if config.CheckInterval <= 0 {
		config.CheckInterval = 15 * time.Minute
	}
	if config.Lead <= 0 {
		config.Lead = 24 * time.Hour
	}
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 10
	}
	return &Service{
		config:   config,
		bookings: bookings,
		notifier: notifier,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the reminder check loop.
func (s *Service) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.wg.Add(1)
	go s.loop()

	s.logger.Info().
		Dur("check_interval", s.config.CheckInterval).
		Dur("lead", s.config.Lead).
		Msg("reminder service started")
}

// Stop gracefully stops the loop.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()
	s.logger.Info().Msg("reminder service stopped")
}

func (s *Service) loop() {
	defer s.wg.Done()

	// Run immediately on start.
	s.CheckNow()

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.CheckNow()
		}
	}
}

// CheckNow runs one pass over upcoming bookings.
func (s *Service) CheckNow() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	now := time.Now().UTC()
	bookings, err := s.bookings.UpcomingBookings(ctx, now, s.config.Lead)
	if err != nil {
		s.logger.Error().Err(err).Msg("load upcoming bookings")
		return
	}
	if len(bookings) == 0 {
		return
	}

	sem := make(chan struct{}, s.config.MaxConcurrent)
	var wg sync.WaitGroup

	for _, b := range bookings {
		wg.Add(1)
		sem <- struct{}{}

		go func(b model.Booking) {
			defer wg.Done()
			defer func() { <-sem }()
			s.send(ctx, b)
		}(b)
	}
	wg.Wait()
}

func (s *Service) send(ctx context.Context, b model.Booking) {
	if err := s.notifier.BookingReminder(ctx, b); err != nil {
		s.logger.Error().Err(err).Str("booking_id", b.ID).Msg("send reminder")
		return
	}
	if err := s.bookings.MarkReminderSent(ctx, b.ID); err != nil {
		// Notification went out; failing to record it risks one duplicate,
		// not a lost reminder.
		s.logger.Error().Err(err).Str("booking_id", b.ID).Msg("mark reminder sent")
	}
	s.logger.Info().Str("booking_id", b.ID).Msg("reminder sent")
}
