// Package notify delivers booking notifications to staff chat channels.
package notify

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"salonbook/internal/model"
)

// Sender pushes booking events to configured Telegram chats. Sends are
// rate limited so a burst of reminders cannot trip the Bot API flood
// control.
type Sender struct {
	bot     *tgbotapi.BotAPI
	chatIDs []int64
	limiter *rate.Limiter
	loc     *time.Location
	logger  *zerolog.Logger
}

// New creates a sender. perSecond and burst bound the outgoing message
// rate; zero values fall back to the Bot API guideline of 20/s.
func New(token string, chatIDs []int64, perSecond, burst int, loc *time.Location, logger *zerolog.Logger) (*Sender, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram init: %w", err)
	}
	if perSecond <= 0 {
		perSecond = 20
	}
	if burst <= 0 {
		burst = perSecond
	}
	return &Sender{
		bot:     bot,
		chatIDs: chatIDs,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
		loc:     loc,
		logger:  logger,
	}, nil
}

// BookingReminder notifies staff channels about an upcoming booking.
func (s *Sender) BookingReminder(ctx context.Context, b model.Booking) error {
	text := fmt.Sprintf(
		"Upcoming appointment\nStaff: %s\nStart: %s\nDuration: %d min",
		b.StaffID,
		b.StartTime.In(s.loc).Format("Mon 02 Jan 15:04"),
		b.DurationMinutes,
	)
	return s.broadcast(ctx, text)
}

// BookingCommitted notifies staff channels about a new reservation.
func (s *Sender) BookingCommitted(ctx context.Context, b model.Booking) error {
	text := fmt.Sprintf(
		"New booking %s\nStaff: %s\nStart: %s",
		b.ID,
		b.StaffID,
		b.StartTime.In(s.loc).Format("Mon 02 Jan 15:04"),
	)
	return s.broadcast(ctx, text)
}

func (s *Sender) broadcast(ctx context.Context, text string) error {
	for _, chatID := range s.chatIDs {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
		msg := tgbotapi.NewMessage(chatID, text)
		if _, err := s.bot.Send(msg); err != nil {
			s.logger.Error().Err(err).Int64("chat_id", chatID).Msg("telegram send failed")
			return fmt.Errorf("telegram send: %w", err)
		}
	}
	return nil
}
