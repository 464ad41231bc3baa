// Package reminders runs the recurring poll that dispatches event reminders.
package reminders

import (
	"context"
	"time"

	"log/slog"

	"github.com/jjjdlt/discordcalendarbot/calbot/database/models"
	"github.com/jjjdlt/discordcalendarbot/calbot/database/repositories"
	"github.com/robfig/cron/v3"
)

const tickTimeout = 30 * time.Second

// Notifier delivers a reminder to its event's channel. A failed delivery is
// best effort: the reminder is still marked sent and never retried.
type Notifier interface {
	SendReminder(ctx context.Context, reminder *repositories.DueReminder, attending []string) error
}

// Scheduler polls once per minute for due, unsent reminders and dispatches
// each one at most once. Runs do not overlap: the cron job runs the tick
// synchronously and the store serializes everything behind it.
type Scheduler struct {
	reminders repositories.ReminderRepository
	rsvps     repositories.RSVPRepository
	notifier  Notifier
	cron      *cron.Cron
	now       func() time.Time
}

func NewScheduler(
	reminderRepo repositories.ReminderRepository,
	rsvpRepo repositories.RSVPRepository,
	notifier Notifier,
) *Scheduler {
	return &Scheduler{
		reminders: reminderRepo,
		rsvps:     rsvpRepo,
		notifier:  notifier,
		cron:      cron.New(),
		now:       time.Now,
	}
}

// WithClock overrides the scheduler's clock for deterministic tests.
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("* * * * *", s.run); err != nil {
		return err
	}
	s.cron.Start()
	slog.Info("Reminder scheduler started",
		slog.String("type", "sys"),
		slog.String("schedule", "every minute"))
	return nil
}

// Stop halts the poll and waits for an in-flight tick to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), tickTimeout)
	defer cancel()
	if err := s.Tick(ctx); err != nil {
		slog.Error("Reminder tick failed",
			slog.String("type", "sys"),
			slog.Any("error", err))
	}
}

// Tick dispatches every due reminder exactly once. A notification failure
// (deleted channel and the like) is logged but the reminder is still marked
// sent, so it never fires twice. Each reminder is committed before the next
// one is processed.
func (s *Scheduler) Tick(ctx context.Context) error {
	due, err := s.reminders.DueUnsent(ctx, s.now())
	if err != nil {
		return err
	}

	for _, reminder := range due {
		attending, err := s.rsvps.ListByStatus(ctx, reminder.EventID, models.StatusAttending)
		if err != nil {
			slog.Error("Failed to gather attendees for reminder",
				slog.Int64("reminder_id", reminder.ReminderID),
				slog.Int64("event_id", reminder.EventID),
				slog.Any("error", err))
			attending = nil
		}

		if err := s.notifier.SendReminder(ctx, reminder, attending); err != nil {
			slog.Error("Failed to send reminder notification",
				slog.Int64("reminder_id", reminder.ReminderID),
				slog.Int64("event_id", reminder.EventID),
				slog.String("channel_id", reminder.ChannelID),
				slog.Any("error", err))
		}

		if err := s.reminders.MarkSent(ctx, reminder.ReminderID); err != nil {
			return err
		}

		slog.Info("Reminder dispatched",
			slog.String("type", "sys"),
			slog.Int64("reminder_id", reminder.ReminderID),
			slog.Int64("event_id", reminder.EventID),
			slog.Int("minutes_before", reminder.ReminderTime))
	}
	return nil
}
