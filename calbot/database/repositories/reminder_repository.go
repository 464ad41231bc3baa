package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jjjdlt/discordcalendarbot/calbot/database/models"
	"github.com/uptrace/bun"
)

// DueReminder is one pending reminder joined with its owning event, ready for
// dispatch.
type DueReminder struct {
	ReminderID   int64  `bun:"reminder_id"`
	EventID      int64  `bun:"event_id"`
	Title        string `bun:"title"`
	ChannelID    string `bun:"channel_id"`
	EventTime    string `bun:"event_time"`
	ReminderTime int    `bun:"reminder_time"`
}

type ReminderRepository interface {
	CreateAll(ctx context.Context, eventID int64, offsets []int) error
	// DueUnsent returns every unsent reminder whose owning event is not
	// cancelled and whose due moment (event_time minus offset) is at or before
	// now. The <= comparison means reminders missed during downtime fire on
	// the next tick instead of being skipped.
	DueUnsent(ctx context.Context, now time.Time) ([]*DueReminder, error)
	MarkSent(ctx context.Context, reminderID int64) error
}

type reminderRepository struct {
	db *bun.DB
}

func NewReminderRepository(db *bun.DB) ReminderRepository {
	return &reminderRepository{db: db}
}

func (r *reminderRepository) CreateAll(ctx context.Context, eventID int64, offsets []int) error {
	if len(offsets) == 0 {
		return nil
	}
	reminders := make([]*models.Reminder, 0, len(offsets))
	for _, offset := range offsets {
		reminders = append(reminders, &models.Reminder{
			EventID:      eventID,
			ReminderTime: offset,
		})
	}
	if _, err := r.db.NewInsert().Model(&reminders).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert reminders for event %d: %w", eventID, err)
	}
	return nil
}

func (r *reminderRepository) DueUnsent(ctx context.Context, now time.Time) ([]*DueReminder, error) {
	var due []*DueReminder
	err := r.db.NewSelect().
		ColumnExpr("r.id AS reminder_id").
		ColumnExpr("e.id AS event_id").
		ColumnExpr("e.title AS title").
		ColumnExpr("e.channel_id AS channel_id").
		ColumnExpr("e.event_time AS event_time").
		ColumnExpr("r.reminder_time AS reminder_time").
		TableExpr("reminders AS r").
		Join("JOIN events AS e ON e.id = r.event_id").
		Where("e.is_cancelled = ?", false).
		Where("r.notification_sent = ?", false).
		Where("datetime(e.event_time, '-' || r.reminder_time || ' minutes') <= ?", now.Format(models.TimeLayoutSeconds)).
		OrderExpr("e.event_time ASC").
		Scan(ctx, &due)
	if err != nil {
		return nil, fmt.Errorf("failed to query due reminders: %w", err)
	}
	return due, nil
}

func (r *reminderRepository) MarkSent(ctx context.Context, reminderID int64) error {
	_, err := r.db.NewUpdate().
		Model((*models.Reminder)(nil)).
		Set("notification_sent = ?", true).
		Where("id = ?", reminderID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark reminder %d sent: %w", reminderID, err)
	}
	return nil
}
