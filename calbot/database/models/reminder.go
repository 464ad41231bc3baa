package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Reminder is an offset-based notification tied to one event. ReminderTime is
// minutes before event_time; NotificationSent flips true exactly once.
type Reminder struct {
	bun.BaseModel `bun:"table:reminders,alias:r"`

	ID               int64 `bun:"id,pk,autoincrement"`
	EventID          int64 `bun:"event_id,notnull"`
	ReminderTime     int   `bun:"reminder_time,notnull"`
	NotificationSent bool  `bun:"notification_sent,notnull,default:false"`
}

// DueAt returns the moment this reminder becomes due for the given event time.
func (r *Reminder) DueAt(eventTime time.Time) time.Time {
	return eventTime.Add(-time.Duration(r.ReminderTime) * time.Minute)
}
