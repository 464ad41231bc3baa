package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Canonical textual timestamp encodings. Every event_time comparison in the
// store is lexicographic on TimeLayout, so all writers must go through these.
const (
	TimeLayout        = "2006-01-02 15:04"
	TimeLayoutSeconds = "2006-01-02 15:04:05"
	DateLayout        = "2006-01-02"
	ClockLayout       = "15:04"
)

type Event struct {
	bun.BaseModel `bun:"table:events,alias:e"`

	ID          int64  `bun:"id,pk,autoincrement"`
	GuildID     string `bun:"guild_id,notnull"`
	ChannelID   string `bun:"channel_id,notnull"`
	CreatorID   string `bun:"creator_id,notnull"`
	Title       string `bun:"title,notnull"`
	Description string `bun:"description,notnull"`
	EventTime   string `bun:"event_time,notnull"`
	MessageID   string `bun:"message_id"`
	Category    string `bun:"category,notnull,default:'general'"`
	IsCancelled bool   `bun:"is_cancelled,notnull,default:false"`
}

// Time parses the stored event_time back into a time.Time.
func (e *Event) Time() (time.Time, error) {
	return time.Parse(TimeLayout, e.EventTime)
}
