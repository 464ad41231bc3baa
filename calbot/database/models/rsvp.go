package models

import "github.com/uptrace/bun"

type Status string

const (
	StatusAttending    Status = "attending"
	StatusMaybe        Status = "maybe"
	StatusNotAttending Status = "not_attending"
)

const (
	EmojiAttending    = "👍"
	EmojiMaybe        = "❓"
	EmojiNotAttending = "👎"
)

// StatusFromEmoji maps a reaction emoji onto an attendance status. Unrecognized
// emoji return ok=false and must be ignored by the caller.
func StatusFromEmoji(emoji string) (Status, bool) {
	switch emoji {
	case EmojiAttending:
		return StatusAttending, true
	case EmojiMaybe:
		return StatusMaybe, true
	case EmojiNotAttending:
		return StatusNotAttending, true
	default:
		return "", false
	}
}

func (s Status) Emoji() string {
	switch s {
	case StatusAttending:
		return EmojiAttending
	case StatusMaybe:
		return EmojiMaybe
	case StatusNotAttending:
		return EmojiNotAttending
	default:
		return ""
	}
}

// RSVP holds one user's attendance status for one event. The composite primary
// key enforces at most one row per (event, user) pair.
type RSVP struct {
	bun.BaseModel `bun:"table:rsvps,alias:rv"`

	EventID int64  `bun:"event_id,pk"`
	UserID  string `bun:"user_id,pk"`
	Status  Status `bun:"status,notnull"`
}
