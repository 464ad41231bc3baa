// Package rsvp reconciles reaction add/remove events on announcement messages
// into attendance rows.
package rsvp

import (
	"context"
	"errors"

	"log/slog"

	lru "github.com/hashicorp/golang-lru"
	"github.com/jjjdlt/discordcalendarbot/calbot/database/models"
	"github.com/jjjdlt/discordcalendarbot/calbot/database/repositories"
)

const messageCacheSize = 1024

type Reconciler struct {
	events repositories.EventRepository
	rsvps  repositories.RSVPRepository
	botID  string

	// message_id -> event id, populated on first resolution. Unknown messages
	// are not cached; they simply fall through to the store each time.
	cache *lru.Cache
}

func NewReconciler(events repositories.EventRepository, rsvps repositories.RSVPRepository, botID string) *Reconciler {
	cache, _ := lru.New(messageCacheSize)
	return &Reconciler{
		events: events,
		rsvps:  rsvps,
		botID:  botID,
		cache:  cache,
	}
}

// HandleAdd upserts the attendance status mapped from the emoji. Reactions from
// the bot itself, unrecognized emoji, and untracked messages are all ignored.
// The last added reaction always wins, whatever the user reacted with before.
func (r *Reconciler) HandleAdd(ctx context.Context, messageID, userID, emoji string) error {
	if userID == r.botID {
		return nil
	}
	status, ok := models.StatusFromEmoji(emoji)
	if !ok {
		return nil
	}
	eventID, ok, err := r.resolveMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if err := r.rsvps.Upsert(ctx, eventID, userID, status); err != nil {
		return err
	}
	slog.Debug("RSVP recorded",
		slog.Int64("event_id", eventID),
		slog.String("user_id", userID),
		slog.String("status", string(status)))
	return nil
}

// HandleRemove deletes the user's RSVP row no matter which emoji was removed.
// Removing one of several held status reactions therefore clears the row
// entirely rather than falling back to another held reaction.
func (r *Reconciler) HandleRemove(ctx context.Context, messageID, userID string) error {
	eventID, ok, err := r.resolveMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return r.rsvps.Delete(ctx, eventID, userID)
}

func (r *Reconciler) resolveMessage(ctx context.Context, messageID string) (int64, bool, error) {
	if cached, ok := r.cache.Get(messageID); ok {
		return cached.(int64), true, nil
	}
	event, err := r.events.GetByMessageID(ctx, messageID)
	if errors.Is(err, repositories.ErrEventNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	r.cache.Add(messageID, event.ID)
	return event.ID, true, nil
}
