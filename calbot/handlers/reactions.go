package handlers

import (
	"context"
	"log/slog"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/events"
	"github.com/jjjdlt/discordcalendarbot/calbot"
	"github.com/jjjdlt/discordcalendarbot/calbot/config"
)

// ReactionAddListener routes reaction-add gateway events: a pending schedule
// confirmation gets first claim on the reaction, everything else goes to the
// RSVP reconciler.
func ReactionAddListener(b *calbot.Bot) bot.EventListener {
	return bot.NewListenerFunc(func(e *events.GuildMessageReactionAdd) {
		emoji := reactionEmoji(e.Emoji.Name)
		if emoji == "" {
			return
		}

		if b.Confirmer.Resolve(e.MessageID.String(), e.UserID.String(), emoji) {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		if err := b.Reconciler.HandleAdd(ctx, e.MessageID.String(), e.UserID.String(), emoji); err != nil {
			slog.Error("Failed to record RSVP",
				slog.String("message_id", e.MessageID.String()),
				slog.String("user_id", e.UserID.String()),
				slog.Any("error", err))
		}
	})
}

// ReactionRemoveListener routes reaction-remove gateway events to the RSVP
// reconciler. The removed emoji is irrelevant: any removal on a tracked
// message clears the row.
func ReactionRemoveListener(b *calbot.Bot) bot.EventListener {
	return bot.NewListenerFunc(func(e *events.GuildMessageReactionRemove) {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		if err := b.Reconciler.HandleRemove(ctx, e.MessageID.String(), e.UserID.String()); err != nil {
			slog.Error("Failed to clear RSVP",
				slog.String("message_id", e.MessageID.String()),
				slog.String("user_id", e.UserID.String()),
				slog.Any("error", err))
		}
	})
}

func reactionEmoji(name *string) string {
	if name == nil {
		return ""
	}
	return *name
}
