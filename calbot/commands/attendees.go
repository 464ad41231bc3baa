package commands

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/snowflake/v2"
	"github.com/jjjdlt/discordcalendarbot/calbot/calendar"
	"github.com/jjjdlt/discordcalendarbot/calbot/config"
	"github.com/jjjdlt/discordcalendarbot/calbot/utils"
	"golang.org/x/sync/errgroup"
)

func (h *EventHandler) HandleAttendees(e *handler.CommandEvent) error {
	guildID := e.GuildID()
	if guildID == nil {
		return utils.EH.CreateEphemeralError(e, "This command can only be used in a server.")
	}

	data := e.SlashCommandInteractionData()
	eventID := int64(data.Int("event_id"))

	// Member resolution runs REST lookups per attendee, well past the initial
	// interaction response deadline, so answer with a deferral first.
	if err := e.DeferCreateMessage(false); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
	defer cancel()

	report, err := h.bot.Calendar.Attendees(ctx, guildID.String(), eventID)
	if err != nil {
		if errors.Is(err, calendar.ErrNotFound) {
			return h.updateWithError(e, "Event not found!")
		}
		return err
	}

	embed := discord.NewEmbedBuilder().
		SetTitle(fmt.Sprintf("Attendees for event #%d", eventID)).
		SetColor(config.InfoColor).
		AddField("👍 Attending", h.memberField(ctx, *guildID, report.Attending), false).
		AddField("❓ Maybe", h.memberField(ctx, *guildID, report.Maybe), false).
		AddField("👎 Not attending", h.memberField(ctx, *guildID, report.NotAttending), false).
		Build()

	_, err = e.UpdateInteractionResponse(discord.MessageUpdate{Embeds: &[]discord.Embed{embed}})
	return err
}

func (h *EventHandler) updateWithError(e *handler.CommandEvent, message string) error {
	_, err := e.UpdateInteractionResponse(discord.MessageUpdate{
		Embeds: &[]discord.Embed{{Description: message, Color: config.ErrorColor}},
	})
	return err
}

// memberField renders the user ids that still resolve to guild members as a
// mention list. Users who left the guild are dropped from display only; their
// RSVP rows stay in the store.
func (h *EventHandler) memberField(ctx context.Context, guildID snowflake.ID, userIDs []string) string {
	resolved := h.resolveMembers(ctx, guildID, userIDs)
	if len(resolved) == 0 {
		return "None"
	}
	var field string
	for i, id := range resolved {
		if i > 0 {
			field += " "
		}
		field += fmt.Sprintf("<@%s>", id)
	}
	return field
}

func (h *EventHandler) resolveMembers(ctx context.Context, guildID snowflake.ID, userIDs []string) []string {
	lookupCtx, cancel := context.WithTimeout(ctx, config.MemberLookupTimeout)
	defer cancel()

	var mu sync.Mutex
	resolved := make(map[string]bool, len(userIDs))

	g, _ := errgroup.WithContext(lookupCtx)
	g.SetLimit(config.MemberLookupConcurrency)
	for _, userID := range userIDs {
		userID := userID
		g.Go(func() error {
			id, err := snowflake.Parse(userID)
			if err != nil {
				return nil
			}
			if _, err := h.bot.Client.Rest().GetMember(guildID, id); err != nil {
				// Member lookup failures drop the user from display only.
				return nil
			}
			mu.Lock()
			resolved[userID] = true
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	kept := make([]string, 0, len(resolved))
	for _, userID := range userIDs {
		if resolved[userID] {
			kept = append(kept, userID)
		}
	}
	return kept
}
