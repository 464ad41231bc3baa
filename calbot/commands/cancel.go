package commands

import (
	"context"
	"errors"
	"fmt"

	"log/slog"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/snowflake/v2"
	"github.com/jjjdlt/discordcalendarbot/calbot/calendar"
	"github.com/jjjdlt/discordcalendarbot/calbot/config"
	"github.com/jjjdlt/discordcalendarbot/calbot/reminders"
	"github.com/jjjdlt/discordcalendarbot/calbot/utils"
)

func (h *EventHandler) HandleCancel(e *handler.CommandEvent) error {
	data := e.SlashCommandInteractionData()
	eventID := int64(data.Int("event_id"))

	ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
	defer cancel()

	result, err := h.bot.Calendar.Cancel(ctx, eventID, e.User().ID.String())
	if err != nil {
		switch {
		case errors.Is(err, calendar.ErrNotFound):
			return utils.EH.CreateErrorEmbed(e, "Event not found!")
		case errors.Is(err, calendar.ErrForbidden):
			return utils.EH.CreateErrorEmbed(e, "Only the event creator can cancel this event!")
		default:
			return err
		}
	}

	h.notifyCancellation(result)

	return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf("Event %d has been cancelled.", eventID))
}

// notifyCancellation posts the cancellation notice to the event's channel,
// pinging everyone who was attending. Best effort: a missing channel only
// logs, the cancellation itself already happened.
func (h *EventHandler) notifyCancellation(result *calendar.CancelResult) {
	channelID, err := snowflake.Parse(result.Event.ChannelID)
	if err != nil {
		slog.Warn("Cancelled event has a bad channel id",
			slog.Int64("event_id", result.Event.ID),
			slog.String("channel_id", result.Event.ChannelID))
		return
	}

	embed := discord.NewEmbedBuilder().
		SetTitle("🚫 Event Cancelled").
		SetDescription(fmt.Sprintf("The event '%s' has been cancelled.", result.Event.Title)).
		SetColor(config.ErrorColor).
		Build()

	message := discord.NewMessageCreateBuilder().SetEmbeds(embed)
	if mentions := reminders.MentionList(result.Attending); mentions != "" {
		message.SetContent(fmt.Sprintf("Attention %s, event cancelled:", mentions))
	}

	if _, err := h.bot.Client.Rest().CreateMessage(channelID, message.Build()); err != nil {
		slog.Warn("Failed to post cancellation notice",
			slog.Int64("event_id", result.Event.ID),
			slog.String("channel_id", result.Event.ChannelID),
			slog.Any("error", err))
	}
}
