package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"log/slog"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/jjjdlt/discordcalendarbot/calbot/calendar"
	"github.com/jjjdlt/discordcalendarbot/calbot/config"
	"github.com/jjjdlt/discordcalendarbot/calbot/database/models"
	"github.com/jjjdlt/discordcalendarbot/calbot/utils"
)

func (h *EventHandler) HandleCreate(e *handler.CommandEvent) error {
	guildID := e.GuildID()
	if guildID == nil {
		return utils.EH.CreateEphemeralError(e, "Events can only be created in a server.")
	}

	data := e.SlashCommandInteractionData()
	title := data.String("title")
	date := data.String("date")
	clock := data.String("time")
	description, _ := data.OptString("description")
	category, _ := data.OptString("category")
	remindSpec, _ := data.OptString("remind")

	// Validate before deferring so format errors answer instantly.
	if _, err := calendar.ParseEventTime(date, clock); err != nil {
		return utils.EH.CreateErrorEmbed(e, "Invalid date/time format. Please use: YYYY-MM-DD HH:MM")
	}

	offsets, offsetsOK := calendar.ParseReminderOffsets(remindSpec)
	warning := ""
	if !offsetsOK {
		warning = "Invalid reminder format. Using default 30-minute reminder."
	}

	// The conflict confirmation can hold this command for up to 30 seconds,
	// far past the interaction response deadline.
	if err := e.DeferCreateMessage(false); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.CommandExecutionTimeout)
	defer cancel()

	event, err := h.bot.Calendar.Create(ctx, calendar.CreateRequest{
		GuildID:     guildID.String(),
		ChannelID:   e.ChannelID().String(),
		CreatorID:   e.User().ID.String(),
		Title:       title,
		Date:        date,
		Time:        clock,
		Description: description,
		Category:    category,
		Reminders:   offsets,
	}, h.bot.Confirmer)
	if err != nil {
		return h.respondCreateError(e, err)
	}

	announcement := discord.NewEmbedBuilder().
		SetTitle("Event Created").
		SetColor(config.SuccessColor).
		AddField("Title", event.Title, true).
		AddField("Category", event.Category, true).
		AddField("Date & Time", event.EventTime, true).
		AddField("Description", event.Description, false).
		AddField("Reminders", formatOffsets(offsets), false).
		SetFooter(fmt.Sprintf("Event ID: %d\nReact with 👍 to attend, ❓ for maybe, 👎 for not attending", event.ID), "").
		Build()

	update := discord.MessageUpdate{Embeds: &[]discord.Embed{announcement}}
	if warning != "" {
		update.Content = &warning
	}

	message, err := e.UpdateInteractionResponse(update)
	if err != nil {
		return err
	}

	if err := h.bot.Calendar.AttachAnnouncement(ctx, event.ID, message.ID.String()); err != nil {
		return err
	}

	for _, status := range []models.Status{models.StatusAttending, models.StatusMaybe, models.StatusNotAttending} {
		if err := h.bot.Client.Rest().AddReaction(message.ChannelID, message.ID, status.Emoji()); err != nil {
			slog.Warn("Failed to seed RSVP reaction",
				slog.Int64("event_id", event.ID),
				slog.String("emoji", status.Emoji()),
				slog.Any("error", err))
		}
	}
	return nil
}

func (h *EventHandler) respondCreateError(e *handler.CommandEvent, err error) error {
	var description string
	color := config.ErrorColor
	switch {
	case errors.Is(err, calendar.ErrConfirmationDeclined):
		description = "Event creation cancelled."
		color = config.InfoColor
	case errors.Is(err, calendar.ErrConfirmationTimeout):
		description = "No confirmation received within 30 seconds. Event creation cancelled."
		color = config.InfoColor
	case errors.Is(err, calendar.ErrInvalidFormat):
		description = "Invalid date/time format. Please use: YYYY-MM-DD HH:MM"
	default:
		description = "Failed to create the event. Please try again later."
	}

	_, uerr := e.UpdateInteractionResponse(discord.MessageUpdate{
		Embeds: &[]discord.Embed{{Description: description, Color: color}},
	})
	if uerr != nil {
		return uerr
	}
	if errors.Is(err, calendar.ErrConfirmationDeclined) || errors.Is(err, calendar.ErrConfirmationTimeout) {
		return nil
	}
	return err
}

func formatOffsets(offsets []int) string {
	parts := make([]string, 0, len(offsets))
	for _, offset := range offsets {
		parts = append(parts, fmt.Sprintf("%d minutes", offset))
	}
	return strings.Join(parts, ", ") + " before event"
}
