package commands

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/paginator"
	"github.com/jjjdlt/discordcalendarbot/calbot/calendar"
	"github.com/jjjdlt/discordcalendarbot/calbot/config"
	"github.com/jjjdlt/discordcalendarbot/calbot/utils"
)

func (h *EventHandler) HandleList(e *handler.CommandEvent) error {
	guildID := e.GuildID()
	if guildID == nil {
		return utils.EH.CreateEphemeralError(e, "This command can only be used in a server.")
	}

	data := e.SlashCommandInteractionData()
	category, _ := data.OptString("category")

	ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
	defer cancel()

	summaries, err := h.bot.Calendar.Upcoming(ctx, guildID.String(), category)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		return utils.EH.CreateInfoEmbed(e, "No upcoming events.")
	}

	return h.paginateSummaries(e, "📅 Upcoming Events", category, summaries)
}

func (h *EventHandler) HandleAgenda(e *handler.CommandEvent) error {
	guildID := e.GuildID()
	if guildID == nil {
		return utils.EH.CreateEphemeralError(e, "This command can only be used in a server.")
	}

	data := e.SlashCommandInteractionData()
	category, _ := data.OptString("category")
	days, ok := data.OptInt("days")
	if !ok {
		days = calendar.DefaultAgendaDays
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
	defer cancel()

	summaries, err := h.bot.Calendar.Agenda(ctx, guildID.String(), category, days)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		return utils.EH.CreateInfoEmbed(e, fmt.Sprintf("Nothing on the agenda for the next %d days.", days))
	}

	return h.paginateSummaries(e, fmt.Sprintf("🗓️ Agenda for the next %d days", days), category, summaries)
}

func (h *EventHandler) paginateSummaries(e *handler.CommandEvent, title, category string, summaries []calendar.EventSummary) error {
	totalPages := int(math.Ceil(float64(len(summaries)) / float64(config.EventsPerPage)))

	return h.bot.Paginator.Create(e.Respond, paginator.Pages{
		ID:      e.ID().String(),
		Creator: e.User().ID,
		PageFunc: func(page int, embed *discord.EmbedBuilder) {
			startIdx := page * config.EventsPerPage
			endIdx := min(startIdx+config.EventsPerPage, len(summaries))

			var description strings.Builder
			if category != "" {
				description.WriteString(fmt.Sprintf("🏷️ `%s`\n\n", category))
			}
			for _, summary := range summaries[startIdx:endIdx] {
				description.WriteString(formatSummary(summary))
			}

			embed.
				SetTitle(title).
				SetDescription(description.String()).
				SetColor(config.EmbedDefaultColor).
				SetFooter(fmt.Sprintf("Page %d/%d • Total events: %d", page+1, totalPages, len(summaries)), "")
		},
		Pages:      totalPages,
		ExpireMode: paginator.ExpireModeAfterLastUsage,
	}, false)
}

func formatSummary(summary calendar.EventSummary) string {
	event := summary.Event
	attending := "nobody attending yet"
	if summary.Attending == 1 {
		attending = "1 attending"
	} else if summary.Attending > 1 {
		attending = fmt.Sprintf("%d attending", summary.Attending)
	}
	return fmt.Sprintf("**%s** `#%d`\n%s • %s • 👍 %s\n%s\n\n",
		event.Title,
		event.ID,
		event.EventTime,
		event.Category,
		attending,
		event.Description,
	)
}
