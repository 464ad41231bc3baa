package commands

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/jjjdlt/discordcalendarbot/calbot/config"
)

func (h *EventHandler) HandleHelp(e *handler.CommandEvent) error {
	embed := discord.NewEmbedBuilder().
		SetTitle("Calendar Bot Commands").
		SetDescription("Here are all available commands:").
		SetColor(config.InfoColor).
		AddField("/event create",
			"Create a new event. Options:\n"+
				"`description` - what the event is about\n"+
				"`category` - group similar events (default: general)\n"+
				"`remind` - minutes before the event, e.g. 15,30,60", false).
		AddField("/event list",
			"Show all upcoming events, optionally filtered by category", false).
		AddField("/event agenda",
			"Show events in the next days (default 7)", false).
		AddField("/event attendees",
			"Show who's attending an event", false).
		AddField("/event cancel",
			"Cancel an event (only the creator can do this)", false).
		AddField("RSVP System",
			"React to event messages with:\n👍 Attending\n❓ Maybe\n👎 Not attending", false).
		Build()

	return e.CreateMessage(discord.MessageCreate{Embeds: []discord.Embed{embed}})
}
