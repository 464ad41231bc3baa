package commands

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/jjjdlt/discordcalendarbot/calbot"
	"github.com/jjjdlt/discordcalendarbot/calbot/handlers"
)

var EventCommand = discord.SlashCommandCreate{
	Name:        "event",
	Description: "📅 Schedule and manage server events",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "create",
			Description: "Create a new event",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "title",
					Description: "Event title",
					Required:    true,
				},
				discord.ApplicationCommandOptionString{
					Name:        "date",
					Description: "Event date (YYYY-MM-DD)",
					Required:    true,
				},
				discord.ApplicationCommandOptionString{
					Name:        "time",
					Description: "Event time (HH:MM)",
					Required:    true,
				},
				discord.ApplicationCommandOptionString{
					Name:        "description",
					Description: "What the event is about",
				},
				discord.ApplicationCommandOptionString{
					Name:         "category",
					Description:  "Event category (default: general)",
					Autocomplete: true,
				},
				discord.ApplicationCommandOptionString{
					Name:        "remind",
					Description: "Reminder offsets in minutes before the event, e.g. 15,30,60",
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "cancel",
			Description: "Cancel an event you created",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionInt{
					Name:        "event_id",
					Description: "The ID shown on the event announcement",
					Required:    true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "list",
			Description: "Show all upcoming events",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:         "category",
					Description:  "Only show events in this category",
					Autocomplete: true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "agenda",
			Description: "Show events coming up in the next days",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionInt{
					Name:        "days",
					Description: "How many days ahead to look (default 7)",
					MinValue:    intPtr(1),
					MaxValue:    intPtr(30),
				},
				discord.ApplicationCommandOptionString{
					Name:         "category",
					Description:  "Only show events in this category",
					Autocomplete: true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "attendees",
			Description: "Show who's attending an event",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionInt{
					Name:        "event_id",
					Description: "The ID shown on the event announcement",
					Required:    true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "help",
			Description: "Show help for the calendar commands",
		},
	},
}

type EventHandler struct {
	bot *calbot.Bot
}

func NewEventHandler(b *calbot.Bot) *EventHandler {
	return &EventHandler{bot: b}
}

func (h *EventHandler) Register(r handler.Router) {
	r.Route("/event", func(r handler.Router) {
		r.Command("/create", handlers.WrapWithLogging("event-create", h.HandleCreate))
		r.Command("/cancel", handlers.WrapWithLogging("event-cancel", h.HandleCancel))
		r.Command("/list", handlers.WrapWithLogging("event-list", h.HandleList))
		r.Command("/agenda", handlers.WrapWithLogging("event-agenda", h.HandleAgenda))
		r.Command("/attendees", handlers.WrapWithLogging("event-attendees", h.HandleAttendees))
		r.Command("/help", handlers.WrapWithLogging("event-help", h.HandleHelp))

		r.Autocomplete("/create", h.HandleCategoryAutocomplete)
		r.Autocomplete("/list", h.HandleCategoryAutocomplete)
		r.Autocomplete("/agenda", h.HandleCategoryAutocomplete)
	})
}

func intPtr(i int) *int {
	return &i
}
