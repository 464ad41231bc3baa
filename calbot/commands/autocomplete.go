package commands

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"log/slog"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/sahilm/fuzzy"
)

const maxAutocompleteChoices = 25

// HandleCategoryAutocomplete suggests the categories already in use in this
// guild, fuzzy-ranked against whatever the user has typed so far.
func (h *EventHandler) HandleCategoryAutocomplete(e *handler.AutocompleteEvent) error {
	focused := e.Data.Focused()
	if focused.Name != "category" {
		return nil
	}

	searchTerm := ""
	if focused.Value != nil {
		var s string
		if err := json.Unmarshal(focused.Value, &s); err != nil {
			return e.AutocompleteResult([]discord.AutocompleteChoice{})
		}
		searchTerm = strings.TrimSpace(s)
	}

	guildID := e.GuildID()
	if guildID == nil {
		return e.AutocompleteResult([]discord.AutocompleteChoice{})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	categories, err := h.bot.EventRepository.Categories(ctx, guildID.String())
	if err != nil {
		slog.Error("Failed to load categories for autocomplete",
			slog.String("guild_id", guildID.String()),
			slog.Any("error", err))
		return e.AutocompleteResult([]discord.AutocompleteChoice{})
	}

	if searchTerm != "" {
		matches := fuzzy.Find(searchTerm, categories)
		ranked := make([]string, 0, len(matches))
		for _, match := range matches {
			ranked = append(ranked, match.Str)
		}
		categories = ranked
	}

	if len(categories) > maxAutocompleteChoices {
		categories = categories[:maxAutocompleteChoices]
	}

	choices := make([]discord.AutocompleteChoice, 0, len(categories))
	for _, category := range categories {
		choices = append(choices, discord.AutocompleteChoiceString{
			Name:  category,
			Value: category,
		})
	}
	return e.AutocompleteResult(choices)
}
