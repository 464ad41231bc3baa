// Package confirm implements the reaction-based yes/no prompt used when a
// proposed event conflicts with existing ones.
package confirm

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
	"github.com/jjjdlt/discordcalendarbot/calbot/calendar"
	"github.com/jjjdlt/discordcalendarbot/calbot/config"
)

const (
	EmojiConfirm = "✅"
	EmojiDecline = "❌"

	// Timeout bounds the wait for a reaction. It is the only way a pending
	// confirmation ends without an answer.
	Timeout = 30 * time.Second
)

type pending struct {
	userID string
	result chan bool
}

// ReactionConfirmer posts a conflict warning, seeds it with ✅/❌, and waits up
// to Timeout for the requesting user to react. The gateway reaction listener
// feeds answers in through Resolve.
type ReactionConfirmer struct {
	mu      sync.Mutex
	client  bot.Client
	waiters map[string]*pending // message id -> waiter
}

func NewReactionConfirmer() *ReactionConfirmer {
	return &ReactionConfirmer{
		waiters: make(map[string]*pending),
	}
}

func (c *ReactionConfirmer) SetClient(client bot.Client) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.client = client
}

var _ calendar.Confirmer = (*ReactionConfirmer)(nil)

func (c *ReactionConfirmer) ConfirmSchedule(ctx context.Context, prompt calendar.ConfirmPrompt) (bool, error) {
	c.mu.Lock()
	client := c.client
	c.mu.Unlock()
	if client == nil {
		return false, fmt.Errorf("confirmer has no gateway client")
	}

	channelID, err := snowflake.Parse(prompt.ChannelID)
	if err != nil {
		return false, fmt.Errorf("bad channel id %q: %w", prompt.ChannelID, err)
	}

	var sb strings.Builder
	sb.WriteString("⚠️ There are existing events around this time:\n")
	for _, event := range prompt.Conflicts {
		sb.WriteString(fmt.Sprintf("- %s at %s\n", event.Title, event.EventTime))
	}
	sb.WriteString("\nWould you like to schedule anyway?")

	message, err := client.Rest().CreateMessage(channelID, discord.NewMessageCreateBuilder().
		SetEmbeds(discord.NewEmbedBuilder().
			SetDescription(sb.String()).
			SetColor(config.WarningColor).
			Build()).
		Build())
	if err != nil {
		return false, fmt.Errorf("failed to post confirmation prompt: %w", err)
	}

	// Register the waiter before seeding the reactions: the user can react the
	// moment the prompt is visible, and that reaction must find a waiter.
	waiter := &pending{userID: prompt.UserID, result: make(chan bool, 1)}
	messageID := message.ID.String()
	c.mu.Lock()
	c.waiters[messageID] = waiter
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.waiters, messageID)
		c.mu.Unlock()
	}()

	for _, emoji := range []string{EmojiConfirm, EmojiDecline} {
		if err := client.Rest().AddReaction(channelID, message.ID, emoji); err != nil {
			slog.Warn("Failed to seed confirmation reaction",
				slog.String("emoji", emoji),
				slog.Any("error", err))
		}
	}

	select {
	case ok := <-waiter.result:
		return ok, nil
	case <-time.After(Timeout):
		return false, calendar.ErrConfirmationTimeout
	case <-ctx.Done():
		return false, calendar.ErrConfirmationTimeout
	}
}

// Resolve answers a pending confirmation if the reaction belongs to one.
// Returns true when the reaction was consumed, so callers can stop routing it.
func (c *ReactionConfirmer) Resolve(messageID, userID, emoji string) bool {
	if emoji != EmojiConfirm && emoji != EmojiDecline {
		return false
	}

	c.mu.Lock()
	waiter, ok := c.waiters[messageID]
	c.mu.Unlock()
	if !ok || waiter.userID != userID {
		return false
	}

	select {
	case waiter.result <- (emoji == EmojiConfirm):
	default:
	}
	return true
}
