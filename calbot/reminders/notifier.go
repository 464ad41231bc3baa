package reminders

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
	"github.com/jjjdlt/discordcalendarbot/calbot/config"
	"github.com/jjjdlt/discordcalendarbot/calbot/database/repositories"
)

// DiscordNotifier posts reminder embeds to the event's channel, pinging
// everyone currently attending.
type DiscordNotifier struct {
	mu     sync.RWMutex
	client bot.Client
}

func NewDiscordNotifier() *DiscordNotifier {
	return &DiscordNotifier{}
}

// SetClient attaches the gateway client once it exists. The scheduler is wired
// before the gateway opens, so this runs late in startup.
func (n *DiscordNotifier) SetClient(client bot.Client) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.client = client
}

func (n *DiscordNotifier) SendReminder(ctx context.Context, reminder *repositories.DueReminder, attending []string) error {
	n.mu.RLock()
	client := n.client
	n.mu.RUnlock()
	if client == nil {
		return fmt.Errorf("notifier has no gateway client")
	}

	channelID, err := snowflake.Parse(reminder.ChannelID)
	if err != nil {
		return fmt.Errorf("bad channel id %q: %w", reminder.ChannelID, err)
	}

	embed := discord.NewEmbedBuilder().
		SetTitle(fmt.Sprintf("⏰ Reminder: %s", reminder.Title)).
		SetDescription(fmt.Sprintf("Event starting in %d minutes!", reminder.ReminderTime)).
		SetColor(config.WarningColor).
		Build()

	message := discord.NewMessageCreateBuilder().SetEmbeds(embed)
	if mentions := MentionList(attending); mentions != "" {
		message.SetContent("🔔 " + mentions)
	}

	if _, err := client.Rest().CreateMessage(channelID, message.Build()); err != nil {
		return fmt.Errorf("failed to post reminder to channel %s: %w", reminder.ChannelID, err)
	}
	return nil
}

// MentionList renders user ids as a space-joined mention string.
func MentionList(userIDs []string) string {
	if len(userIDs) == 0 {
		return ""
	}
	mentions := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		mentions = append(mentions, fmt.Sprintf("<@%s>", id))
	}
	return strings.Join(mentions, " ")
}
