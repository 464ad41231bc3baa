package calbot

import (
	"context"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/cache"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/paginator"
	"github.com/jjjdlt/discordcalendarbot/calbot/calendar"
	"github.com/jjjdlt/discordcalendarbot/calbot/confirm"
	"github.com/jjjdlt/discordcalendarbot/calbot/database"
	"github.com/jjjdlt/discordcalendarbot/calbot/database/repositories"
	"github.com/jjjdlt/discordcalendarbot/calbot/reminders"
	"github.com/jjjdlt/discordcalendarbot/calbot/rsvp"
)

func New(cfg Config, version string, commit string) *Bot {
	return &Bot{
		Cfg:       cfg,
		Paginator: paginator.New(),
		Version:   version,
		Commit:    commit,
	}
}

type Bot struct {
	Cfg       Config
	Client    bot.Client
	Paginator *paginator.Manager
	Version   string
	Commit    string

	DB                 *database.DB
	EventRepository    repositories.EventRepository
	ReminderRepository repositories.ReminderRepository
	RSVPRepository     repositories.RSVPRepository

	Calendar   *calendar.Manager
	Reconciler *rsvp.Reconciler
	Scheduler  *reminders.Scheduler
	Notifier   *reminders.DiscordNotifier
	Confirmer  *confirm.ReactionConfirmer
}

func (b *Bot) SetupBot(listeners ...bot.EventListener) error {
	client, err := disgo.New(b.Cfg.Bot.Token,
		bot.WithGatewayConfigOpts(gateway.WithIntents(
			gateway.IntentGuilds,
			gateway.IntentGuildMessages,
			gateway.IntentGuildMessageReactions,
		)),
		// Listeners must run off the dispatch goroutine: a create command can
		// hold its listener for up to 30s awaiting the conflict confirmation,
		// and the confirming reaction arrives as another gateway event. The
		// single-connection store keeps writes serialized regardless.
		bot.WithEventManagerConfigOpts(bot.WithAsyncEventsEnabled()),
		bot.WithCacheConfigOpts(cache.WithCaches(cache.FlagGuilds)),
		bot.WithEventListeners(b.Paginator),
		bot.WithEventListeners(listeners...),
	)
	if err != nil {
		return err
	}

	b.Client = client
	return nil
}

func (b *Bot) OnReady(_ *events.Ready) {
	slog.Info("Calendar bot is now ready",
		slog.String("version", b.Version),
		slog.String("commit", b.Commit))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := b.Client.SetPresence(ctx,
		gateway.WithWatchingActivity("the calendar"),
		gateway.WithOnlineStatus(discord.OnlineStatusOnline)); err != nil {
		slog.Error("Failed to set presence", slog.Any("error", err))
	}
}
