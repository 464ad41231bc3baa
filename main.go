package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/handler"
	"github.com/jjjdlt/discordcalendarbot/calbot"
	"github.com/jjjdlt/discordcalendarbot/calbot/calendar"
	"github.com/jjjdlt/discordcalendarbot/calbot/commands"
	"github.com/jjjdlt/discordcalendarbot/calbot/confirm"
	"github.com/jjjdlt/discordcalendarbot/calbot/database"
	"github.com/jjjdlt/discordcalendarbot/calbot/database/repositories"
	"github.com/jjjdlt/discordcalendarbot/calbot/handlers"
	"github.com/jjjdlt/discordcalendarbot/calbot/logger"
	"github.com/jjjdlt/discordcalendarbot/calbot/reminders"
	"github.com/jjjdlt/discordcalendarbot/calbot/rsvp"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	customHandler := logger.NewHandler()
	slog.SetDefault(slog.New(customHandler))

	slog.Info("Starting calendar bot",
		slog.String("version", version),
		slog.String("commit", commit))

	shouldSyncCommands := flag.Bool("sync-commands", false, "Whether to sync commands to discord")
	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := calbot.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}
	slog.Info("Configuration loaded successfully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dbStartTime := time.Now()
	db, err := database.New(ctx, cfg.DB)
	if err != nil {
		slog.Error("Database open failed",
			slog.String("error", err.Error()),
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}
	defer db.Close()

	// Fresh schema on every start: prior events, reminders and RSVPs are
	// intentionally discarded.
	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize database schema",
			slog.String("error", err.Error()))
		os.Exit(-1)
	}
	slog.Info("Database ready",
		slog.String("path", cfg.DB.Path),
		slog.Duration("took", time.Since(dbStartTime)))

	b := calbot.New(*cfg, version, commit)
	b.DB = db
	b.EventRepository = repositories.NewEventRepository(db.BunDB())
	b.ReminderRepository = repositories.NewReminderRepository(db.BunDB())
	b.RSVPRepository = repositories.NewRSVPRepository(db.BunDB())

	b.Calendar = calendar.NewManager(b.EventRepository, b.ReminderRepository, b.RSVPRepository)
	b.Confirmer = confirm.NewReactionConfirmer()
	b.Notifier = reminders.NewDiscordNotifier()
	b.Scheduler = reminders.NewScheduler(b.ReminderRepository, b.RSVPRepository, b.Notifier)

	h := handler.New()
	eventHandler := commands.NewEventHandler(b)
	eventHandler.Register(h)

	if err = b.SetupBot(h, bot.NewListenerFunc(b.OnReady)); err != nil {
		slog.Error("Failed to setup bot",
			slog.String("type", "sys"),
			slog.Any("error", err),
			slog.String("error_details", fmt.Sprintf("%+v", err)),
			slog.String("component", "bot_setup"),
			slog.String("status", "failed"),
		)
		os.Exit(-1)
	}

	// The reconciler needs the bot's own id to ignore self-reactions; the
	// confirmer and notifier need the rest client. All exist only now.
	b.Reconciler = rsvp.NewReconciler(b.EventRepository, b.RSVPRepository, b.Client.ID().String())
	b.Confirmer.SetClient(b.Client)
	b.Notifier.SetClient(b.Client)
	b.Client.AddEventListeners(
		handlers.ReactionAddListener(b),
		handlers.ReactionRemoveListener(b),
	)

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		b.Client.Close(ctx)
	}()

	if *shouldSyncCommands {
		slog.Info("Syncing commands",
			slog.String("type", "sys"),
			slog.Any("guild_ids", cfg.Bot.DevGuilds),
		)
		if err = handler.SyncCommands(b.Client, commands.Commands, cfg.Bot.DevGuilds); err != nil {
			slog.Error("Failed to sync commands",
				slog.String("type", "sys"),
				slog.Any("error", err),
				slog.String("component", "command_sync"),
				slog.String("status", "failed"),
			)
		}
	}

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = b.Client.OpenGateway(ctx); err != nil {
		slog.Error("Failed to open gateway",
			slog.String("type", "sys"),
			slog.Any("error", err),
			slog.String("component", "gateway"),
			slog.String("status", "failed"),
		)
		os.Exit(-1)
	}

	if err := b.Scheduler.Start(); err != nil {
		slog.Error("Failed to start reminder scheduler",
			slog.String("type", "sys"),
			slog.Any("error", err))
		os.Exit(-1)
	}
	defer b.Scheduler.Stop()

	slog.Info("Bot is running. Press CTRL-C to exit.")
	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM)
	<-s
	slog.Info("Shutting down bot...")
}
