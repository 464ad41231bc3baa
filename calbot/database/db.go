package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"log/slog"

	"github.com/jjjdlt/discordcalendarbot/calbot/database/models"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type DBConfig struct {
	Path string `toml:"path"`
}

type DB struct {
	bunDB *bun.DB
}

func New(ctx context.Context, cfg DBConfig) (*DB, error) {
	path := cfg.Path
	if path == "" {
		path = "calendar_events.db"
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, fmt.Sprintf("file:%s?cache=shared", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// A single connection keeps every store operation serialized, which is what
	// upholds the at-most-once reminder and one-row-per-user RSVP invariants.
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	if err := bunDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	return &DB{bunDB: bunDB}, nil
}

func (db *DB) BunDB() *bun.DB {
	return db.bunDB
}

func (db *DB) Close() {
	if db.bunDB != nil {
		db.bunDB.Close()
	}
}

// InitializeSchema drops and recreates all application tables. The store has
// no cross-restart persistence: every process start begins from an empty
// schema, so there is no migration path to maintain.
func (db *DB) InitializeSchema(ctx context.Context) error {
	start := time.Now()

	drops := []interface{}{
		(*models.RSVP)(nil),
		(*models.Reminder)(nil),
		(*models.Event)(nil),
	}
	for _, model := range drops {
		if _, err := db.bunDB.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop table: %w", err)
		}
	}

	tables := []interface{}{
		(*models.Event)(nil),
		(*models.Reminder)(nil),
		(*models.RSVP)(nil),
	}
	for _, model := range tables {
		if _, err := db.bunDB.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_events_guild_time ON events(guild_id, event_time) WHERE is_cancelled = 0;",
		"CREATE INDEX IF NOT EXISTS idx_events_message_id ON events(message_id);",
		"CREATE INDEX IF NOT EXISTS idx_reminders_pending ON reminders(event_id) WHERE notification_sent = 0;",
		"CREATE INDEX IF NOT EXISTS idx_rsvps_event_status ON rsvps(event_id, status);",
	}
	for _, idx := range indexes {
		if _, err := db.bunDB.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	slog.Info("Database schema reset",
		slog.String("type", "db"),
		slog.Duration("took", time.Since(start)))
	return nil
}
