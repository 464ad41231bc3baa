package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jjjdlt/discordcalendarbot/calbot/database/models"
	"github.com/uptrace/bun"
)

var ErrEventNotFound = errors.New("event not found")

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	AttachMessage(ctx context.Context, eventID int64, messageID string) error
	Cancel(ctx context.Context, eventID int64) error
	GetByID(ctx context.Context, eventID int64) (*models.Event, error)
	GetByMessageID(ctx context.Context, messageID string) (*models.Event, error)
	// FindBetween returns non-cancelled events for a guild with event_time in
	// the closed interval [from, to], ordered by event_time ascending. An empty
	// `to` leaves the interval unbounded above, an empty category matches all.
	FindBetween(ctx context.Context, guildID, from, to, category string) ([]*models.Event, error)
	Categories(ctx context.Context, guildID string) ([]string, error)
}

type eventRepository struct {
	db *bun.DB
}

func NewEventRepository(db *bun.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	if event.Category == "" {
		event.Category = "general"
	}
	if _, err := r.db.NewInsert().Model(event).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

func (r *eventRepository) AttachMessage(ctx context.Context, eventID int64, messageID string) error {
	_, err := r.db.NewUpdate().
		Model((*models.Event)(nil)).
		Set("message_id = ?", messageID).
		Where("id = ?", eventID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to attach message to event %d: %w", eventID, err)
	}
	return nil
}

// Cancel marks an event cancelled. Re-cancelling an already cancelled event is
// the same update and succeeds again.
func (r *eventRepository) Cancel(ctx context.Context, eventID int64) error {
	_, err := r.db.NewUpdate().
		Model((*models.Event)(nil)).
		Set("is_cancelled = ?", true).
		Where("id = ?", eventID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to cancel event %d: %w", eventID, err)
	}
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, eventID int64) (*models.Event, error) {
	event := new(models.Event)
	err := r.db.NewSelect().
		Model(event).
		Where("id = ?", eventID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event %d: %w", eventID, err)
	}
	return event, nil
}

func (r *eventRepository) GetByMessageID(ctx context.Context, messageID string) (*models.Event, error) {
	event := new(models.Event)
	err := r.db.NewSelect().
		Model(event).
		Where("message_id = ?", messageID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event by message %s: %w", messageID, err)
	}
	return event, nil
}

func (r *eventRepository) FindBetween(ctx context.Context, guildID, from, to, category string) ([]*models.Event, error) {
	var events []*models.Event
	q := r.db.NewSelect().
		Model(&events).
		Where("guild_id = ?", guildID).
		Where("is_cancelled = ?", false).
		Where("event_time >= ?", from)
	if to != "" {
		q = q.Where("event_time <= ?", to)
	}
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if err := q.Order("event_time ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	return events, nil
}

func (r *eventRepository) Categories(ctx context.Context, guildID string) ([]string, error) {
	var categories []string
	err := r.db.NewSelect().
		Model((*models.Event)(nil)).
		ColumnExpr("DISTINCT category").
		Where("guild_id = ?", guildID).
		Where("is_cancelled = ?", false).
		Order("category ASC").
		Scan(ctx, &categories)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	return categories, nil
}
