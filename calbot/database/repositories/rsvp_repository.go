package repositories

import (
	"context"
	"fmt"

	"github.com/jjjdlt/discordcalendarbot/calbot/database/models"
	"github.com/uptrace/bun"
)

type RSVPRepository interface {
	// Upsert replaces any prior status for (event, user) unconditionally: the
	// most recent reaction wins.
	Upsert(ctx context.Context, eventID int64, userID string, status models.Status) error
	Delete(ctx context.Context, eventID int64, userID string) error
	ListByStatus(ctx context.Context, eventID int64, status models.Status) ([]string, error)
	CountAttending(ctx context.Context, eventID int64) (int, error)
}

type rsvpRepository struct {
	db *bun.DB
}

func NewRSVPRepository(db *bun.DB) RSVPRepository {
	return &rsvpRepository{db: db}
}

func (r *rsvpRepository) Upsert(ctx context.Context, eventID int64, userID string, status models.Status) error {
	rsvp := &models.RSVP{
		EventID: eventID,
		UserID:  userID,
		Status:  status,
	}
	_, err := r.db.NewInsert().
		Model(rsvp).
		On("CONFLICT (event_id, user_id) DO UPDATE").
		Set("status = EXCLUDED.status").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert rsvp for event %d: %w", eventID, err)
	}
	return nil
}

func (r *rsvpRepository) Delete(ctx context.Context, eventID int64, userID string) error {
	_, err := r.db.NewDelete().
		Model((*models.RSVP)(nil)).
		Where("event_id = ?", eventID).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete rsvp for event %d: %w", eventID, err)
	}
	return nil
}

func (r *rsvpRepository) ListByStatus(ctx context.Context, eventID int64, status models.Status) ([]string, error) {
	var userIDs []string
	err := r.db.NewSelect().
		Model((*models.RSVP)(nil)).
		Column("user_id").
		Where("event_id = ?", eventID).
		Where("status = ?", status).
		Scan(ctx, &userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list rsvps for event %d: %w", eventID, err)
	}
	return userIDs, nil
}

func (r *rsvpRepository) CountAttending(ctx context.Context, eventID int64) (int, error) {
	count, err := r.db.NewSelect().
		Model((*models.RSVP)(nil)).
		Where("event_id = ?", eventID).
		Where("status = ?", models.StatusAttending).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count attendees for event %d: %w", eventID, err)
	}
	return count, nil
}
