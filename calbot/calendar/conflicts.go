package calendar

import (
	"context"
	"time"

	"github.com/jjjdlt/discordcalendarbot/calbot/database/models"
	"github.com/jjjdlt/discordcalendarbot/calbot/database/repositories"
)

// ConflictWindow is how far on either side of a proposed time another event
// counts as conflicting. The interval is closed: an event exactly one hour
// away still conflicts.
const ConflictWindow = time.Hour

// conflictBounds returns the canonical-format endpoints of the conflict
// interval around t.
func conflictBounds(t time.Time) (from, to string) {
	return t.Add(-ConflictWindow).Format(models.TimeLayout), t.Add(ConflictWindow).Format(models.TimeLayout)
}

// Detector finds scheduling conflicts. It is a pure read over the event store
// and only ever advises: conflicts never block creation by themselves.
type Detector struct {
	events repositories.EventRepository
}

func NewDetector(events repositories.EventRepository) *Detector {
	return &Detector{events: events}
}

func (d *Detector) FindConflicts(ctx context.Context, guildID string, t time.Time) ([]*models.Event, error) {
	from, to := conflictBounds(t)
	return d.events.FindBetween(ctx, guildID, from, to, "")
}
