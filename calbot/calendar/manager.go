package calendar

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"github.com/jjjdlt/discordcalendarbot/calbot/database/models"
	"github.com/jjjdlt/discordcalendarbot/calbot/database/repositories"
)

const (
	DefaultCategory       = "general"
	DefaultDescription    = "No description provided"
	DefaultReminderOffset = 30

	DefaultAgendaDays = 7
)

// Confirmer is the external yes/no mechanism consulted when a proposed event
// conflicts with existing ones. Implementations must respect the prompt's
// timeout semantics: a timeout is reported as ErrConfirmationTimeout.
type Confirmer interface {
	ConfirmSchedule(ctx context.Context, prompt ConfirmPrompt) (bool, error)
}

type ConfirmPrompt struct {
	GuildID   string
	ChannelID string
	UserID    string
	Conflicts []*models.Event
}

type CreateRequest struct {
	GuildID   string
	ChannelID string
	CreatorID string
	Title     string
	Date      string
	Time      string

	Description string
	Category    string
	Reminders   []int
}

type CancelResult struct {
	Event     *models.Event
	Attending []string
}

// EventSummary is an event annotated with its live attending count.
type EventSummary struct {
	Event     *models.Event
	Attending int
}

type AttendeeReport struct {
	Attending    []string
	Maybe        []string
	NotAttending []string
}

// Manager owns the event lifecycle: creation with conflict confirmation,
// cancellation, and the list/agenda/attendees queries.
type Manager struct {
	events    repositories.EventRepository
	reminders repositories.ReminderRepository
	rsvps     repositories.RSVPRepository
	detector  *Detector
	now       func() time.Time
}

func NewManager(
	events repositories.EventRepository,
	reminders repositories.ReminderRepository,
	rsvps repositories.RSVPRepository,
) *Manager {
	return &Manager{
		events:    events,
		reminders: reminders,
		rsvps:     rsvps,
		detector:  NewDetector(events),
		now:       time.Now,
	}
}

// WithClock overrides the manager's clock. Tests use this to pin "now".
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

func (m *Manager) Detector() *Detector {
	return m.detector
}

// ParseEventTime combines a date and a wall-clock time into one minute-precision
// timestamp. Malformed input yields ErrInvalidFormat.
func ParseEventTime(date, clock string) (time.Time, error) {
	t, err := time.Parse(models.TimeLayout, date+" "+clock)
	if err != nil {
		return time.Time{}, ErrInvalidFormat
	}
	return t, nil
}

// ParseReminderOffsets parses a comma-separated minutes list. A malformed list
// degrades to the single default offset; ok=false tells the caller to surface
// a warning instead of aborting.
func ParseReminderOffsets(spec string) (offsets []int, ok bool) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return []int{DefaultReminderOffset}, true
	}
	for _, part := range strings.Split(spec, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return []int{DefaultReminderOffset}, false
		}
		offsets = append(offsets, n)
	}
	return offsets, true
}

// Create validates the request, consults the conflict detector, and, when
// conflicts exist, solicits a confirmation through the given Confirmer before
// writing anything. On decline or timeout nothing is persisted.
func (m *Manager) Create(ctx context.Context, req CreateRequest, confirmer Confirmer) (*models.Event, error) {
	eventTime, err := ParseEventTime(req.Date, req.Time)
	if err != nil {
		return nil, err
	}

	conflicts, err := m.detector.FindConflicts(ctx, req.GuildID, eventTime)
	if err != nil {
		return nil, fmt.Errorf("conflict check failed: %w", err)
	}

	if len(conflicts) > 0 && confirmer != nil {
		ok, err := confirmer.ConfirmSchedule(ctx, ConfirmPrompt{
			GuildID:   req.GuildID,
			ChannelID: req.ChannelID,
			UserID:    req.CreatorID,
			Conflicts: conflicts,
		})
		if err != nil {
			if errors.Is(err, ErrConfirmationTimeout) {
				return nil, ErrConfirmationTimeout
			}
			return nil, fmt.Errorf("confirmation failed: %w", err)
		}
		if !ok {
			return nil, ErrConfirmationDeclined
		}
	}

	description := req.Description
	if description == "" {
		description = DefaultDescription
	}
	category := req.Category
	if category == "" {
		category = DefaultCategory
	}
	offsets := req.Reminders
	if len(offsets) == 0 {
		offsets = []int{DefaultReminderOffset}
	}

	event := &models.Event{
		GuildID:     req.GuildID,
		ChannelID:   req.ChannelID,
		CreatorID:   req.CreatorID,
		Title:       req.Title,
		Description: description,
		EventTime:   eventTime.Format(models.TimeLayout),
		Category:    category,
	}
	if err := m.events.Create(ctx, event); err != nil {
		return nil, err
	}
	if err := m.reminders.CreateAll(ctx, event.ID, offsets); err != nil {
		return nil, err
	}

	slog.Info("Event created",
		slog.String("type", "cmd"),
		slog.Int64("event_id", event.ID),
		slog.String("guild_id", event.GuildID),
		slog.String("event_time", event.EventTime),
		slog.Int("reminders", len(offsets)))

	return event, nil
}

// AttachAnnouncement records the announcement message id once the caller has
// posted it. Until then the event exists without one.
func (m *Manager) AttachAnnouncement(ctx context.Context, eventID int64, messageID string) error {
	return m.events.AttachMessage(ctx, eventID, messageID)
}

// Cancel marks an event cancelled and returns the users currently attending so
// the caller can notify them. Only the creator may cancel. Cancelling an
// already-cancelled event succeeds again.
func (m *Manager) Cancel(ctx context.Context, eventID int64, requesterID string) (*CancelResult, error) {
	event, err := m.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if event.CreatorID != requesterID {
		return nil, ErrForbidden
	}

	if err := m.events.Cancel(ctx, eventID); err != nil {
		return nil, err
	}
	event.IsCancelled = true

	attending, err := m.rsvps.ListByStatus(ctx, eventID, models.StatusAttending)
	if err != nil {
		return nil, err
	}

	slog.Info("Event cancelled",
		slog.String("type", "cmd"),
		slog.Int64("event_id", eventID),
		slog.Int("attending", len(attending)))

	return &CancelResult{Event: event, Attending: attending}, nil
}

// Upcoming returns every non-cancelled future event for a guild, optionally
// filtered by category.
func (m *Manager) Upcoming(ctx context.Context, guildID, category string) ([]EventSummary, error) {
	from := m.now().Format(models.TimeLayout)
	return m.summarize(ctx, guildID, from, "", category)
}

// Agenda returns non-cancelled events within the next `days` days (default 7).
func (m *Manager) Agenda(ctx context.Context, guildID, category string, days int) ([]EventSummary, error) {
	if days <= 0 {
		days = DefaultAgendaDays
	}
	now := m.now()
	from := now.Format(models.TimeLayout)
	to := now.Add(time.Duration(days) * 24 * time.Hour).Format(models.TimeLayout)
	return m.summarize(ctx, guildID, from, to, category)
}

func (m *Manager) summarize(ctx context.Context, guildID, from, to, category string) ([]EventSummary, error) {
	events, err := m.events.FindBetween(ctx, guildID, from, to, category)
	if err != nil {
		return nil, err
	}
	summaries := make([]EventSummary, 0, len(events))
	for _, event := range events {
		count, err := m.rsvps.CountAttending(ctx, event.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, EventSummary{Event: event, Attending: count})
	}
	return summaries, nil
}

// Attendees partitions the RSVPs of a guild's event by status. Events from
// other guilds are reported as not found.
func (m *Manager) Attendees(ctx context.Context, guildID string, eventID int64) (*AttendeeReport, error) {
	event, err := m.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if event.GuildID != guildID {
		return nil, ErrNotFound
	}

	report := new(AttendeeReport)
	for _, part := range []struct {
		status models.Status
		into   *[]string
	}{
		{models.StatusAttending, &report.Attending},
		{models.StatusMaybe, &report.Maybe},
		{models.StatusNotAttending, &report.NotAttending},
	} {
		users, err := m.rsvps.ListByStatus(ctx, eventID, part.status)
		if err != nil {
			return nil, err
		}
		*part.into = users
	}
	return report, nil
}
