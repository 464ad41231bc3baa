package calendar

import (
	"context"
	"sort"
	"time"

	"github.com/jjjdlt/discordcalendarbot/calbot/database/models"
	"github.com/jjjdlt/discordcalendarbot/calbot/database/repositories"
)

// In-memory stand-ins for the bun repositories. Range filtering is plain
// string comparison, which matches the store: the canonical timestamp format
// orders lexicographically.

type fakeEventRepo struct {
	nextID int64
	events map[int64]*models.Event
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: make(map[int64]*models.Event)}
}

func (f *fakeEventRepo) Create(_ context.Context, event *models.Event) error {
	f.nextID++
	event.ID = f.nextID
	clone := *event
	f.events[event.ID] = &clone
	return nil
}

func (f *fakeEventRepo) AttachMessage(_ context.Context, eventID int64, messageID string) error {
	if event, ok := f.events[eventID]; ok {
		event.MessageID = messageID
	}
	return nil
}

func (f *fakeEventRepo) Cancel(_ context.Context, eventID int64) error {
	if event, ok := f.events[eventID]; ok {
		event.IsCancelled = true
	}
	return nil
}

func (f *fakeEventRepo) GetByID(_ context.Context, eventID int64) (*models.Event, error) {
	event, ok := f.events[eventID]
	if !ok {
		return nil, repositories.ErrEventNotFound
	}
	clone := *event
	return &clone, nil
}

func (f *fakeEventRepo) GetByMessageID(_ context.Context, messageID string) (*models.Event, error) {
	for _, event := range f.events {
		if event.MessageID == messageID {
			clone := *event
			return &clone, nil
		}
	}
	return nil, repositories.ErrEventNotFound
}

func (f *fakeEventRepo) FindBetween(_ context.Context, guildID, from, to, category string) ([]*models.Event, error) {
	var found []*models.Event
	for _, event := range f.events {
		if event.GuildID != guildID || event.IsCancelled {
			continue
		}
		if event.EventTime < from {
			continue
		}
		if to != "" && event.EventTime > to {
			continue
		}
		if category != "" && event.Category != category {
			continue
		}
		clone := *event
		found = append(found, &clone)
	}
	sort.Slice(found, func(i, j int) bool { return found[i].EventTime < found[j].EventTime })
	return found, nil
}

func (f *fakeEventRepo) Categories(_ context.Context, guildID string) ([]string, error) {
	seen := map[string]bool{}
	for _, event := range f.events {
		if event.GuildID == guildID && !event.IsCancelled {
			seen[event.Category] = true
		}
	}
	var categories []string
	for category := range seen {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories, nil
}

type fakeReminderRepo struct {
	nextID    int64
	reminders []*models.Reminder
}

func (f *fakeReminderRepo) CreateAll(_ context.Context, eventID int64, offsets []int) error {
	for _, offset := range offsets {
		f.nextID++
		f.reminders = append(f.reminders, &models.Reminder{
			ID:           f.nextID,
			EventID:      eventID,
			ReminderTime: offset,
		})
	}
	return nil
}

func (f *fakeReminderRepo) DueUnsent(context.Context, time.Time) ([]*repositories.DueReminder, error) {
	return nil, nil
}

func (f *fakeReminderRepo) MarkSent(_ context.Context, reminderID int64) error {
	for _, reminder := range f.reminders {
		if reminder.ID == reminderID {
			reminder.NotificationSent = true
		}
	}
	return nil
}

func (f *fakeReminderRepo) forEvent(eventID int64) []*models.Reminder {
	var out []*models.Reminder
	for _, reminder := range f.reminders {
		if reminder.EventID == eventID {
			out = append(out, reminder)
		}
	}
	return out
}

type rsvpKey struct {
	eventID int64
	userID  string
}

type fakeRSVPRepo struct {
	rows map[rsvpKey]models.Status
}

func newFakeRSVPRepo() *fakeRSVPRepo {
	return &fakeRSVPRepo{rows: make(map[rsvpKey]models.Status)}
}

func (f *fakeRSVPRepo) Upsert(_ context.Context, eventID int64, userID string, status models.Status) error {
	f.rows[rsvpKey{eventID, userID}] = status
	return nil
}

func (f *fakeRSVPRepo) Delete(_ context.Context, eventID int64, userID string) error {
	delete(f.rows, rsvpKey{eventID, userID})
	return nil
}

func (f *fakeRSVPRepo) ListByStatus(_ context.Context, eventID int64, status models.Status) ([]string, error) {
	var users []string
	for key, s := range f.rows {
		if key.eventID == eventID && s == status {
			users = append(users, key.userID)
		}
	}
	sort.Strings(users)
	return users, nil
}

func (f *fakeRSVPRepo) CountAttending(ctx context.Context, eventID int64) (int, error) {
	users, _ := f.ListByStatus(ctx, eventID, models.StatusAttending)
	return len(users), nil
}

// stubConfirmer answers every prompt with a fixed result and records what it
// was asked.
type stubConfirmer struct {
	answer  bool
	err     error
	prompts []ConfirmPrompt
}

func (s *stubConfirmer) ConfirmSchedule(_ context.Context, prompt ConfirmPrompt) (bool, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return false, s.err
	}
	return s.answer, nil
}
