package reminders

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/jjjdlt/discordcalendarbot/calbot/database/models"
	"github.com/jjjdlt/discordcalendarbot/calbot/database/repositories"
)

// fakeReminderStore mirrors the SQL join in memory: reminders paired with
// their owning events, filtered by cancelled/sent flags and the due moment.
type fakeReminderStore struct {
	events    map[int64]*models.Event
	reminders []*models.Reminder
}

func (f *fakeReminderStore) CreateAll(_ context.Context, eventID int64, offsets []int) error {
	for _, offset := range offsets {
		f.reminders = append(f.reminders, &models.Reminder{
			ID:           int64(len(f.reminders) + 1),
			EventID:      eventID,
			ReminderTime: offset,
		})
	}
	return nil
}

func (f *fakeReminderStore) DueUnsent(_ context.Context, now time.Time) ([]*repositories.DueReminder, error) {
	var due []*repositories.DueReminder
	for _, reminder := range f.reminders {
		if reminder.NotificationSent {
			continue
		}
		event, ok := f.events[reminder.EventID]
		if !ok || event.IsCancelled {
			continue
		}
		eventTime, err := time.Parse(models.TimeLayout, event.EventTime)
		if err != nil {
			return nil, err
		}
		if reminder.DueAt(eventTime).After(now) {
			continue
		}
		due = append(due, &repositories.DueReminder{
			ReminderID:   reminder.ID,
			EventID:      event.ID,
			Title:        event.Title,
			ChannelID:    event.ChannelID,
			EventTime:    event.EventTime,
			ReminderTime: reminder.ReminderTime,
		})
	}
	sort.Slice(due, func(i, j int) bool { return due[i].EventTime < due[j].EventTime })
	return due, nil
}

func (f *fakeReminderStore) MarkSent(_ context.Context, reminderID int64) error {
	for _, reminder := range f.reminders {
		if reminder.ID == reminderID {
			reminder.NotificationSent = true
		}
	}
	return nil
}

type fakeRSVPStore struct {
	attending map[int64][]string
}

func (f *fakeRSVPStore) Upsert(context.Context, int64, string, models.Status) error { return nil }
func (f *fakeRSVPStore) Delete(context.Context, int64, string) error                { return nil }

func (f *fakeRSVPStore) ListByStatus(_ context.Context, eventID int64, status models.Status) ([]string, error) {
	if status != models.StatusAttending {
		return nil, nil
	}
	return f.attending[eventID], nil
}

func (f *fakeRSVPStore) CountAttending(_ context.Context, eventID int64) (int, error) {
	return len(f.attending[eventID]), nil
}

type sentReminder struct {
	reminderID int64
	attending  []string
}

type fakeNotifier struct {
	sent []sentReminder
	err  error
}

func (f *fakeNotifier) SendReminder(_ context.Context, reminder *repositories.DueReminder, attending []string) error {
	f.sent = append(f.sent, sentReminder{reminderID: reminder.ReminderID, attending: attending})
	return f.err
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestTickDispatchesDueReminders(t *testing.T) {
	store := &fakeReminderStore{
		events: map[int64]*models.Event{
			1: {ID: 1, Title: "Standup", ChannelID: "chan-1", EventTime: "2025-01-03 09:00"},
		},
	}
	store.CreateAll(context.Background(), 1, []int{30})
	rsvps := &fakeRSVPStore{attending: map[int64][]string{1: {"bob", "carol"}}}
	notifier := &fakeNotifier{}

	s := NewScheduler(store, rsvps, notifier)
	ctx := context.Background()

	// 08:29: not yet due, nothing happens.
	s.WithClock(fixedClock(time.Date(2025, 1, 3, 8, 29, 0, 0, time.UTC)))
	if err := s.Tick(ctx); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if len(notifier.sent) != 0 {
		t.Fatalf("sent = %d before due time, want 0", len(notifier.sent))
	}

	// 08:31: the 30-minute reminder is overdue by a minute and fires.
	s.WithClock(fixedClock(time.Date(2025, 1, 3, 8, 31, 0, 0, time.UTC)))
	if err := s.Tick(ctx); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(notifier.sent))
	}
	if got := notifier.sent[0].attending; len(got) != 2 {
		t.Errorf("attending = %v, want bob and carol", got)
	}
	if !store.reminders[0].NotificationSent {
		t.Error("reminder not marked sent after dispatch")
	}

	// Later ticks must not redeliver.
	s.WithClock(fixedClock(time.Date(2025, 1, 3, 8, 35, 0, 0, time.UTC)))
	if err := s.Tick(ctx); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if len(notifier.sent) != 1 {
		t.Errorf("sent = %d after repeat tick, want still 1", len(notifier.sent))
	}
}

func TestTickMarksSentEvenWhenNotifyFails(t *testing.T) {
	store := &fakeReminderStore{
		events: map[int64]*models.Event{
			1: {ID: 1, Title: "Standup", ChannelID: "gone", EventTime: "2025-01-03 09:00"},
		},
	}
	store.CreateAll(context.Background(), 1, []int{30})
	notifier := &fakeNotifier{err: errors.New("channel deleted")}

	s := NewScheduler(store, &fakeRSVPStore{}, notifier).
		WithClock(fixedClock(time.Date(2025, 1, 3, 8, 30, 0, 0, time.UTC)))

	if err := s.Tick(context.Background()); err != nil {
		t.Fatalf("Tick() error = %v, notify failures must not fail the tick", err)
	}
	if !store.reminders[0].NotificationSent {
		t.Error("failed delivery must still mark the reminder sent")
	}

	if err := s.Tick(context.Background()); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if len(notifier.sent) != 1 {
		t.Errorf("sent attempts = %d, want no retry", len(notifier.sent))
	}
}

func TestTickSkipsCancelledEvents(t *testing.T) {
	store := &fakeReminderStore{
		events: map[int64]*models.Event{
			1: {ID: 1, Title: "Standup", EventTime: "2025-01-03 09:00", IsCancelled: true},
			2: {ID: 2, Title: "Retro", EventTime: "2025-01-03 09:00"},
		},
	}
	store.CreateAll(context.Background(), 1, []int{30})
	store.CreateAll(context.Background(), 2, []int{30})
	notifier := &fakeNotifier{}

	s := NewScheduler(store, &fakeRSVPStore{}, notifier).
		WithClock(fixedClock(time.Date(2025, 1, 3, 8, 45, 0, 0, time.UTC)))

	if err := s.Tick(context.Background()); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("sent = %d, want only the live event's reminder", len(notifier.sent))
	}
	if notifier.sent[0].reminderID != 2 {
		t.Errorf("dispatched reminder = %d, want 2", notifier.sent[0].reminderID)
	}
}

func TestTickDispatchesMultipleOffsets(t *testing.T) {
	store := &fakeReminderStore{
		events: map[int64]*models.Event{
			1: {ID: 1, Title: "Standup", EventTime: "2025-01-03 09:00"},
		},
	}
	store.CreateAll(context.Background(), 1, []int{15, 60})
	notifier := &fakeNotifier{}

	s := NewScheduler(store, &fakeRSVPStore{}, notifier)
	ctx := context.Background()

	// 08:00: only the 60-minute reminder is due.
	s.WithClock(fixedClock(time.Date(2025, 1, 3, 8, 0, 0, 0, time.UTC)))
	if err := s.Tick(ctx); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if len(notifier.sent) != 1 || notifier.sent[0].reminderID != 2 {
		t.Fatalf("sent = %+v, want only the 60-minute reminder", notifier.sent)
	}

	// 08:45: now the 15-minute reminder follows.
	s.WithClock(fixedClock(time.Date(2025, 1, 3, 8, 45, 0, 0, time.UTC)))
	if err := s.Tick(ctx); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if len(notifier.sent) != 2 || notifier.sent[1].reminderID != 1 {
		t.Fatalf("sent = %+v, want the 15-minute reminder second", notifier.sent)
	}
}

func TestMentionList(t *testing.T) {
	if got := MentionList(nil); got != "" {
		t.Errorf("MentionList(nil) = %q, want empty", got)
	}
	if got := MentionList([]string{"1", "2"}); got != "<@1> <@2>" {
		t.Errorf("MentionList = %q, want %q", got, "<@1> <@2>")
	}
}
