package confirm

import (
	"context"
	"testing"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/jjjdlt/discordcalendarbot/calbot/calendar"
	"github.com/jjjdlt/discordcalendarbot/calbot/database/models"
)

type fakeRest struct {
	rest.Rest
	messageID  snowflake.ID
	onReaction func(messageID string)
}

func (f *fakeRest) CreateMessage(channelID snowflake.ID, _ discord.MessageCreate, _ ...rest.RequestOpt) (*discord.Message, error) {
	return &discord.Message{ID: f.messageID, ChannelID: channelID}, nil
}

func (f *fakeRest) AddReaction(_ snowflake.ID, messageID snowflake.ID, _ string, _ ...rest.RequestOpt) error {
	if f.onReaction != nil {
		f.onReaction(messageID.String())
	}
	return nil
}

type fakeClient struct {
	bot.Client
	rest rest.Rest
}

func (f *fakeClient) Rest() rest.Rest {
	return f.rest
}

func testPrompt() calendar.ConfirmPrompt {
	return calendar.ConfirmPrompt{
		GuildID:   "1",
		ChannelID: "100",
		UserID:    "alice",
		Conflicts: []*models.Event{{ID: 1, Title: "Standup", EventTime: "2025-01-03 09:00"}},
	}
}

// The user can react the instant the prompt message appears, while the
// confirmer is still seeding its own ✅/❌ reactions. A reaction landing in
// that window must resolve the wait rather than fall through and time out.
func TestConfirmScheduleResolvesReactionDuringSeeding(t *testing.T) {
	c := NewReactionConfirmer()
	r := &fakeRest{messageID: snowflake.ID(555)}
	r.onReaction = func(messageID string) {
		if !c.Resolve(messageID, "alice", EmojiConfirm) {
			t.Error("reaction during seeding found no waiter")
		}
		r.onReaction = nil
	}
	c.SetClient(&fakeClient{rest: r})

	ok, err := c.ConfirmSchedule(context.Background(), testPrompt())
	if err != nil {
		t.Fatalf("ConfirmSchedule() error = %v", err)
	}
	if !ok {
		t.Error("ConfirmSchedule() = false, want confirmed")
	}
}

func TestConfirmScheduleDecline(t *testing.T) {
	c := NewReactionConfirmer()
	r := &fakeRest{messageID: snowflake.ID(556)}
	r.onReaction = func(messageID string) {
		c.Resolve(messageID, "alice", EmojiDecline)
		r.onReaction = nil
	}
	c.SetClient(&fakeClient{rest: r})

	ok, err := c.ConfirmSchedule(context.Background(), testPrompt())
	if err != nil {
		t.Fatalf("ConfirmSchedule() error = %v", err)
	}
	if ok {
		t.Error("ConfirmSchedule() = true, want declined")
	}
}

func TestConfirmScheduleCancelledContext(t *testing.T) {
	c := NewReactionConfirmer()
	c.SetClient(&fakeClient{rest: &fakeRest{messageID: snowflake.ID(557)}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.ConfirmSchedule(ctx, testPrompt()); err != calendar.ErrConfirmationTimeout {
		t.Errorf("ConfirmSchedule(cancelled ctx) error = %v, want ErrConfirmationTimeout", err)
	}
}

func TestResolveIgnoresWrongUserAndEmoji(t *testing.T) {
	c := NewReactionConfirmer()
	r := &fakeRest{messageID: snowflake.ID(558)}
	r.onReaction = func(messageID string) {
		if c.Resolve(messageID, "mallory", EmojiConfirm) {
			t.Error("another user's reaction must not resolve the prompt")
		}
		if c.Resolve(messageID, "alice", "🎉") {
			t.Error("an unrelated emoji must not resolve the prompt")
		}
		c.Resolve(messageID, "alice", EmojiConfirm)
		r.onReaction = nil
	}
	c.SetClient(&fakeClient{rest: r})

	ok, err := c.ConfirmSchedule(context.Background(), testPrompt())
	if err != nil || !ok {
		t.Fatalf("ConfirmSchedule() = %v, %v; want confirmed by the right user", ok, err)
	}
}

func TestResolveUnknownMessage(t *testing.T) {
	c := NewReactionConfirmer()
	if c.Resolve("999", "alice", EmojiConfirm) {
		t.Error("Resolve with no pending prompt must report unconsumed")
	}
}
