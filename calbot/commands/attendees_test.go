package commands

import (
	"context"
	"fmt"
	"testing"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/jjjdlt/discordcalendarbot/calbot"
)

type fakeRest struct {
	rest.Rest
	members map[snowflake.ID]bool
	lookups int
}

func (f *fakeRest) GetMember(_ snowflake.ID, userID snowflake.ID, _ ...rest.RequestOpt) (*discord.Member, error) {
	f.lookups++
	if !f.members[userID] {
		return nil, fmt.Errorf("unknown member %s", userID)
	}
	return &discord.Member{User: discord.User{ID: userID}}, nil
}

type fakeClient struct {
	bot.Client
	rest rest.Rest
}

func (f *fakeClient) Rest() rest.Rest {
	return f.rest
}

func newTestHandler(members map[snowflake.ID]bool) (*EventHandler, *fakeRest) {
	r := &fakeRest{members: members}
	b := &calbot.Bot{Client: &fakeClient{rest: r}}
	return NewEventHandler(b), r
}

func TestResolveMembersDropsUnresolvable(t *testing.T) {
	h, r := newTestHandler(map[snowflake.ID]bool{
		snowflake.ID(111): true,
		snowflake.ID(333): true,
	})

	got := h.resolveMembers(context.Background(), snowflake.ID(1), []string{"111", "222", "333", "notanid"})
	if len(got) != 2 || got[0] != "111" || got[1] != "333" {
		t.Errorf("resolveMembers = %v, want [111 333] in input order", got)
	}
	if r.lookups != 3 {
		t.Errorf("lookups = %d, want 3 (malformed id never hits the API)", r.lookups)
	}
}

func TestMemberField(t *testing.T) {
	h, _ := newTestHandler(map[snowflake.ID]bool{snowflake.ID(111): true})

	if got := h.memberField(context.Background(), snowflake.ID(1), []string{"111"}); got != "<@111>" {
		t.Errorf("memberField = %q, want mention", got)
	}
	if got := h.memberField(context.Background(), snowflake.ID(1), []string{"222"}); got != "None" {
		t.Errorf("memberField with no resolvable members = %q, want None", got)
	}
	if got := h.memberField(context.Background(), snowflake.ID(1), nil); got != "None" {
		t.Errorf("memberField with no attendees = %q, want None", got)
	}
}
