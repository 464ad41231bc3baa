package calbot

import (
	"testing"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/events"
)

type holdingEvent struct {
	*events.GenericEvent
}

type releasingEvent struct {
	*events.GenericEvent
}

// A create command can block its listener for up to 30 seconds waiting for the
// confirmation reaction, which arrives as a separate gateway event. The client
// must therefore deliver events to other listeners while one is still running;
// otherwise the answering reaction is only seen after the wait gives up.
func TestSetupBotDeliversEventsWhileListenerBlocked(t *testing.T) {
	b := New(Config{Bot: BotConfig{Token: "test-token"}}, "test", "test")

	release := make(chan struct{})
	answered := make(chan bool, 1)

	holder := bot.NewListenerFunc(func(e *holdingEvent) {
		select {
		case <-release:
			answered <- true
		case <-time.After(3 * time.Second):
			answered <- false
		}
	})
	releaser := bot.NewListenerFunc(func(e *releasingEvent) {
		close(release)
	})

	if err := b.SetupBot(holder, releaser); err != nil {
		t.Fatalf("SetupBot() error = %v", err)
	}

	em := b.Client.EventManager()
	em.DispatchEvent(&holdingEvent{events.NewGenericEvent(b.Client, 0, 0)})
	em.DispatchEvent(&releasingEvent{events.NewGenericEvent(b.Client, 0, 0)})

	select {
	case ok := <-answered:
		if !ok {
			t.Fatal("second event was not delivered while the first listener was blocked")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("blocked listener never finished")
	}
}
