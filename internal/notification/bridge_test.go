package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDispatcher struct {
	name string
	err  error

	mu     sync.Mutex
	events []Event
	got    chan Event
}

func newRecorder(name string) *recordingDispatcher {
	return &recordingDispatcher{name: name, got: make(chan Event, 32)}
}

func (d *recordingDispatcher) Name() string { return d.name }

func (d *recordingDispatcher) Dispatch(_ context.Context, ev Event) error {
	d.mu.Lock()
	d.events = append(d.events, ev)
	d.mu.Unlock()
	d.got <- ev
	return d.err
}

func (d *recordingDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.events)
}

type blockingDispatcher struct {
	release chan struct{}
	calls   chan struct{}
}

func (d *blockingDispatcher) Name() string { return "blocking" }

func (d *blockingDispatcher) Dispatch(ctx context.Context, _ Event) error {
	d.calls <- struct{}{}
	select {
	case <-d.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type panickingDispatcher struct{}

func (panickingDispatcher) Name() string                          { return "panicky" }
func (panickingDispatcher) Dispatch(context.Context, Event) error { panic("boom") }

func waitEvent(t *testing.T, d *recordingDispatcher) Event {
	t.Helper()
	select {
	case ev := <-d.got:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatalf("dispatcher %s received nothing", d.name)
		return Event{}
	}
}

func TestBridge_RendersAndRoutes(t *testing.T) {
	all := newRecorder("all")
	emailOnly := newRecorder("email")
	b := NewBridge(BridgeConfig{},
		Route{Dispatcher: all},
		Route{Dispatcher: emailOnly, Events: []EventType{EventAdmirersDigest}},
	)

	b.Notify(context.Background(), "u1", EventMutualMatch, map[string]string{"partnerName": "Ruth", "matchId": "m1"})

	ev := waitEvent(t, all)
	assert.Equal(t, "u1", ev.UserID)
	assert.Equal(t, EventMutualMatch, ev.Type)
	assert.Equal(t, "You have a Covenant Match!", ev.Title)
	assert.Contains(t, ev.Body, "Ruth")
	assert.Equal(t, "m1", ev.Data["matchId"])
	assert.NotEmpty(t, ev.ID)

	require.NoError(t, b.Close(context.Background()))
	assert.Equal(t, 0, emailOnly.count())
}

func TestBridge_FailureIsSwallowedAndOthersStillRun(t *testing.T) {
	failing := newRecorder("failing")
	failing.err = errors.New("provider down")
	ok := newRecorder("ok")
	b := NewBridge(BridgeConfig{}, Route{Dispatcher: failing}, Route{Dispatcher: ok})

	b.Notify(context.Background(), "u1", EventDateRequested, nil)

	waitEvent(t, failing)
	waitEvent(t, ok)
	require.NoError(t, b.Close(context.Background()))
}

func TestBridge_NotifyDoesNotWaitForDelivery(t *testing.T) {
	d := &blockingDispatcher{release: make(chan struct{}), calls: make(chan struct{}, 1)}
	b := NewBridge(BridgeConfig{Timeout: time.Minute}, Route{Dispatcher: d})

	returned := make(chan struct{})
	go func() {
		b.Notify(context.Background(), "u1", EventDateCompleted, nil)
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked on a slow dispatcher")
	}

	<-d.calls
	close(d.release)
	require.NoError(t, b.Close(context.Background()))
}

func TestBridge_CancelledCallerStillDelivers(t *testing.T) {
	rec := newRecorder("rec")
	b := NewBridge(BridgeConfig{}, Route{Dispatcher: rec})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b.Notify(ctx, "u1", EventDateResponded, map[string]string{"status": "accepted"})

	ev := waitEvent(t, rec)
	assert.Equal(t, "Your date request was accepted", ev.Title)
	require.NoError(t, b.Close(context.Background()))
}

func TestBridge_DropsWhenSaturated(t *testing.T) {
	d := &blockingDispatcher{release: make(chan struct{}), calls: make(chan struct{}, 4)}
	b := NewBridge(BridgeConfig{MaxInFlight: 1, Timeout: time.Minute}, Route{Dispatcher: d})

	b.Notify(context.Background(), "u1", EventMutualMatch, nil)
	<-d.calls
	b.Notify(context.Background(), "u2", EventMutualMatch, nil)

	close(d.release)
	require.NoError(t, b.Close(context.Background()))
	assert.Len(t, d.calls, 0)
}

func TestBridge_RecoversFromPanics(t *testing.T) {
	rec := newRecorder("rec")
	b := NewBridge(BridgeConfig{}, Route{Dispatcher: panickingDispatcher{}})
	b.Notify(context.Background(), "u1", EventMutualMatch, nil)
	require.NoError(t, b.Close(context.Background()))

	b2 := NewBridge(BridgeConfig{}, Route{Dispatcher: rec})
	b2.Notify(context.Background(), "u1", EventMutualMatch, nil)
	waitEvent(t, rec)
	require.NoError(t, b2.Close(context.Background()))
}

func TestBridge_ClosedAndEmptyUserAreIgnored(t *testing.T) {
	rec := newRecorder("rec")
	b := NewBridge(BridgeConfig{}, Route{Dispatcher: rec}, Route{Dispatcher: nil})

	b.Notify(context.Background(), "", EventMutualMatch, nil)
	require.NoError(t, b.Close(context.Background()))
	b.Notify(context.Background(), "u1", EventMutualMatch, nil)

	assert.Equal(t, 0, rec.count())
}

func TestBridge_CloseHonoursDeadline(t *testing.T) {
	d := &blockingDispatcher{release: make(chan struct{}), calls: make(chan struct{}, 1)}
	b := NewBridge(BridgeConfig{Timeout: time.Minute}, Route{Dispatcher: d})
	b.Notify(context.Background(), "u1", EventMutualMatch, nil)
	<-d.calls

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, b.Close(ctx), context.DeadlineExceeded)
	close(d.release)
}

func TestRender(t *testing.T) {
	title, body := render(EventAdmirersDigest, map[string]string{"count": "3"})
	assert.Equal(t, "3 people are interested in you", title)
	assert.Equal(t, "You have 3 unanswered likes.", body)

	_, body = render(EventDateReminder, map[string]string{"partnerName": "Boaz", "when": "Sat 7pm"})
	assert.Equal(t, "Reminder: you are meeting Boaz on Sat 7pm.", body)

	title, body = render(EventType("unknown"), nil)
	assert.Equal(t, "unknown", title)
	assert.Empty(t, body)
}
