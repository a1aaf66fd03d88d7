package dating

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/imadgeboyega/covenant-backend/internal/notification"
	"github.com/imadgeboyega/covenant-backend/internal/profile"
)

type sentEvent struct {
	userID  string
	event   notification.EventType
	payload map[string]string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentEvent
}

func (n *recordingNotifier) Notify(_ context.Context, userID string, ev notification.EventType, payload map[string]string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentEvent{userID: userID, event: ev, payload: payload})
}

func (n *recordingNotifier) events(ev notification.EventType) []sentEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []sentEvent
	for _, s := range n.sent {
		if s.event == ev {
			out = append(out, s)
		}
	}
	return out
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

// stepClock advances one second per reading
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type fixture struct {
	profiles  profile.Store
	matchRepo MatchRepository
	dateRepo  DateRepository
	matches   MatchService
	dates     DateService
	notifier  *recordingNotifier
}

func newFixture(t *testing.T, ids ...string) *fixture {
	t.Helper()
	f := &fixture{
		profiles:  profile.NewMemoryStore(),
		matchRepo: NewMemoryMatchRepository(),
		notifier:  &recordingNotifier{},
	}
	f.dateRepo = NewMemoryDateRepository(f.profiles)
	f.matches = NewMatchService(f.matchRepo, f.profiles, f.notifier)
	f.dates = NewDateService(f.dateRepo, f.matchRepo, f.profiles, f.notifier, 1)

	for _, id := range ids {
		f.addMember(t, id)
	}
	return f
}

func (f *fixture) addMember(t *testing.T, id string) {
	t.Helper()
	require.NoError(t, f.profiles.Create(context.Background(), &profile.Profile{
		ID: id, Name: "name-" + id, Gender: profile.GenderMan, Age: 30, TrustLevel: 1, IsVerified: true,
	}))
}

func (f *fixture) get(t *testing.T, id string) *profile.Profile {
	t.Helper()
	p, err := f.profiles.GetByID(context.Background(), id)
	require.NoError(t, err)
	return p
}

// match makes a and b mutually matched and returns the match id
func (f *fixture) match(t *testing.T, a, b string) string {
	t.Helper()
	ctx := context.Background()
	_, err := f.matches.Like(ctx, a, b)
	require.NoError(t, err)
	res, err := f.matches.Like(ctx, b, a)
	require.NoError(t, err)
	require.True(t, res.Matched)
	return res.MatchID
}

// acceptedDate returns an accepted date requested by a on their match with b
func (f *fixture) acceptedDate(t *testing.T, a, b string) *DateRequest {
	t.Helper()
	ctx := context.Background()
	matchID := f.match(t, a, b)
	req, err := f.dates.RequestDate(ctx, a, &RequestDateDTO{MatchID: matchID, Venue: "Blue Bottle"})
	require.NoError(t, err)
	accepted, err := f.dates.Respond(ctx, req.ID, b, DateAccepted)
	require.NoError(t, err)
	return accepted
}
