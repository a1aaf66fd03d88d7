package dating

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imadgeboyega/covenant-backend/internal/common/apperrors"
	"github.com/imadgeboyega/covenant-backend/internal/notification"
)

func TestWeMetScenario(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	ctx := context.Background()
	date := f.acceptedDate(t, "alice", "bob")

	first, err := f.dates.ConfirmMet(ctx, date.ID, "alice")
	require.NoError(t, err)
	assert.False(t, first.Completed)
	assert.True(t, first.RequesterMet)
	assert.False(t, first.RecipientMet)
	assert.Equal(t, DateAccepted, first.Status)

	second, err := f.dates.ConfirmMet(ctx, date.ID, "bob")
	require.NoError(t, err)
	assert.True(t, second.Completed)
	assert.True(t, second.WeMet)
	assert.True(t, second.ReputationAwarded)
	assert.Equal(t, DateCompleted, second.Status)

	assert.Equal(t, 1, f.get(t, "alice").ReputationScore)
	assert.Equal(t, 1, f.get(t, "bob").ReputationScore)
	assert.Len(t, f.notifier.events(notification.EventDateCompleted), 2)

	again, err := f.dates.ConfirmMet(ctx, date.ID, "alice")
	require.NoError(t, err)
	assert.False(t, again.Completed)
	assert.Equal(t, DateCompleted, again.Status)
	assert.Equal(t, 1, f.get(t, "alice").ReputationScore)
}

func TestConfirmMet_SameSideTwice(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	ctx := context.Background()
	date := f.acceptedDate(t, "alice", "bob")

	for i := 0; i < 3; i++ {
		res, err := f.dates.ConfirmMet(ctx, date.ID, "bob")
		require.NoError(t, err)
		assert.False(t, res.Completed)
		assert.True(t, res.RecipientMet)
		assert.False(t, res.RequesterMet)
	}
	assert.Zero(t, f.get(t, "bob").ReputationScore)
}

func TestConfirmMet_ExactlyOnceUnderConcurrency(t *testing.T) {
	for i := 0; i < 25; i++ {
		a, b := fmt.Sprintf("a%d", i), fmt.Sprintf("b%d", i)
		f := newFixture(t, a, b)
		ctx := context.Background()
		date := f.acceptedDate(t, a, b)

		callers := []string{a, b, a, b}
		results := make([]*ConfirmMetResult, len(callers))
		errs := make([]error, len(callers))

		var wg sync.WaitGroup
		start := make(chan struct{})
		for j, id := range callers {
			wg.Add(1)
			go func(j int, id string) {
				defer wg.Done()
				<-start
				results[j], errs[j] = f.dates.ConfirmMet(ctx, date.ID, id)
			}(j, id)
		}
		close(start)
		wg.Wait()

		completed := 0
		for j := range callers {
			require.NoError(t, errs[j])
			if results[j].Completed {
				completed++
			}
		}
		assert.Equal(t, 1, completed, "exactly one confirmation closes the date")
		assert.Equal(t, 1, f.get(t, a).ReputationScore)
		assert.Equal(t, 1, f.get(t, b).ReputationScore)

		final, err := f.dateRepo.GetByID(ctx, date.ID)
		require.NoError(t, err)
		assert.Equal(t, DateCompleted, final.Status)
		assert.True(t, final.WeMet)
	}
}

func TestConfirmMet_Rejections(t *testing.T) {
	f := newFixture(t, "alice", "bob", "carol")
	ctx := context.Background()
	matchID := f.match(t, "alice", "bob")

	pending, err := f.dates.RequestDate(ctx, "alice", &RequestDateDTO{MatchID: matchID})
	require.NoError(t, err)

	_, err = f.dates.ConfirmMet(ctx, pending.ID, "alice")
	assert.ErrorIs(t, err, ErrDateNotAccepted)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))

	_, err = f.dates.ConfirmMet(ctx, pending.ID, "carol")
	assert.ErrorIs(t, err, ErrNotParticipant)

	_, err = f.dates.ConfirmMet(ctx, "missing", "alice")
	assert.ErrorIs(t, err, ErrDateNotFound)

	_, err = f.dates.Respond(ctx, pending.ID, "bob", DateDeclined)
	require.NoError(t, err)
	_, err = f.dates.ConfirmMet(ctx, pending.ID, "bob")
	assert.ErrorIs(t, err, ErrDateNotAccepted)
}

func TestRequestDate(t *testing.T) {
	f := newFixture(t, "alice", "bob", "carol")
	ctx := context.Background()
	matchID := f.match(t, "alice", "bob")
	when := time.Date(2026, 11, 7, 19, 0, 0, 0, time.UTC)

	req, err := f.dates.RequestDate(ctx, "alice", &RequestDateDTO{
		MatchID: matchID, Stage: StageCourtship, Category: "Dinner", Venue: "Olive Garden", ProposedDate: &when, ProposedTime: "7pm",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", req.RequesterID)
	assert.Equal(t, "bob", req.RecipientID)
	assert.Equal(t, DatePending, req.Status)
	assert.Equal(t, StageCourtship, req.Stage)

	events := f.notifier.events(notification.EventDateRequested)
	require.Len(t, events, 1)
	assert.Equal(t, "bob", events[0].userID)
	assert.Equal(t, "name-alice", events[0].payload["requesterName"])

	_, err = f.dates.RequestDate(ctx, "alice", &RequestDateDTO{MatchID: matchID})
	assert.ErrorIs(t, err, ErrDuplicatePending)

	other, err := f.dates.RequestDate(ctx, "bob", &RequestDateDTO{MatchID: matchID})
	require.NoError(t, err, "the other side may have its own pending request")
	assert.Equal(t, StageFirstMeeting, other.Stage)

	_, err = f.dates.RequestDate(ctx, "carol", &RequestDateDTO{MatchID: matchID})
	assert.ErrorIs(t, err, ErrNotParticipant)

	_, err = f.dates.RequestDate(ctx, "alice", &RequestDateDTO{MatchID: "missing"})
	assert.ErrorIs(t, err, ErrMatchNotFound)

	_, err = f.dates.RequestDate(ctx, "alice", &RequestDateDTO{})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	_, err = f.dates.RequestDate(ctx, "alice", &RequestDateDTO{MatchID: matchID, Stage: "Elopement"})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	_, err = f.dates.Cancel(ctx, req.ID, "alice")
	require.NoError(t, err)
	_, err = f.dates.RequestDate(ctx, "alice", &RequestDateDTO{MatchID: matchID})
	assert.NoError(t, err, "a cancelled request frees the slot")
}

func TestRequestDate_RequiresActiveMatch(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	ctx := context.Background()

	like, err := f.matches.Like(ctx, "alice", "bob")
	require.NoError(t, err)
	_, err = f.dates.RequestDate(ctx, "alice", &RequestDateDTO{MatchID: like.MatchID})
	assert.ErrorIs(t, err, ErrMatchNotActive)

	_, err = f.matches.Like(ctx, "bob", "alice")
	require.NoError(t, err)
	require.NoError(t, f.matches.Unmatch(ctx, like.MatchID, "bob"))
	_, err = f.dates.RequestDate(ctx, "alice", &RequestDateDTO{MatchID: like.MatchID})
	assert.ErrorIs(t, err, ErrMatchNotActive)
}

func TestRequestDate_DeclineLimit(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	ctx := context.Background()
	matchID := f.match(t, "alice", "bob")

	for i := 0; i < maxDeclinedRequests; i++ {
		req, err := f.dates.RequestDate(ctx, "alice", &RequestDateDTO{MatchID: matchID})
		require.NoError(t, err)
		_, err = f.dates.Respond(ctx, req.ID, "bob", DateDeclined)
		require.NoError(t, err)
	}

	_, err := f.dates.RequestDate(ctx, "alice", &RequestDateDTO{MatchID: matchID})
	assert.ErrorIs(t, err, ErrDeclineLimit)
}

func TestRespond(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	ctx := context.Background()
	matchID := f.match(t, "alice", "bob")
	req, err := f.dates.RequestDate(ctx, "alice", &RequestDateDTO{MatchID: matchID})
	require.NoError(t, err)

	_, err = f.dates.Respond(ctx, req.ID, "bob", "maybe")
	assert.ErrorIs(t, err, ErrInvalidDecision)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	assert.NotErrorIs(t, err, ErrMissingMatchID)

	_, err = f.dates.Respond(ctx, req.ID, "alice", DateAccepted)
	assert.ErrorIs(t, err, ErrNotRecipient)

	_, err = f.dates.Respond(ctx, "missing", "bob", DateAccepted)
	assert.ErrorIs(t, err, ErrDateNotFound)

	accepted, err := f.dates.Respond(ctx, req.ID, "bob", DateAccepted)
	require.NoError(t, err)
	assert.Equal(t, DateAccepted, accepted.Status)

	events := f.notifier.events(notification.EventDateResponded)
	require.Len(t, events, 1)
	assert.Equal(t, "alice", events[0].userID)
	assert.Equal(t, "accepted", events[0].payload["status"])

	_, err = f.dates.Respond(ctx, req.ID, "bob", DateDeclined)
	assert.ErrorIs(t, err, ErrDateNotPending)
}

func TestCancel(t *testing.T) {
	f := newFixture(t, "alice", "bob")
	ctx := context.Background()
	matchID := f.match(t, "alice", "bob")
	req, err := f.dates.RequestDate(ctx, "alice", &RequestDateDTO{MatchID: matchID})
	require.NoError(t, err)

	_, err = f.dates.Cancel(ctx, req.ID, "bob")
	assert.ErrorIs(t, err, ErrNotRequester)

	cancelled, err := f.dates.Cancel(ctx, req.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, DateCancelled, cancelled.Status)
	assert.Len(t, f.notifier.events(notification.EventDateCancelled), 1)

	_, err = f.dates.Cancel(ctx, req.ID, "alice")
	assert.ErrorIs(t, err, ErrDateNotPending)
	_, err = f.dates.Respond(ctx, req.ID, "bob", DateAccepted)
	assert.ErrorIs(t, err, ErrDateNotPending)
}

func TestListDates_NewestFirst(t *testing.T) {
	f := newFixture(t, "alice", "bob", "carol")
	clock := &stepClock{t: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)}
	f.dateRepo.(*memoryDateRepository).now = clock.Now
	ctx := context.Background()

	ab := f.match(t, "alice", "bob")
	ac := f.match(t, "alice", "carol")

	first, err := f.dates.RequestDate(ctx, "alice", &RequestDateDTO{MatchID: ab})
	require.NoError(t, err)
	second, err := f.dates.RequestDate(ctx, "carol", &RequestDateDTO{MatchID: ac})
	require.NoError(t, err)

	dates, err := f.dates.ListDates(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, dates, 2)
	assert.Equal(t, second.ID, dates[0].ID)
	assert.Equal(t, first.ID, dates[1].ID)

	dates, err = f.dates.ListDates(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, dates, 1)

	dates, err = f.dates.ListDates(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, dates)
}

func TestSendReminders(t *testing.T) {
	f := newFixture(t, "alice", "bob", "carol")
	ctx := context.Background()
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	f.dates.(*dateService).now = func() time.Time { return now }

	soon := now.Add(23*time.Hour + 30*time.Minute)
	later := now.Add(10 * time.Hour)

	ab := f.match(t, "alice", "bob")
	req, err := f.dates.RequestDate(ctx, "alice", &RequestDateDTO{MatchID: ab, Venue: "Park", ProposedDate: &soon})
	require.NoError(t, err)
	_, err = f.dates.Respond(ctx, req.ID, "bob", DateAccepted)
	require.NoError(t, err)

	ac := f.match(t, "alice", "carol")
	req2, err := f.dates.RequestDate(ctx, "carol", &RequestDateDTO{MatchID: ac, ProposedDate: &later})
	require.NoError(t, err)
	_, err = f.dates.Respond(ctx, req2.ID, "alice", DateAccepted)
	require.NoError(t, err)

	sent, err := f.dates.SendReminders(ctx, 24*time.Hour, time.Hour, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	events := f.notifier.events(notification.EventDateReminder)
	require.Len(t, events, 2)
	assert.ElementsMatch(t, []string{"alice", "bob"}, []string{events[0].userID, events[1].userID})
	for _, ev := range events {
		assert.Equal(t, "Park", ev.payload["venue"])
	}
}

func TestSendReminders_WindowIsHalfOpen(t *testing.T) {
	f := newFixture(t, "alice", "bob", "carol", "dave")
	ctx := context.Background()
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	f.dates.(*dateService).now = func() time.Time { return now }

	accept := func(a, b string, at time.Time) {
		matchID := f.match(t, a, b)
		req, err := f.dates.RequestDate(ctx, a, &RequestDateDTO{MatchID: matchID, ProposedDate: &at})
		require.NoError(t, err)
		_, err = f.dates.Respond(ctx, req.ID, b, DateAccepted)
		require.NoError(t, err)
	}
	accept("alice", "bob", now.Add(23*time.Hour))  // window start, included
	accept("carol", "dave", now.Add(24*time.Hour)) // window end, left for the next run

	sent, err := f.dates.SendReminders(ctx, 24*time.Hour, time.Hour, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	events := f.notifier.events(notification.EventDateReminder)
	require.Len(t, events, 2)
	assert.ElementsMatch(t, []string{"alice", "bob"}, []string{events[0].userID, events[1].userID})

	// an hour later the second date is at the start of the next window
	now = now.Add(time.Hour)
	sent, err = f.dates.SendReminders(ctx, 24*time.Hour, time.Hour, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	events = f.notifier.events(notification.EventDateReminder)
	require.Len(t, events, 4)
	assert.ElementsMatch(t, []string{"carol", "dave"}, []string{events[2].userID, events[3].userID})
}
