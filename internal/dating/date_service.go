// internal/dating/date_service.go

package dating

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/imadgeboyega/covenant-backend/internal/common/logger"
	"github.com/imadgeboyega/covenant-backend/internal/common/utils"
	"github.com/imadgeboyega/covenant-backend/internal/notification"
	"github.com/imadgeboyega/covenant-backend/internal/profile"
)

// DateService is the request, respond and "we met" workflow on a match
type DateService interface {
	RequestDate(ctx context.Context, requesterID string, dto *RequestDateDTO) (*DateRequest, error)
	Respond(ctx context.Context, dateID, recipientID string, decision DateStatus) (*DateRequest, error)
	ConfirmMet(ctx context.Context, dateID, userID string) (*ConfirmMetResult, error)
	Cancel(ctx context.Context, dateID, userID string) (*DateRequest, error)
	ListDates(ctx context.Context, userID string) ([]*DateRequest, error)

	// SendReminders notifies both sides of accepted dates starting within
	// [now+window-interval, now+window); consecutive runs tile without overlap
	SendReminders(ctx context.Context, window, interval time.Duration, batch int) (int, error)
}

type dateService struct {
	dates    DateRepository
	matches  MatchRepository
	profiles profile.Store
	notifier notification.Notifier
	award    int
	now      func() time.Time
}

// NewDateService creates the workflow. award is the reputation added to
// both participants when a date completes.
func NewDateService(dates DateRepository, matches MatchRepository, profiles profile.Store, notifier notification.Notifier, award int) DateService {
	if notifier == nil {
		notifier = notification.Nop{}
	}
	return &dateService{
		dates:    dates,
		matches:  matches,
		profiles: profiles,
		notifier: notifier,
		award:    award,
		now:      time.Now,
	}
}

func (s *dateService) displayName(ctx context.Context, userID string) string {
	p, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return ""
	}
	return p.Name
}

func (s *dateService) RequestDate(ctx context.Context, requesterID string, dto *RequestDateDTO) (*DateRequest, error) {
	if dto == nil || dto.MatchID == "" {
		return nil, ErrMissingMatchID
	}
	if err := utils.ValidateStruct(dto); err != nil {
		return nil, err
	}

	match, err := s.matches.GetByID(ctx, dto.MatchID)
	if err != nil {
		return nil, err
	}
	if !match.HasParticipant(requesterID) {
		return nil, ErrNotParticipant
	}
	if match.Status != MatchMatched {
		return nil, ErrMatchNotActive
	}

	declined, err := s.dates.CountDeclined(ctx, match.ID, requesterID)
	if err != nil {
		return nil, err
	}
	if declined >= maxDeclinedRequests {
		return nil, ErrDeclineLimit
	}

	stage := dto.Stage
	if stage == "" {
		stage = StageFirstMeeting
	}
	req := &DateRequest{
		ID:           uuid.NewString(),
		MatchID:      match.ID,
		RequesterID:  requesterID,
		RecipientID:  match.Partner(requesterID),
		Stage:        stage,
		Category:     dto.Category,
		Venue:        dto.Venue,
		ProposedDate: dto.ProposedDate,
		ProposedTime: dto.ProposedTime,
		Message:      dto.Message,
		Status:       DatePending,
	}
	if err := s.dates.Create(ctx, req); err != nil {
		return nil, err
	}

	dateRequestsTotal.WithLabelValues(string(DatePending)).Inc()
	logger.Ctx(ctx).Info().Str("date_id", req.ID).Str("match_id", match.ID).Msg("date requested")

	s.notifier.Notify(ctx, req.RecipientID, notification.EventDateRequested, map[string]string{
		"dateId":        req.ID,
		"matchId":       match.ID,
		"requesterId":   requesterID,
		"requesterName": s.displayName(ctx, requesterID),
		"stage":         string(req.Stage),
		"venue":         req.Venue,
	})
	return req, nil
}

func (s *dateService) Respond(ctx context.Context, dateID, recipientID string, decision DateStatus) (*DateRequest, error) {
	if decision != DateAccepted && decision != DateDeclined {
		return nil, ErrInvalidDecision
	}
	req, err := s.dates.GetByID(ctx, dateID)
	if err != nil {
		return nil, err
	}
	if req.RecipientID != recipientID {
		return nil, ErrNotRecipient
	}
	if req.Status != DatePending {
		return nil, ErrDateNotPending
	}

	updated, err := s.dates.Transition(ctx, dateID, DatePending, decision)
	if errors.Is(err, ErrDateStateChanged) {
		return nil, ErrDateNotPending
	}
	if err != nil {
		return nil, err
	}

	dateRequestsTotal.WithLabelValues(string(decision)).Inc()
	responseTime.WithLabelValues(string(decision)).Observe(s.now().Sub(req.CreatedAt).Seconds())

	s.notifier.Notify(ctx, updated.RequesterID, notification.EventDateResponded, map[string]string{
		"dateId":        updated.ID,
		"status":        string(decision),
		"recipientId":   recipientID,
		"recipientName": s.displayName(ctx, recipientID),
	})
	return updated, nil
}

// ConfirmMet records one side's "we met". The confirmation that sets the
// second flag closes the request and awards reputation, exactly once no
// matter how many confirmations race.
func (s *dateService) ConfirmMet(ctx context.Context, dateID, userID string) (*ConfirmMetResult, error) {
	req, err := s.dates.GetByID(ctx, dateID)
	if err != nil {
		return nil, err
	}
	if !req.HasParticipant(userID) {
		return nil, ErrNotParticipant
	}

	switch req.Status {
	case DateCompleted:
		return &ConfirmMetResult{DateRequest: req}, nil
	case DateAccepted:
	default:
		return nil, ErrDateNotAccepted
	}

	marked, err := s.dates.MarkMet(ctx, dateID, userID)
	if errors.Is(err, ErrDateStateChanged) {
		return s.settled(ctx, dateID)
	}
	if err != nil {
		return nil, err
	}
	if !marked.RequesterMet || !marked.RecipientMet {
		return &ConfirmMetResult{DateRequest: marked}, nil
	}

	completed, won, err := s.dates.Complete(ctx, dateID, s.award)
	if err != nil {
		return nil, err
	}
	if !won {
		return s.settled(ctx, dateID)
	}

	datesCompleted.Inc()
	reputationAwarded.Add(float64(2 * s.award))
	logger.Ctx(ctx).Info().Str("date_id", dateID).Int("award", s.award).Msg("date completed, reputation awarded")

	for _, id := range []string{completed.RequesterID, completed.RecipientID} {
		s.notifier.Notify(ctx, id, notification.EventDateCompleted, map[string]string{
			"dateId":    completed.ID,
			"partnerId": completed.Partner(id),
		})
	}
	return &ConfirmMetResult{DateRequest: completed, Completed: true}, nil
}

// settled re-reads a request another caller moved under us
func (s *dateService) settled(ctx context.Context, dateID string) (*ConfirmMetResult, error) {
	req, err := s.dates.GetByID(ctx, dateID)
	if err != nil {
		return nil, err
	}
	if req.Status != DateCompleted && req.Status != DateAccepted {
		return nil, ErrDateNotAccepted
	}
	return &ConfirmMetResult{DateRequest: req}, nil
}

func (s *dateService) Cancel(ctx context.Context, dateID, userID string) (*DateRequest, error) {
	req, err := s.dates.GetByID(ctx, dateID)
	if err != nil {
		return nil, err
	}
	if req.RequesterID != userID {
		return nil, ErrNotRequester
	}
	if req.Status != DatePending {
		return nil, ErrDateNotPending
	}

	updated, err := s.dates.Transition(ctx, dateID, DatePending, DateCancelled)
	if errors.Is(err, ErrDateStateChanged) {
		return nil, ErrDateNotPending
	}
	if err != nil {
		return nil, err
	}

	dateRequestsTotal.WithLabelValues(string(DateCancelled)).Inc()
	s.notifier.Notify(ctx, updated.RecipientID, notification.EventDateCancelled, map[string]string{
		"dateId":        updated.ID,
		"requesterId":   userID,
		"requesterName": s.displayName(ctx, userID),
	})
	return updated, nil
}

func (s *dateService) ListDates(ctx context.Context, userID string) ([]*DateRequest, error) {
	return s.dates.ListForUser(ctx, userID)
}

func (s *dateService) SendReminders(ctx context.Context, window, interval time.Duration, batch int) (int, error) {
	if batch <= 0 {
		batch = 200
	}
	now := s.now()
	to := now.Add(window)
	from := to.Add(-interval)
	if from.Before(now) {
		from = now
	}

	sent := 0
	after := ""
	for {
		page, err := s.dates.ListUpcoming(ctx, from, to, after, batch)
		if err != nil {
			return sent, err
		}
		for _, d := range page {
			when := d.ProposedDate.Format("Mon Jan 2 15:04")
			if d.ProposedTime != "" {
				when = d.ProposedDate.Format("Mon Jan 2") + " " + d.ProposedTime
			}
			for _, id := range []string{d.RequesterID, d.RecipientID} {
				s.notifier.Notify(ctx, id, notification.EventDateReminder, map[string]string{
					"dateId":      d.ID,
					"partnerName": s.displayName(ctx, d.Partner(id)),
					"venue":       d.Venue,
					"when":        when,
				})
				sent++
			}
		}
		if len(page) < batch {
			return sent, nil
		}
		after = page[len(page)-1].ID
	}
}
