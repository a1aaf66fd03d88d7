// internal/dating/match_service.go

package dating

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/imadgeboyega/covenant-backend/internal/common/logger"
	"github.com/imadgeboyega/covenant-backend/internal/notification"
	"github.com/imadgeboyega/covenant-backend/internal/profile"
)

// MatchService is the like/pass/unmatch/block state machine
type MatchService interface {
	Like(ctx context.Context, userID, targetID string) (*LikeResult, error)
	Pass(ctx context.Context, userID, targetID string) (*PassResult, error)
	Unmatch(ctx context.Context, matchID, userID string) error
	Block(ctx context.Context, userID, targetID string) error
	Unblock(ctx context.Context, userID, targetID string) error
	GetMatches(ctx context.Context, userID string) ([]*MatchView, error)
	WhoLikedMe(ctx context.Context, userID string) ([]profile.PublicProfile, error)
}

type matchService struct {
	matches  MatchRepository
	profiles profile.Store
	notifier notification.Notifier
	now      func() time.Time
}

func NewMatchService(matches MatchRepository, profiles profile.Store, notifier notification.Notifier) MatchService {
	if notifier == nil {
		notifier = notification.Nop{}
	}
	return &matchService{
		matches:  matches,
		profiles: profiles,
		notifier: notifier,
		now:      time.Now,
	}
}

// actor loads the calling user and rejects suspended accounts
func (s *matchService) actor(ctx context.Context, userID string) (*profile.Profile, error) {
	p, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p.IsBanned || p.IsDeleted {
		return nil, ErrAccountSuspended
	}
	return p, nil
}

// target loads the other side of an action
func (s *matchService) target(ctx context.Context, targetID string) (*profile.Profile, error) {
	p, err := s.profiles.GetByID(ctx, targetID)
	if errors.Is(err, profile.ErrProfileNotFound) {
		return nil, ErrTargetNotFound
	}
	if err != nil {
		return nil, err
	}
	if p.IsDeleted {
		return nil, ErrTargetNotFound
	}
	return p, nil
}

func (s *matchService) Like(ctx context.Context, userID, targetID string) (*LikeResult, error) {
	if userID == targetID {
		return nil, ErrSelfAction
	}
	caller, err := s.actor(ctx, userID)
	if err != nil {
		return nil, err
	}
	target, err := s.target(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target.IsBanned || caller.InSet(profile.RelationBlocked, targetID) || target.InSet(profile.RelationBlocked, userID) {
		return nil, ErrBlocked
	}

	for attempt := 0; attempt < maxLikeAttempts; attempt++ {
		rec, err := s.matches.GetByPair(ctx, userID, targetID)
		if errors.Is(err, ErrMatchNotFound) {
			res, err := s.createPending(ctx, userID, targetID)
			if errors.Is(err, ErrPairExists) {
				// the other side liked us in the same instant; go round and promote
				likeRetries.Inc()
				continue
			}
			return res, err
		}
		if err != nil {
			return nil, err
		}

		switch {
		case rec.Status == MatchMatched:
			return nil, ErrAlreadyMatched
		case rec.Status == MatchUnmatched:
			return nil, ErrPairClosed
		case rec.Initiator == userID:
			return nil, ErrAlreadyLiked
		}

		res, err := s.promote(ctx, rec, caller, target)
		if errors.Is(err, ErrMatchStateChanged) {
			likeRetries.Inc()
			continue
		}
		return res, err
	}
	return nil, ErrLikeContention
}

func (s *matchService) createPending(ctx context.Context, userID, targetID string) (*LikeResult, error) {
	rec := &MatchRecord{
		ID:        uuid.NewString(),
		UserID1:   userID,
		UserID2:   targetID,
		Initiator: userID,
	}
	if err := s.matches.InsertPending(ctx, rec); err != nil {
		return nil, err
	}
	if err := s.profiles.AddToSet(ctx, targetID, profile.RelationLikedBy, userID); err != nil {
		return nil, err
	}
	likesTotal.WithLabelValues("pending").Inc()
	logger.Ctx(ctx).Debug().Str("target_id", targetID).Str("match_id", rec.ID).Msg("like recorded")

	return &LikeResult{Matched: false, MatchID: rec.ID}, nil
}

// promote turns the target's pending like into a mutual match
func (s *matchService) promote(ctx context.Context, rec *MatchRecord, caller, target *profile.Profile) (*LikeResult, error) {
	conv := &Conversation{
		ID:           uuid.NewString(),
		MatchID:      rec.ID,
		Participants: []string{rec.UserID1, rec.UserID2},
	}
	matched, conv, err := s.matches.Promote(ctx, rec.ID, target.ID, s.now(), conv)
	if err != nil {
		return nil, err
	}

	if err := s.profiles.AddToSet(ctx, caller.ID, profile.RelationMatches, target.ID); err != nil {
		return nil, err
	}
	if err := s.profiles.AddToSet(ctx, target.ID, profile.RelationMatches, caller.ID); err != nil {
		return nil, err
	}

	likesTotal.WithLabelValues("matched").Inc()
	matchesTotal.Inc()
	logger.Ctx(ctx).Info().Str("match_id", matched.ID).Str("conversation_id", conv.ID).Msg("mutual match")

	s.notifier.Notify(ctx, caller.ID, notification.EventMutualMatch, map[string]string{
		"matchId": matched.ID, "conversationId": conv.ID, "partnerId": target.ID, "partnerName": target.Name,
	})
	s.notifier.Notify(ctx, target.ID, notification.EventMutualMatch, map[string]string{
		"matchId": matched.ID, "conversationId": conv.ID, "partnerId": caller.ID, "partnerName": caller.Name,
	})

	return &LikeResult{Matched: true, MatchID: matched.ID, ConversationID: conv.ID}, nil
}

func (s *matchService) Pass(ctx context.Context, userID, targetID string) (*PassResult, error) {
	if userID == targetID {
		return nil, ErrSelfAction
	}
	if _, err := s.actor(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.target(ctx, targetID); err != nil {
		return nil, err
	}
	if err := s.profiles.AddToSet(ctx, userID, profile.RelationPassedBy, targetID); err != nil {
		return nil, err
	}
	passesTotal.Inc()
	return &PassResult{OK: true}, nil
}

func (s *matchService) Unmatch(ctx context.Context, matchID, userID string) error {
	if matchID == "" {
		return ErrMissingMatchID
	}
	rec, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		return err
	}
	if !rec.HasParticipant(userID) {
		return ErrNotParticipant
	}
	if rec.Status == MatchUnmatched {
		return ErrAlreadyUnmatched
	}

	ended, err := s.matches.Unmatch(ctx, matchID)
	if errors.Is(err, ErrMatchStateChanged) {
		return ErrAlreadyUnmatched
	}
	if err != nil {
		return err
	}

	if err := s.profiles.RemoveFromSet(ctx, ended.UserID1, profile.RelationMatches, ended.UserID2); err != nil {
		return err
	}
	if err := s.profiles.RemoveFromSet(ctx, ended.UserID2, profile.RelationMatches, ended.UserID1); err != nil {
		return err
	}
	// the pair is closed for good; each side counts as passed by the other
	if err := s.profiles.AddToSet(ctx, ended.UserID1, profile.RelationPassedBy, ended.UserID2); err != nil {
		return err
	}
	if err := s.profiles.AddToSet(ctx, ended.UserID2, profile.RelationPassedBy, ended.UserID1); err != nil {
		return err
	}

	unmatchesTotal.Inc()
	logger.Ctx(ctx).Info().Str("match_id", matchID).Msg("unmatched")
	return nil
}

// Block hides target from the caller for good. The pair's record and
// conversation are hard-deleted and the blocked user is not told.
func (s *matchService) Block(ctx context.Context, userID, targetID string) error {
	if userID == targetID {
		return ErrSelfAction
	}
	if _, err := s.target(ctx, targetID); err != nil {
		return err
	}
	if err := s.profiles.AddToSet(ctx, userID, profile.RelationBlocked, targetID); err != nil {
		return err
	}

	deleted, err := s.matches.DeletePair(ctx, userID, targetID)
	if err != nil {
		return err
	}
	if err := s.profiles.RemoveFromSet(ctx, userID, profile.RelationMatches, targetID); err != nil {
		return err
	}
	if err := s.profiles.RemoveFromSet(ctx, targetID, profile.RelationMatches, userID); err != nil {
		return err
	}

	blocksTotal.Inc()
	logger.Ctx(ctx).Info().Str("target_id", targetID).Bool("record_deleted", deleted).Msg("user blocked")
	return nil
}

func (s *matchService) Unblock(ctx context.Context, userID, targetID string) error {
	if userID == targetID {
		return ErrSelfAction
	}
	return s.profiles.RemoveFromSet(ctx, userID, profile.RelationBlocked, targetID)
}

func (s *matchService) GetMatches(ctx context.Context, userID string) ([]*MatchView, error) {
	records, err := s.matches.ListMatched(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []*MatchView{}, nil
	}

	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.Partner(userID))
	}
	partners, err := s.profiles.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*profile.Profile, len(partners))
	for _, p := range partners {
		byID[p.ID] = p
	}

	now := s.now()
	views := make([]*MatchView, 0, len(records))
	for _, rec := range records {
		partner, ok := byID[rec.Partner(userID)]
		if !ok || partner.IsDeleted {
			continue
		}
		view := &MatchView{
			MatchID:   rec.ID,
			MatchedAt: rec.MatchedAt,
			Partner:   partner.Public(now),
		}
		if rec.ConversationID != nil {
			view.ConversationID = *rec.ConversationID
		}
		views = append(views, view)
	}
	return views, nil
}

// WhoLikedMe lists the users whose likes still wait for an answer. likedBy
// keeps every like ever received; matched, blocked and passed ones are done.
func (s *matchService) WhoLikedMe(ctx context.Context, userID string) ([]profile.PublicProfile, error) {
	me, err := s.actor(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(me.LikedBy))
	for _, id := range me.LikedBy {
		if answered(me, id) {
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return []profile.PublicProfile{}, nil
	}

	admirers, err := s.profiles.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]profile.PublicProfile, 0, len(admirers))
	for _, p := range admirers {
		if !p.Discoverable() {
			continue
		}
		out = append(out, p.Public(now))
	}
	return out, nil
}

// answered reports whether a like from id no longer waits on p
func answered(p *profile.Profile, id string) bool {
	return p.InSet(profile.RelationMatches, id) ||
		p.InSet(profile.RelationBlocked, id) ||
		p.InSet(profile.RelationPassedBy, id)
}
