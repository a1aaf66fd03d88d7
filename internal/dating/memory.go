// internal/dating/memory.go
// In-process repositories for development and tests. Each operation holds the
// repository mutex for its whole conditional write, which gives the same
// atomicity the Postgres statements get from row locks and unique indexes.

package dating

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/imadgeboyega/covenant-backend/internal/profile"
)

type pairKey struct{ lo, hi string }

func keyFor(a, b string) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

type memoryMatchRepository struct {
	mu            sync.Mutex
	records       map[string]*MatchRecord
	pairs         map[pairKey]string
	conversations map[string]*Conversation // by match id
	now           func() time.Time
}

func NewMemoryMatchRepository() MatchRepository {
	return &memoryMatchRepository{
		records:       make(map[string]*MatchRecord),
		pairs:         make(map[pairKey]string),
		conversations: make(map[string]*Conversation),
		now:           time.Now,
	}
}

func (r *memoryMatchRepository) InsertPending(_ context.Context, rec *MatchRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := keyFor(rec.UserID1, rec.UserID2)
	if _, ok := r.pairs[key]; ok {
		return ErrPairExists
	}
	now := r.now().UTC()
	rec.Status = MatchPending
	rec.CreatedAt = now
	rec.UpdatedAt = now
	r.records[rec.ID] = rec.clone()
	r.pairs[key] = rec.ID
	return nil
}

func (r *memoryMatchRepository) GetByID(_ context.Context, id string) (*MatchRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, ErrMatchNotFound
	}
	return rec.clone(), nil
}

func (r *memoryMatchRepository) GetByPair(_ context.Context, userA, userB string) (*MatchRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.pairs[keyFor(userA, userB)]
	if !ok {
		return nil, ErrMatchNotFound
	}
	return r.records[id].clone(), nil
}

func (r *memoryMatchRepository) Promote(_ context.Context, id, initiatorID string, at time.Time, conv *Conversation) (*MatchRecord, *Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok || rec.Status != MatchPending || rec.Initiator != initiatorID {
		return nil, nil, ErrMatchStateChanged
	}
	matchedAt := at.UTC()
	rec.Status = MatchMatched
	rec.MatchedAt = &matchedAt
	rec.UpdatedAt = r.now().UTC()

	existing, ok := r.conversations[id]
	if !ok {
		existing = &Conversation{
			ID:           conv.ID,
			MatchID:      id,
			Participants: append([]string(nil), conv.Participants...),
			CreatedAt:    rec.UpdatedAt,
		}
		r.conversations[id] = existing
	}
	out := *existing
	out.Participants = append([]string(nil), existing.Participants...)
	return rec.clone(), &out, nil
}

func (r *memoryMatchRepository) Unmatch(_ context.Context, id string) (*MatchRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok || rec.Status == MatchUnmatched {
		return nil, ErrMatchStateChanged
	}
	rec.Status = MatchUnmatched
	rec.UpdatedAt = r.now().UTC()
	return rec.clone(), nil
}

func (r *memoryMatchRepository) DeletePair(_ context.Context, userA, userB string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := keyFor(userA, userB)
	id, ok := r.pairs[key]
	if !ok {
		return false, nil
	}
	delete(r.pairs, key)
	delete(r.records, id)
	delete(r.conversations, id)
	return true, nil
}

func (r *memoryMatchRepository) ListMatched(_ context.Context, userID string) ([]*MatchRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []*MatchRecord{}
	for _, rec := range r.records {
		if rec.Status != MatchMatched || !rec.HasParticipant(userID) {
			continue
		}
		c := rec.clone()
		if conv, ok := r.conversations[rec.ID]; ok {
			id := conv.ID
			c.ConversationID = &id
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := out[i].MatchedAt, out[j].MatchedAt
		if !ti.Equal(*tj) {
			return ti.After(*tj)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

type memoryDateRepository struct {
	mu       sync.Mutex
	requests map[string]*DateRequest
	profiles profile.Store
	now      func() time.Time
}

// NewMemoryDateRepository keeps requests in memory and awards reputation
// through profiles
func NewMemoryDateRepository(profiles profile.Store) DateRepository {
	return &memoryDateRepository{
		requests: make(map[string]*DateRequest),
		profiles: profiles,
		now:      time.Now,
	}
}

func (r *memoryDateRepository) Create(_ context.Context, d *DateRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.requests {
		if existing.MatchID == d.MatchID && existing.RequesterID == d.RequesterID && existing.Status == DatePending {
			return ErrDuplicatePending
		}
	}
	now := r.now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now
	r.requests[d.ID] = d.clone()
	return nil
}

func (r *memoryDateRepository) GetByID(_ context.Context, id string) (*DateRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.requests[id]
	if !ok {
		return nil, ErrDateNotFound
	}
	return d.clone(), nil
}

func (r *memoryDateRepository) Transition(_ context.Context, id string, from, to DateStatus) (*DateRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.requests[id]
	if !ok || d.Status != from {
		return nil, ErrDateStateChanged
	}
	d.Status = to
	d.UpdatedAt = r.now().UTC()
	return d.clone(), nil
}

func (r *memoryDateRepository) MarkMet(_ context.Context, id, userID string) (*DateRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.requests[id]
	if !ok || d.Status != DateAccepted || !d.HasParticipant(userID) {
		return nil, ErrDateStateChanged
	}
	if d.RequesterID == userID {
		d.RequesterMet = true
	}
	if d.RecipientID == userID {
		d.RecipientMet = true
	}
	d.UpdatedAt = r.now().UTC()
	return d.clone(), nil
}

func (r *memoryDateRepository) Complete(ctx context.Context, id string, award int) (*DateRequest, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.requests[id]
	if !ok || d.Status != DateAccepted || !d.RequesterMet || !d.RecipientMet || d.ReputationAwarded {
		return nil, false, nil
	}

	if award > 0 {
		// both sides must exist before either is credited
		found, err := r.profiles.GetMany(ctx, []string{d.RequesterID, d.RecipientID})
		if err != nil {
			return nil, false, err
		}
		if len(found) != 2 {
			return nil, false, profile.ErrProfileNotFound
		}
		for _, userID := range []string{d.RequesterID, d.RecipientID} {
			if err := r.profiles.IncrementReputation(ctx, userID, award); err != nil {
				return nil, false, err
			}
		}
	}

	d.WeMet = true
	d.Status = DateCompleted
	d.ReputationAwarded = true
	d.UpdatedAt = r.now().UTC()
	return d.clone(), true, nil
}

func (r *memoryDateRepository) ListForUser(_ context.Context, userID string) ([]*DateRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []*DateRequest{}
	for _, d := range r.requests {
		if d.HasParticipant(userID) {
			out = append(out, d.clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *memoryDateRepository) ListUpcoming(_ context.Context, from, to time.Time, afterID string, limit int) ([]*DateRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []*DateRequest{}
	for _, d := range r.requests {
		if d.Status != DateAccepted || d.ProposedDate == nil || d.ID <= afterID {
			continue
		}
		if d.ProposedDate.Before(from) || !d.ProposedDate.Before(to) {
			continue
		}
		out = append(out, d.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryDateRepository) CountDeclined(_ context.Context, matchID, requesterID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, d := range r.requests {
		if d.MatchID == matchID && d.RequesterID == requesterID && d.Status == DateDeclined {
			n++
		}
	}
	return n, nil
}
