package profile

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lib/pq"
)

// memoryStore is a process-local Store for development and tests. Each method
// holds the lock for its whole read-check-write, which gives it the same
// per-operation atomicity the Postgres store gets from single UPDATEs.
type memoryStore struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
	now      func() time.Time
}

// NewMemoryStore creates an empty in-memory profile store
func NewMemoryStore() Store {
	return &memoryStore{
		profiles: make(map[string]*Profile),
		now:      time.Now,
	}
}

func (s *memoryStore) Create(_ context.Context, p *Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.profiles[p.ID]; exists {
		return ErrProfileExists
	}
	now := s.now()
	c := clone(p)
	c.LastActiveAt, c.CreatedAt, c.UpdatedAt = now, now, now
	s.profiles[p.ID] = c

	p.LastActiveAt, p.CreatedAt, p.UpdatedAt = now, now, now
	return nil
}

func (s *memoryStore) GetByID(_ context.Context, id string) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[id]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return clone(p), nil
}

func (s *memoryStore) GetMany(_ context.Context, ids []string) ([]*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Profile, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.profiles[id]; ok {
			out = append(out, clone(p))
		}
	}
	return out, nil
}

func (s *memoryStore) Find(_ context.Context, f CandidateFilter) ([]*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	excluded := make(map[string]struct{}, len(f.ExcludeIDs))
	for _, id := range f.ExcludeIDs {
		excluded[id] = struct{}{}
	}

	var out []*Profile
	for _, p := range s.profiles {
		if p.ID == f.ViewerID || !p.Discoverable() {
			continue
		}
		if _, skip := excluded[p.ID]; skip {
			continue
		}
		if f.Gender != "" && p.Gender != f.Gender {
			continue
		}
		if p.Age < f.MinAge || p.Age > f.MaxAge || p.TrustLevel < f.MinTrustLevel {
			continue
		}
		if p.InSet(RelationBlocked, f.ViewerID) {
			continue
		}
		out = append(out, clone(p))
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastActiveAt.Equal(out[j].LastActiveAt) {
			return out[i].LastActiveAt.After(out[j].LastActiveAt)
		}
		return out[i].ID < out[j].ID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *memoryStore) UpdatePreferences(_ context.Context, id string, prefs *Preferences) error {
	return s.mutate(id, func(p *Profile) {
		p.Preferences = prefs.Clone()
	})
}

func (s *memoryStore) SetBoost(_ context.Context, id string, until time.Time) error {
	return s.mutate(id, func(p *Profile) {
		u := until
		p.BoostExpiresAt = &u
	})
}

func (s *memoryStore) AddToSet(_ context.Context, id string, set Relation, memberID string) error {
	if err := checkSetArgs(id, set, memberID); err != nil {
		return err
	}
	return s.mutate(id, func(p *Profile) {
		if !p.InSet(set, memberID) {
			setRelation(p, set, append(p.Set(set), memberID))
		}
	})
}

func (s *memoryStore) RemoveFromSet(_ context.Context, id string, set Relation, memberID string) error {
	if err := checkSetArgs(id, set, memberID); err != nil {
		return err
	}
	return s.mutate(id, func(p *Profile) {
		kept := make([]string, 0, len(p.Set(set)))
		for _, m := range p.Set(set) {
			if m != memberID {
				kept = append(kept, m)
			}
		}
		setRelation(p, set, kept)
	})
}

func (s *memoryStore) IncrementReputation(_ context.Context, id string, delta int) error {
	if delta <= 0 {
		return ErrInvalidIncrement
	}
	return s.mutate(id, func(p *Profile) {
		p.ReputationScore += delta
	})
}

func (s *memoryStore) ListWithPendingLikes(_ context.Context, afterID string, limit int) ([]*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Profile
	for _, p := range s.profiles {
		if p.ID > afterID && len(p.LikedBy) > 0 && !p.IsBanned && !p.IsDeleted {
			out = append(out, clone(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memoryStore) mutate(id string, fn func(p *Profile)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[id]
	if !ok {
		return ErrProfileNotFound
	}
	fn(p)
	p.UpdatedAt = s.now()
	return nil
}

func setRelation(p *Profile, r Relation, members []string) {
	switch r {
	case RelationBlocked:
		p.BlockedUsers = members
	case RelationLikedBy:
		p.LikedBy = members
	case RelationPassedBy:
		p.PassedBy = members
	case RelationMatches:
		p.Matches = members
	}
}

func clone(p *Profile) *Profile {
	c := *p
	c.Values = cloneArray(p.Values)
	c.BlockedUsers = cloneArray(p.BlockedUsers)
	c.LikedBy = cloneArray(p.LikedBy)
	c.PassedBy = cloneArray(p.PassedBy)
	c.Matches = cloneArray(p.Matches)
	c.Preferences = p.Preferences.Clone()
	if p.BoostExpiresAt != nil {
		t := *p.BoostExpiresAt
		c.BoostExpiresAt = &t
	}
	return &c
}

func cloneArray(a pq.StringArray) pq.StringArray {
	if a == nil {
		return nil
	}
	return append(pq.StringArray(nil), a...)
}
