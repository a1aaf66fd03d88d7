// internal/profile/store.go

package profile

import (
	"context"
	"time"

	"github.com/imadgeboyega/covenant-backend/internal/common/apperrors"
)

var (
	ErrProfileNotFound  = apperrors.NotFound("profile_not_found", "profile not found")
	ErrProfileExists    = apperrors.Conflict("profile_exists", "profile already exists")
	ErrSelfRelation     = apperrors.Forbidden("self_relation", "a profile cannot reference itself")
	ErrUnknownRelation  = apperrors.Validation("unknown_relation", "unknown relationship set")
	ErrInvalidIncrement = apperrors.Validation("invalid_increment", "reputation can only increase")
)

// Store owns profile records. Every mutation of a relationship set or counter
// is a single atomic operation; callers never read-modify-write a profile.
type Store interface {
	Create(ctx context.Context, p *Profile) error
	GetByID(ctx context.Context, id string) (*Profile, error)
	// GetMany returns the profiles that exist among ids, in the order given
	GetMany(ctx context.Context, ids []string) ([]*Profile, error)
	Find(ctx context.Context, filter CandidateFilter) ([]*Profile, error)

	UpdatePreferences(ctx context.Context, id string, prefs *Preferences) error
	SetBoost(ctx context.Context, id string, until time.Time) error

	// AddToSet is idempotent: adding an existing member is a no-op
	AddToSet(ctx context.Context, id string, set Relation, memberID string) error
	RemoveFromSet(ctx context.Context, id string, set Relation, memberID string) error
	IncrementReputation(ctx context.Context, id string, delta int) error

	// ListWithPendingLikes pages through active profiles with a non-empty
	// likedBy, ordered by id, starting after afterID. Callers filter out
	// likes that were already answered.
	ListWithPendingLikes(ctx context.Context, afterID string, limit int) ([]*Profile, error)
}

func checkSetArgs(id string, set Relation, memberID string) error {
	if !set.valid() {
		return ErrUnknownRelation
	}
	if id == memberID {
		return ErrSelfRelation
	}
	return nil
}
