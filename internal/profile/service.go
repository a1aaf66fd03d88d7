// internal/profile/service.go

package profile

import (
	"context"
	"fmt"
	"time"

	"github.com/imadgeboyega/covenant-backend/internal/common/apperrors"
	"github.com/imadgeboyega/covenant-backend/internal/common/logger"
	"github.com/imadgeboyega/covenant-backend/internal/common/utils"
)

var (
	ErrInvalidAgeRange  = apperrors.Validation("invalid_age_range", "minAge must not exceed maxAge")
	ErrPremiumRequired  = apperrors.Forbidden("premium_required", "Ultimate membership required")
	ErrAccountSuspended = apperrors.Forbidden("account_suspended", "Account suspended")
)

// Service exposes the member-facing profile operations
type Service interface {
	GetPreferences(ctx context.Context, userID string) (*Preferences, error)
	UpdatePreferences(ctx context.Context, userID string, patch *PreferencesPatch) (*Preferences, error)
	ActivateBoost(ctx context.Context, userID string) (*BoostResponse, error)
}

type service struct {
	store         Store
	boostDuration time.Duration
	now           func() time.Time
}

// NewService creates a new profile service
func NewService(store Store, boostDuration time.Duration) Service {
	return &service{
		store:         store,
		boostDuration: boostDuration,
		now:           time.Now,
	}
}

// GetPreferences returns the stored preferences, empty when never set
func (s *service) GetPreferences(ctx context.Context, userID string) (*Preferences, error) {
	p, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p.Preferences == nil {
		return &Preferences{}, nil
	}
	return p.Preferences, nil
}

// UpdatePreferences validates the patch, merges it into the stored
// preferences and saves the result
func (s *service) UpdatePreferences(ctx context.Context, userID string, patch *PreferencesPatch) (*Preferences, error) {
	if err := utils.ValidateStruct(patch); err != nil {
		return nil, err
	}

	p, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	merged := patch.Apply(p.Preferences)
	if merged.MinAge > 0 && merged.MaxAge > 0 && merged.MinAge > merged.MaxAge {
		return nil, ErrInvalidAgeRange
	}

	if err := s.store.UpdatePreferences(ctx, userID, merged); err != nil {
		return nil, err
	}

	logger.Ctx(ctx).Info().Str("user_id", userID).Msg("discovery preferences updated")
	return merged, nil
}

// ActivateBoost puts a premium member at the front of feeds for the
// configured duration
func (s *service) ActivateBoost(ctx context.Context, userID string) (*BoostResponse, error) {
	p, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p.IsBanned || p.IsDeleted {
		return nil, ErrAccountSuspended
	}
	if !p.IsPremium {
		return nil, ErrPremiumRequired
	}

	until := s.now().Add(s.boostDuration)
	if err := s.store.SetBoost(ctx, userID, until); err != nil {
		return nil, err
	}
	boostsActivated.Inc()

	return &BoostResponse{
		BoostExpiresAt: until,
		Message:        fmt.Sprintf("Profile boosted for %s!", humanDuration(s.boostDuration)),
	}, nil
}

func humanDuration(d time.Duration) string {
	if d%time.Hour == 0 {
		h := int(d / time.Hour)
		if h == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", h)
	}
	return fmt.Sprintf("%d minutes", int(d/time.Minute))
}
