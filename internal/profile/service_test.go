package profile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imadgeboyega/covenant-backend/internal/common/apperrors"
)

func intPtr(v int) *int { return &v }

func TestService_UpdatePreferences_MergesPatch(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	p := member("a", GenderMan, 30)
	p.Preferences = &Preferences{MinAge: 25, MaxAge: 35, FaithImportance: 5}
	seed(t, store, p)
	svc := NewService(store, 30*time.Minute)

	got, err := svc.UpdatePreferences(ctx, "a", &PreferencesPatch{
		FaithImportance:     intPtr(9),
		TargetDenominations: []string{"Baptist"},
	})
	require.NoError(t, err)
	assert.Equal(t, 25, got.MinAge)
	assert.Equal(t, 35, got.MaxAge)
	assert.Equal(t, 9, got.FaithImportance)
	assert.Equal(t, []string{"Baptist"}, got.TargetDenominations)

	stored, err := svc.GetPreferences(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, got, stored)
}

func TestService_UpdatePreferences_Validation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	p := member("a", GenderMan, 30)
	p.Preferences = &Preferences{MaxAge: 30}
	seed(t, store, p)
	svc := NewService(store, 30*time.Minute)

	tests := []struct {
		name  string
		patch PreferencesPatch
		want  error
	}{
		{"importance above dial", PreferencesPatch{FaithImportance: intPtr(11)}, nil},
		{"age below adult", PreferencesPatch{MinAge: intPtr(16)}, nil},
		{"trust level out of range", PreferencesPatch{MinTrustLevel: intPtr(5)}, nil},
		{"min above stored max", PreferencesPatch{MinAge: intPtr(40)}, ErrInvalidAgeRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdatePreferences(ctx, "a", &tt.patch)
			require.Error(t, err)
			assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestService_GetPreferences_Defaults(t *testing.T) {
	store := NewMemoryStore()
	seed(t, store, member("a", GenderMan, 30))
	svc := NewService(store, 30*time.Minute)

	prefs, err := svc.GetPreferences(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, &Preferences{}, prefs)

	_, err = svc.GetPreferences(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestService_ActivateBoost(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	seed(t, store, member("free", GenderMan, 30))
	premium := member("premium", GenderWoman, 30)
	premium.IsPremium = true
	seed(t, store, premium)

	svc := NewService(store, 30*time.Minute)

	_, err := svc.ActivateBoost(ctx, "free")
	assert.ErrorIs(t, err, ErrPremiumRequired)

	resp, err := svc.ActivateBoost(ctx, "premium")
	require.NoError(t, err)
	assert.Equal(t, "Profile boosted for 30 minutes!", resp.Message)

	p, err := store.GetByID(ctx, "premium")
	require.NoError(t, err)
	assert.True(t, p.IsBoosted(time.Now()))
}

func TestProfile_Public_HidesPrivateFields(t *testing.T) {
	p := member("a", GenderWoman, 30)
	p.Email = "a@example.com"
	p.Phone = "+15550100"
	p.LikedBy = []string{"b"}
	p.IsPremium = true

	pub := p.Public(time.Now())
	assert.Equal(t, "a", pub.ID)
	assert.Equal(t, "Austin", pub.City)
	assert.NotNil(t, pub.Values)
}
