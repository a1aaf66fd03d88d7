// internal/profile/dto.go

package profile

import "time"

// PreferencesPatch is a partial preferences update; nil fields are left as stored
type PreferencesPatch struct {
	Gender              *Gender  `json:"gender" validate:"omitempty,oneof=Man Woman"`
	MinAge              *int     `json:"minAge" validate:"omitempty,min=18,max=99"`
	MaxAge              *int     `json:"maxAge" validate:"omitempty,min=18,max=99"`
	MaxDistanceKm       *int     `json:"maxDistanceKm" validate:"omitempty,min=1,max=20000"`
	TargetDenominations []string `json:"targetDenominations" validate:"omitempty,max=20,dive,required"`
	RequiredValues      []string `json:"requiredValues" validate:"omitempty,max=20,dive,required"`
	FaithImportance     *int     `json:"faithImportance" validate:"omitempty,min=1,max=10"`
	ValueImportance     *int     `json:"valueImportance" validate:"omitempty,min=1,max=10"`
	MinTrustLevel       *int     `json:"minTrustLevel" validate:"omitempty,min=1,max=4"`
}

// Apply merges the patch into a copy of prefs
func (p *PreferencesPatch) Apply(prefs *Preferences) *Preferences {
	out := prefs.Clone()
	if out == nil {
		out = &Preferences{}
	}
	if p.Gender != nil {
		out.Gender = *p.Gender
	}
	if p.MinAge != nil {
		out.MinAge = *p.MinAge
	}
	if p.MaxAge != nil {
		out.MaxAge = *p.MaxAge
	}
	if p.MaxDistanceKm != nil {
		out.MaxDistanceKm = *p.MaxDistanceKm
	}
	if p.TargetDenominations != nil {
		out.TargetDenominations = append([]string(nil), p.TargetDenominations...)
	}
	if p.RequiredValues != nil {
		out.RequiredValues = append([]string(nil), p.RequiredValues...)
	}
	if p.FaithImportance != nil {
		out.FaithImportance = *p.FaithImportance
	}
	if p.ValueImportance != nil {
		out.ValueImportance = *p.ValueImportance
	}
	if p.MinTrustLevel != nil {
		out.MinTrustLevel = *p.MinTrustLevel
	}
	return out
}

// PublicProfile is everything another member may see. Location stops at
// city level and no account flags, contact details or relationship sets
// are included.
type PublicProfile struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Gender          Gender     `json:"gender"`
	Age             int        `json:"age"`
	City            string     `json:"city"`
	Bio             string     `json:"bio,omitempty"`
	ProfileImage    string     `json:"profileImage,omitempty"`
	Faith           string     `json:"faith,omitempty"`
	Denomination    string     `json:"denomination,omitempty"`
	FaithLevel      FaithLevel `json:"faithLevel,omitempty"`
	Values          []string   `json:"values"`
	Intention       Intention  `json:"intention,omitempty"`
	Lifestyle       Lifestyle  `json:"lifestyle,omitempty"`
	TrustLevel      int        `json:"trustLevel"`
	ReputationScore int        `json:"reputationScore"`
	IsBoosted       bool       `json:"isBoosted"`
}

// Public strips a profile down to its public fields
func (p *Profile) Public(now time.Time) PublicProfile {
	values := append([]string{}, p.Values...)
	return PublicProfile{
		ID:              p.ID,
		Name:            p.Name,
		Gender:          p.Gender,
		Age:             p.Age,
		City:            p.City,
		Bio:             p.Bio,
		ProfileImage:    p.ProfileImage,
		Faith:           p.Faith,
		Denomination:    p.Denomination,
		FaithLevel:      p.FaithLevel,
		Values:          values,
		Intention:       p.Intention,
		Lifestyle:       p.Lifestyle,
		TrustLevel:      p.TrustLevel,
		ReputationScore: p.ReputationScore,
		IsBoosted:       p.IsBoosted(now),
	}
}

// BoostResponse is returned after activating a boost
type BoostResponse struct {
	BoostExpiresAt time.Time `json:"boostExpiresAt"`
	Message        string    `json:"message"`
}
