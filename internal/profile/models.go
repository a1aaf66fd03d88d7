// internal/profile/models.go

package profile

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/lib/pq"
)

// Gender of a profile
type Gender string

const (
	GenderMan   Gender = "Man"
	GenderWoman Gender = "Woman"
)

// Opposite returns the default gender a viewer is shown
func (g Gender) Opposite() Gender {
	switch g {
	case GenderMan:
		return GenderWoman
	case GenderWoman:
		return GenderMan
	default:
		return ""
	}
}

// FaithLevel is the stated intensity of a member's faith
type FaithLevel string

const (
	FaithVerySerious FaithLevel = "Very Serious"
	FaithPracticing  FaithLevel = "Practicing"
	FaithCultural    FaithLevel = "Cultural"
	FaithExploring   FaithLevel = "Exploring"
)

// Intention is how soon a member wants to marry
type Intention string

const (
	IntentionMarriageASAP  Intention = "Marriage ASAP"
	IntentionOneToTwoYears Intention = "Marriage in 1-2 years"
	IntentionDatingToMarry Intention = "Dating to Marry"
	IntentionUnsure        Intention = "Unsure"
)

// Lifestyle of a member
type Lifestyle string

const (
	LifestyleTraditional Lifestyle = "Traditional"
	LifestyleModerate    Lifestyle = "Moderate"
	LifestyleModern      Lifestyle = "Modern"
)

// Relation names one of the relationship sets carried on a profile
type Relation string

const (
	RelationBlocked  Relation = "blocked_users"
	RelationLikedBy  Relation = "liked_by"
	RelationPassedBy Relation = "passed_by"
	RelationMatches  Relation = "matches"
)

func (r Relation) valid() bool {
	switch r {
	case RelationBlocked, RelationLikedBy, RelationPassedBy, RelationMatches:
		return true
	}
	return false
}

// Profile is one member of the platform as seen by discovery and matching.
// Relationship sets are only ever changed through Store.AddToSet and
// Store.RemoveFromSet.
type Profile struct {
	ID           string `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	Gender       Gender `json:"gender" db:"gender"`
	Age          int    `json:"age" db:"age"`
	City         string `json:"city" db:"city"`
	Bio          string `json:"bio" db:"bio"`
	ProfileImage string `json:"profileImage" db:"profile_image"`

	Faith        string         `json:"faith" db:"faith"`
	Denomination string         `json:"denomination" db:"denomination"`
	FaithLevel   FaithLevel     `json:"faithLevel" db:"faith_level"`
	Values       pq.StringArray `json:"values" db:"core_values"`
	Intention    Intention      `json:"intention" db:"intention"`
	Lifestyle    Lifestyle      `json:"lifestyle" db:"lifestyle"`

	TrustLevel      int        `json:"trustLevel" db:"trust_level"`
	ReputationScore int        `json:"reputationScore" db:"reputation_score"`
	BoostExpiresAt  *time.Time `json:"boostExpiresAt,omitempty" db:"boost_expires_at"`

	IsPremium  bool `json:"isPremium" db:"is_premium"`
	IsVerified bool `json:"isVerified" db:"is_verified"`
	IsBanned   bool `json:"isBanned" db:"is_banned"`
	IsDeleted  bool `json:"isDeleted" db:"is_deleted"`

	Preferences *Preferences `json:"preferences,omitempty" db:"preferences"`

	BlockedUsers pq.StringArray `json:"blockedUsers" db:"blocked_users"`
	LikedBy      pq.StringArray `json:"likedBy" db:"liked_by"`
	PassedBy     pq.StringArray `json:"passedBy" db:"passed_by"`
	Matches      pq.StringArray `json:"matches" db:"matches"`

	Phone     string `json:"-" db:"phone"`
	Email     string `json:"-" db:"email"`
	PushToken string `json:"-" db:"push_token"`

	LastActiveAt time.Time `json:"lastActiveAt" db:"last_active_at"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// IsBoosted reports whether the boost is still running at now
func (p *Profile) IsBoosted(now time.Time) bool {
	return p.BoostExpiresAt != nil && p.BoostExpiresAt.After(now)
}

// Discoverable reports whether the profile may be shown to anyone
func (p *Profile) Discoverable() bool {
	return p.IsVerified && !p.IsBanned && !p.IsDeleted
}

// Set returns the named relationship set
func (p *Profile) Set(r Relation) []string {
	switch r {
	case RelationBlocked:
		return p.BlockedUsers
	case RelationLikedBy:
		return p.LikedBy
	case RelationPassedBy:
		return p.PassedBy
	case RelationMatches:
		return p.Matches
	default:
		return nil
	}
}

// InSet reports whether id is a member of the named set
func (p *Profile) InSet(r Relation, id string) bool {
	for _, member := range p.Set(r) {
		if member == id {
			return true
		}
	}
	return false
}

// Preferences are the discovery settings a member stores on their profile
type Preferences struct {
	Gender              Gender   `json:"gender,omitempty"`
	MinAge              int      `json:"minAge,omitempty"`
	MaxAge              int      `json:"maxAge,omitempty"`
	MaxDistanceKm       int      `json:"maxDistanceKm,omitempty"`
	TargetDenominations []string `json:"targetDenominations,omitempty"`
	RequiredValues      []string `json:"requiredValues,omitempty"`
	FaithImportance     int      `json:"faithImportance,omitempty"`
	ValueImportance     int      `json:"valueImportance,omitempty"`
	MinTrustLevel       int      `json:"minTrustLevel,omitempty"`
}

// Scan implements the sql.Scanner interface for Preferences
func (p *Preferences) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return errors.New("unsupported preferences column type")
	}
}

// Value implements the driver.Valuer interface for Preferences
func (p *Preferences) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}

// Clone returns a deep copy
func (p *Preferences) Clone() *Preferences {
	if p == nil {
		return nil
	}
	c := *p
	c.TargetDenominations = append([]string(nil), p.TargetDenominations...)
	c.RequiredValues = append([]string(nil), p.RequiredValues...)
	return &c
}

// CandidateFilter selects structurally eligible candidates. MaxDistanceKm is
// carried for stores that index location; none of the built-in stores do.
type CandidateFilter struct {
	ViewerID      string
	Gender        Gender
	MinAge        int
	MaxAge        int
	MinTrustLevel int
	MaxDistanceKm int
	ExcludeIDs    []string
	Limit         int
}
