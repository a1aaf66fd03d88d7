// internal/profile/postgres.go

package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/imadgeboyega/covenant-backend/internal/common/apperrors"
)

const profileColumns = `
	id, name, gender, age, city, bio, profile_image,
	faith, denomination, faith_level, core_values, intention, lifestyle,
	trust_level, reputation_score, boost_expires_at,
	is_premium, is_verified, is_banned, is_deleted, preferences,
	blocked_users, liked_by, passed_by, matches,
	phone, email, push_token, last_active_at, created_at, updated_at`

// postgresStore implements Store using PostgreSQL
type postgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore creates a new PostgreSQL profile store
func NewPostgresStore(db *sqlx.DB) Store {
	return &postgresStore{db: db}
}

// Create inserts a profile
func (s *postgresStore) Create(ctx context.Context, p *Profile) error {
	query := `
		INSERT INTO profiles (
			id, name, gender, age, city, bio, profile_image,
			faith, denomination, faith_level, core_values, intention, lifestyle,
			trust_level, reputation_score, boost_expires_at,
			is_premium, is_verified, is_banned, is_deleted, preferences,
			blocked_users, liked_by, passed_by, matches,
			phone, email, push_token
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11, $12, $13,
			$14, $15, $16,
			$17, $18, $19, $20, $21,
			$22, $23, $24, $25,
			$26, $27, $28
		)
		RETURNING last_active_at, created_at, updated_at`

	err := s.db.QueryRowxContext(ctx, query,
		p.ID, p.Name, p.Gender, p.Age, p.City, p.Bio, p.ProfileImage,
		p.Faith, p.Denomination, p.FaithLevel, pq.Array(nonNil(p.Values)), p.Intention, p.Lifestyle,
		p.TrustLevel, p.ReputationScore, p.BoostExpiresAt,
		p.IsPremium, p.IsVerified, p.IsBanned, p.IsDeleted, p.Preferences,
		pq.Array(nonNil(p.BlockedUsers)), pq.Array(nonNil(p.LikedBy)), pq.Array(nonNil(p.PassedBy)), pq.Array(nonNil(p.Matches)),
		p.Phone, p.Email, p.PushToken,
	).Scan(&p.LastActiveAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrProfileExists
		}
		return apperrors.Dependency("create profile", err)
	}
	return nil
}

// GetByID retrieves a profile by id
func (s *postgresStore) GetByID(ctx context.Context, id string) (*Profile, error) {
	var p Profile
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`

	if err := s.db.GetContext(ctx, &p, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, apperrors.Dependency("get profile", err)
	}
	return &p, nil
}

// GetMany retrieves the profiles with the given ids, preserving their order
func (s *postgresStore) GetMany(ctx context.Context, ids []string) ([]*Profile, error) {
	if len(ids) == 0 {
		return []*Profile{}, nil
	}

	var rows []*Profile
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = ANY($1)`
	if err := s.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return nil, apperrors.Dependency("get profiles", err)
	}

	byID := make(map[string]*Profile, len(rows))
	for _, p := range rows {
		byID[p.ID] = p
	}
	out := make([]*Profile, 0, len(rows))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// Find returns structurally eligible candidates for a viewer
func (s *postgresStore) Find(ctx context.Context, f CandidateFilter) ([]*Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE id <> $1
		AND is_deleted = FALSE
		AND is_banned = FALSE
		AND is_verified = TRUE
		AND ($2 = '' OR gender = $2)
		AND age BETWEEN $3 AND $4
		AND trust_level >= $5
		AND NOT (id = ANY($6))
		AND NOT ($1 = ANY(blocked_users))
		ORDER BY last_active_at DESC, id
		LIMIT $7`

	var profiles []*Profile
	err := s.db.SelectContext(ctx, &profiles, query,
		f.ViewerID, string(f.Gender), f.MinAge, f.MaxAge, f.MinTrustLevel,
		pq.Array(nonNil(f.ExcludeIDs)), f.Limit,
	)
	if err != nil {
		return nil, apperrors.Dependency("find candidates", err)
	}
	return profiles, nil
}

// UpdatePreferences replaces the stored preferences
func (s *postgresStore) UpdatePreferences(ctx context.Context, id string, prefs *Preferences) error {
	query := `UPDATE profiles SET preferences = $2, updated_at = NOW() WHERE id = $1`
	return s.execOne(ctx, "update preferences", query, id, prefs)
}

// SetBoost sets the boost expiry
func (s *postgresStore) SetBoost(ctx context.Context, id string, until time.Time) error {
	query := `UPDATE profiles SET boost_expires_at = $2, updated_at = NOW() WHERE id = $1`
	return s.execOne(ctx, "set boost", query, id, until)
}

// AddToSet appends memberID to a relationship set unless it is already present.
// The membership test and the append happen in one UPDATE under the row lock.
func (s *postgresStore) AddToSet(ctx context.Context, id string, set Relation, memberID string) error {
	if err := checkSetArgs(id, set, memberID); err != nil {
		return err
	}

	col := string(set)
	query := fmt.Sprintf(`
		UPDATE profiles
		SET %[1]s = array_append(%[1]s, $2), updated_at = NOW()
		WHERE id = $1 AND NOT ($2 = ANY(%[1]s))`, col)

	res, err := s.db.ExecContext(ctx, query, id, memberID)
	if err != nil {
		return apperrors.Dependency("add to "+col, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	// nothing changed: either already a member or no such profile
	return s.mustExist(ctx, id)
}

// RemoveFromSet removes every occurrence of memberID from a relationship set
func (s *postgresStore) RemoveFromSet(ctx context.Context, id string, set Relation, memberID string) error {
	if err := checkSetArgs(id, set, memberID); err != nil {
		return err
	}

	col := string(set)
	query := fmt.Sprintf(`
		UPDATE profiles
		SET %[1]s = array_remove(%[1]s, $2), updated_at = NOW()
		WHERE id = $1`, col)
	return s.execOne(ctx, "remove from "+col, query, id, memberID)
}

// IncrementReputation atomically adds delta to the reputation score
func (s *postgresStore) IncrementReputation(ctx context.Context, id string, delta int) error {
	if delta <= 0 {
		return ErrInvalidIncrement
	}
	query := `UPDATE profiles SET reputation_score = reputation_score + $2, updated_at = NOW() WHERE id = $1`
	return s.execOne(ctx, "increment reputation", query, id, delta)
}

// ListWithPendingLikes pages through active profiles with any recorded likes
func (s *postgresStore) ListWithPendingLikes(ctx context.Context, afterID string, limit int) ([]*Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE id > $1
		AND cardinality(liked_by) > 0
		AND is_deleted = FALSE
		AND is_banned = FALSE
		ORDER BY id
		LIMIT $2`

	var profiles []*Profile
	if err := s.db.SelectContext(ctx, &profiles, query, afterID, limit); err != nil {
		return nil, apperrors.Dependency("list profiles with pending likes", err)
	}
	return profiles, nil
}

func (s *postgresStore) execOne(ctx context.Context, op, query string, args ...interface{}) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.Dependency(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.Dependency(op, err)
	}
	if n == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func (s *postgresStore) mustExist(ctx context.Context, id string) error {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM profiles WHERE id = $1)`
	if err := s.db.GetContext(ctx, &exists, query, id); err != nil {
		return apperrors.Dependency("check profile", err)
	}
	if !exists {
		return ErrProfileNotFound
	}
	return nil
}

// nonNil keeps pq from sending NULL for an empty slice
func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
