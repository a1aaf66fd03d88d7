// internal/dating/repository.go

package dating

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/imadgeboyega/covenant-backend/internal/common/apperrors"
)

// Store-level outcomes. The services translate the *StateChanged errors into
// caller-facing conflicts after re-reading state.
var (
	ErrPairExists        = errors.New("match record already exists for pair")
	ErrMatchStateChanged = errors.New("match record changed concurrently")
	ErrDateStateChanged  = errors.New("date request changed concurrently")
)

// MatchRepository owns MatchRecord and Conversation rows. Every write is a
// single conditional statement or one transaction.
type MatchRepository interface {
	// InsertPending fails with ErrPairExists when any record exists for the
	// unordered pair
	InsertPending(ctx context.Context, rec *MatchRecord) error
	GetByID(ctx context.Context, id string) (*MatchRecord, error)
	GetByPair(ctx context.Context, userA, userB string) (*MatchRecord, error)

	// Promote flips a pending record initiated by initiatorID to matched and
	// creates its conversation. ErrMatchStateChanged when the record is no
	// longer pending.
	Promote(ctx context.Context, id, initiatorID string, at time.Time, conv *Conversation) (*MatchRecord, *Conversation, error)

	// Unmatch moves a pending or matched record to unmatched.
	// ErrMatchStateChanged when it already was.
	Unmatch(ctx context.Context, id string) (*MatchRecord, error)

	// DeletePair hard-deletes the pair's record and conversation
	DeletePair(ctx context.Context, userA, userB string) (bool, error)

	// ListMatched returns the user's matched records, newest match first
	ListMatched(ctx context.Context, userID string) ([]*MatchRecord, error)
}

// DateRepository owns DateRequest rows and is the only writer of the
// reputation award.
type DateRepository interface {
	// Create fails with ErrDuplicatePending when the requester already has a
	// pending request on the match
	Create(ctx context.Context, d *DateRequest) error
	GetByID(ctx context.Context, id string) (*DateRequest, error)

	// Transition moves a request from one status to another.
	// ErrDateStateChanged when it is not in from.
	Transition(ctx context.Context, id string, from, to DateStatus) (*DateRequest, error)

	// MarkMet sets userID's met flag on an accepted request.
	// ErrDateStateChanged when the request is not accepted.
	MarkMet(ctx context.Context, id, userID string) (*DateRequest, error)

	// Complete closes an accepted request whose flags are both set and adds
	// award to both participants' reputation in the same atomic step. Exactly
	// one caller ever gets won=true for a given request.
	Complete(ctx context.Context, id string, award int) (d *DateRequest, won bool, err error)

	// ListForUser returns requests where the user is either side, newest first
	ListForUser(ctx context.Context, userID string) ([]*DateRequest, error)

	// ListUpcoming pages through accepted requests with a proposed date in
	// [from, to), ordered by id
	ListUpcoming(ctx context.Context, from, to time.Time, afterID string, limit int) ([]*DateRequest, error)

	// CountDeclined counts the requester's declined requests on a match
	CountDeclined(ctx context.Context, matchID, requesterID string) (int, error)
}

const matchColumns = `id, user_id1, user_id2, status, initiator, matched_at, created_at, updated_at`

const dateColumns = `
	id, match_id, requester_id, recipient_id, stage, category, venue,
	proposed_date, proposed_time, message, status,
	requester_met, recipient_met, we_met, reputation_awarded,
	created_at, updated_at`

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

type postgresMatchRepository struct {
	db *sqlx.DB
}

func NewPostgresMatchRepository(db *sqlx.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) InsertPending(ctx context.Context, rec *MatchRecord) error {
	query := `
		INSERT INTO match_records (id, user_id1, user_id2, status, initiator)
		VALUES ($1, $2, $3, 'pending', $4)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query, rec.ID, rec.UserID1, rec.UserID2, rec.Initiator).
		Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrPairExists
		}
		return apperrors.Dependency("insert match record", err)
	}
	rec.Status = MatchPending
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id string) (*MatchRecord, error) {
	var rec MatchRecord
	query := `SELECT ` + matchColumns + ` FROM match_records WHERE id = $1`

	if err := r.db.GetContext(ctx, &rec, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, apperrors.Dependency("get match record", err)
	}
	return &rec, nil
}

func (r *postgresMatchRepository) GetByPair(ctx context.Context, userA, userB string) (*MatchRecord, error) {
	var rec MatchRecord
	query := `
		SELECT ` + matchColumns + `
		FROM match_records
		WHERE (user_id1 = $1 AND user_id2 = $2) OR (user_id1 = $2 AND user_id2 = $1)`

	if err := r.db.GetContext(ctx, &rec, query, userA, userB); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, apperrors.Dependency("get match record by pair", err)
	}
	return &rec, nil
}

func (r *postgresMatchRepository) Promote(ctx context.Context, id, initiatorID string, at time.Time, conv *Conversation) (*MatchRecord, *Conversation, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, apperrors.Dependency("begin promote", err)
	}
	defer tx.Rollback()

	var rec MatchRecord
	promote := `
		UPDATE match_records
		SET status = 'matched', matched_at = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'pending' AND initiator = $2
		RETURNING ` + matchColumns

	if err := tx.GetContext(ctx, &rec, promote, id, initiatorID, at); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrMatchStateChanged
		}
		return nil, nil, apperrors.Dependency("promote match record", err)
	}

	var created Conversation
	insertConv := `
		INSERT INTO conversations (id, match_id, participants)
		VALUES ($1, $2, $3)
		ON CONFLICT (match_id) DO UPDATE SET match_id = EXCLUDED.match_id
		RETURNING id, match_id, participants, created_at`

	if err := tx.GetContext(ctx, &created, insertConv, conv.ID, rec.ID, conv.Participants); err != nil {
		return nil, nil, apperrors.Dependency("create conversation", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, apperrors.Dependency("commit promote", err)
	}
	return &rec, &created, nil
}

func (r *postgresMatchRepository) Unmatch(ctx context.Context, id string) (*MatchRecord, error) {
	var rec MatchRecord
	query := `
		UPDATE match_records
		SET status = 'unmatched', updated_at = NOW()
		WHERE id = $1 AND status <> 'unmatched'
		RETURNING ` + matchColumns

	if err := r.db.GetContext(ctx, &rec, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchStateChanged
		}
		return nil, apperrors.Dependency("unmatch", err)
	}
	return &rec, nil
}

func (r *postgresMatchRepository) DeletePair(ctx context.Context, userA, userB string) (bool, error) {
	query := `
		DELETE FROM match_records
		WHERE (user_id1 = $1 AND user_id2 = $2) OR (user_id1 = $2 AND user_id2 = $1)`

	res, err := r.db.ExecContext(ctx, query, userA, userB)
	if err != nil {
		return false, apperrors.Dependency("delete match record", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, apperrors.Dependency("delete match record", err)
	}
	return n > 0, nil
}

func (r *postgresMatchRepository) ListMatched(ctx context.Context, userID string) ([]*MatchRecord, error) {
	records := []*MatchRecord{}
	query := `
		SELECT m.id, m.user_id1, m.user_id2, m.status, m.initiator, m.matched_at,
		       m.created_at, m.updated_at, c.id AS conversation_id
		FROM match_records m
		LEFT JOIN conversations c ON c.match_id = m.id
		WHERE (m.user_id1 = $1 OR m.user_id2 = $1) AND m.status = 'matched'
		ORDER BY m.matched_at DESC, m.id`

	if err := r.db.SelectContext(ctx, &records, query, userID); err != nil {
		return nil, apperrors.Dependency("list matches", err)
	}
	return records, nil
}

type postgresDateRepository struct {
	db *sqlx.DB
}

func NewPostgresDateRepository(db *sqlx.DB) DateRepository {
	return &postgresDateRepository{db: db}
}

func (r *postgresDateRepository) Create(ctx context.Context, d *DateRequest) error {
	query := `
		INSERT INTO date_requests (
			id, match_id, requester_id, recipient_id, stage, category, venue,
			proposed_date, proposed_time, message, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		d.ID, d.MatchID, d.RequesterID, d.RecipientID, d.Stage, d.Category, d.Venue,
		d.ProposedDate, d.ProposedTime, d.Message, d.Status,
	).Scan(&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicatePending
		}
		return apperrors.Dependency("create date request", err)
	}
	return nil
}

func (r *postgresDateRepository) GetByID(ctx context.Context, id string) (*DateRequest, error) {
	var d DateRequest
	query := `SELECT ` + dateColumns + ` FROM date_requests WHERE id = $1`

	if err := r.db.GetContext(ctx, &d, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDateNotFound
		}
		return nil, apperrors.Dependency("get date request", err)
	}
	return &d, nil
}

func (r *postgresDateRepository) Transition(ctx context.Context, id string, from, to DateStatus) (*DateRequest, error) {
	var d DateRequest
	query := `
		UPDATE date_requests
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING ` + dateColumns

	if err := r.db.GetContext(ctx, &d, query, id, from, to); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDateStateChanged
		}
		return nil, apperrors.Dependency("update date request", err)
	}
	return &d, nil
}

func (r *postgresDateRepository) MarkMet(ctx context.Context, id, userID string) (*DateRequest, error) {
	var d DateRequest
	query := `
		UPDATE date_requests
		SET requester_met = requester_met OR requester_id = $2,
		    recipient_met = recipient_met OR recipient_id = $2,
		    updated_at = NOW()
		WHERE id = $1 AND status = 'accepted' AND (requester_id = $2 OR recipient_id = $2)
		RETURNING ` + dateColumns

	if err := r.db.GetContext(ctx, &d, query, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDateStateChanged
		}
		return nil, apperrors.Dependency("confirm met", err)
	}
	return &d, nil
}

func (r *postgresDateRepository) Complete(ctx context.Context, id string, award int) (*DateRequest, bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, apperrors.Dependency("begin complete", err)
	}
	defer tx.Rollback()

	var d DateRequest
	complete := `
		UPDATE date_requests
		SET we_met = TRUE, status = 'completed', reputation_awarded = TRUE, updated_at = NOW()
		WHERE id = $1 AND status = 'accepted'
		  AND requester_met AND recipient_met AND NOT reputation_awarded
		RETURNING ` + dateColumns

	if err := tx.GetContext(ctx, &d, complete, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, apperrors.Dependency("complete date request", err)
	}

	reward := `
		UPDATE profiles
		SET reputation_score = reputation_score + $1, updated_at = NOW()
		WHERE id = ANY($2)`

	if _, err := tx.ExecContext(ctx, reward, award, pq.Array([]string{d.RequesterID, d.RecipientID})); err != nil {
		return nil, false, apperrors.Dependency("award reputation", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, apperrors.Dependency("commit complete", err)
	}
	return &d, true, nil
}

func (r *postgresDateRepository) ListForUser(ctx context.Context, userID string) ([]*DateRequest, error) {
	requests := []*DateRequest{}
	query := `
		SELECT ` + dateColumns + `
		FROM date_requests
		WHERE requester_id = $1 OR recipient_id = $1
		ORDER BY created_at DESC, id DESC`

	if err := r.db.SelectContext(ctx, &requests, query, userID); err != nil {
		return nil, apperrors.Dependency("list date requests", err)
	}
	return requests, nil
}

func (r *postgresDateRepository) ListUpcoming(ctx context.Context, from, to time.Time, afterID string, limit int) ([]*DateRequest, error) {
	requests := []*DateRequest{}
	query := `
		SELECT ` + dateColumns + `
		FROM date_requests
		WHERE status = 'accepted' AND proposed_date >= $1 AND proposed_date < $2 AND id > $3
		ORDER BY id
		LIMIT $4`

	if err := r.db.SelectContext(ctx, &requests, query, from, to, afterID, limit); err != nil {
		return nil, apperrors.Dependency("list upcoming dates", err)
	}
	return requests, nil
}

func (r *postgresDateRepository) CountDeclined(ctx context.Context, matchID, requesterID string) (int, error) {
	var n int
	query := `
		SELECT COUNT(*) FROM date_requests
		WHERE match_id = $1 AND requester_id = $2 AND status = 'declined'`

	if err := r.db.GetContext(ctx, &n, query, matchID, requesterID); err != nil {
		return 0, apperrors.Dependency("count declined requests", err)
	}
	return n, nil
}
