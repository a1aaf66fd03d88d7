// internal/dating/models.go

package dating

import (
	"time"

	"github.com/lib/pq"
)

type MatchStatus string

const (
	MatchPending   MatchStatus = "pending"
	MatchMatched   MatchStatus = "matched"
	MatchUnmatched MatchStatus = "unmatched"
)

// MatchRecord is the single record for an unordered pair. UserID1 is always
// the initiator, the user whose like created the record.
type MatchRecord struct {
	ID        string      `json:"id" db:"id"`
	UserID1   string      `json:"userId1" db:"user_id1"`
	UserID2   string      `json:"userId2" db:"user_id2"`
	Status    MatchStatus `json:"status" db:"status"`
	Initiator string      `json:"initiator" db:"initiator"`
	MatchedAt *time.Time  `json:"matchedAt,omitempty" db:"matched_at"`
	CreatedAt time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time   `json:"updatedAt" db:"updated_at"`

	// Populated by list queries only
	ConversationID *string `json:"conversationId,omitempty" db:"conversation_id"`
}

func (m *MatchRecord) HasParticipant(userID string) bool {
	return userID != "" && (m.UserID1 == userID || m.UserID2 == userID)
}

// Partner returns the other participant
func (m *MatchRecord) Partner(userID string) string {
	if m.UserID1 == userID {
		return m.UserID2
	}
	return m.UserID1
}

// Conversation is the empty chat shell created with a mutual match
type Conversation struct {
	ID           string         `json:"id" db:"id"`
	MatchID      string         `json:"matchId" db:"match_id"`
	Participants pq.StringArray `json:"participants" db:"participants"`
	CreatedAt    time.Time      `json:"createdAt" db:"created_at"`
}

type DateStage string

const (
	StageFirstMeeting  DateStage = "First Meeting"
	StageGettingToKnow DateStage = "Getting to Know You"
	StageCourtship     DateStage = "Courtship Proposal"
)

type DateStatus string

const (
	DatePending   DateStatus = "pending"
	DateAccepted  DateStatus = "accepted"
	DateDeclined  DateStatus = "declined"
	DateCompleted DateStatus = "completed"
	DateCancelled DateStatus = "cancelled"
)

// DateRequest is one proposed meeting on a matched pair. Stage, category,
// venue and timing are descriptive and never interpreted here.
type DateRequest struct {
	ID           string     `json:"id" db:"id"`
	MatchID      string     `json:"matchId" db:"match_id"`
	RequesterID  string     `json:"requesterId" db:"requester_id"`
	RecipientID  string     `json:"recipientId" db:"recipient_id"`
	Stage        DateStage  `json:"stage" db:"stage"`
	Category     string     `json:"category" db:"category"`
	Venue        string     `json:"venue" db:"venue"`
	ProposedDate *time.Time `json:"proposedDate,omitempty" db:"proposed_date"`
	ProposedTime string     `json:"proposedTime" db:"proposed_time"`
	Message      string     `json:"message" db:"message"`
	Status       DateStatus `json:"status" db:"status"`

	RequesterMet      bool `json:"requesterMet" db:"requester_met"`
	RecipientMet      bool `json:"recipientMet" db:"recipient_met"`
	WeMet             bool `json:"weMet" db:"we_met"`
	ReputationAwarded bool `json:"reputationAwarded" db:"reputation_awarded"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

func (d *DateRequest) HasParticipant(userID string) bool {
	return userID != "" && (d.RequesterID == userID || d.RecipientID == userID)
}

// Partner returns the other participant
func (d *DateRequest) Partner(userID string) string {
	if d.RequesterID == userID {
		return d.RecipientID
	}
	return d.RequesterID
}

func (d *DateRequest) clone() *DateRequest {
	c := *d
	if d.ProposedDate != nil {
		t := *d.ProposedDate
		c.ProposedDate = &t
	}
	return &c
}

func (m *MatchRecord) clone() *MatchRecord {
	c := *m
	if m.MatchedAt != nil {
		t := *m.MatchedAt
		c.MatchedAt = &t
	}
	if m.ConversationID != nil {
		id := *m.ConversationID
		c.ConversationID = &id
	}
	return &c
}
