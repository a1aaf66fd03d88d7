// internal/dating/dto.go

package dating

import (
	"time"

	"github.com/imadgeboyega/covenant-backend/internal/profile"
)

type TargetDTO struct {
	TargetID string `json:"targetId" validate:"required"`
}

type LikeResult struct {
	Matched        bool   `json:"matched"`
	MatchID        string `json:"matchId,omitempty"`
	ConversationID string `json:"conversationId,omitempty"`
}

type PassResult struct {
	OK bool `json:"ok"`
}

// MatchView is a matched record from one participant's side
type MatchView struct {
	MatchID        string                `json:"matchId"`
	ConversationID string                `json:"conversationId,omitempty"`
	MatchedAt      *time.Time            `json:"matchedAt,omitempty"`
	Partner        profile.PublicProfile `json:"partner"`
}

type RequestDateDTO struct {
	MatchID      string     `json:"matchId" validate:"required"`
	Stage        DateStage  `json:"stage" validate:"omitempty,oneof='First Meeting' 'Getting to Know You' 'Courtship Proposal'"`
	Category     string     `json:"category" validate:"max=60"`
	Venue        string     `json:"venue" validate:"max=200"`
	ProposedDate *time.Time `json:"proposedDate"`
	ProposedTime string     `json:"proposedTime" validate:"max=40"`
	Message      string     `json:"message" validate:"max=500"`
}

type RespondDateDTO struct {
	Decision DateStatus `json:"decision" validate:"required"`
}

type ConfirmMetResult struct {
	*DateRequest
	// Completed is true only for the confirmation that closed the request
	Completed bool `json:"completed"`
}
