// internal/dating/service.go

package dating

import (
	"github.com/imadgeboyega/covenant-backend/internal/common/apperrors"
	"github.com/imadgeboyega/covenant-backend/internal/profile"
)

var (
	ErrMatchNotFound  = apperrors.NotFound("match_not_found", "match not found")
	ErrDateNotFound   = apperrors.NotFound("date_not_found", "date request not found")
	ErrTargetNotFound = apperrors.NotFound("user_not_found", "user not found")

	ErrSelfAction       = apperrors.Forbidden("self_action", "you cannot perform this action on yourself")
	ErrBlocked          = apperrors.Forbidden("blocked", "interaction with this user is not allowed")
	ErrNotParticipant   = apperrors.Forbidden("not_participant", "you are not a participant")
	ErrNotRecipient     = apperrors.Forbidden("not_recipient", "only the recipient can respond")
	ErrNotRequester     = apperrors.Forbidden("not_requester", "only the requester can cancel")
	ErrAccountSuspended = profile.ErrAccountSuspended

	ErrAlreadyMatched   = apperrors.Conflict("already_matched", "you are already matched with this user")
	ErrAlreadyLiked     = apperrors.Conflict("already_liked", "you already liked this user")
	ErrPairClosed       = apperrors.Conflict("pair_closed", "this match was ended")
	ErrLikeContention   = apperrors.Conflict("like_contention", "like could not be recorded, please retry")
	ErrAlreadyUnmatched = apperrors.Conflict("already_unmatched", "match already ended")
	ErrMatchNotActive   = apperrors.Conflict("match_not_active", "dates can only be requested on an active match")
	ErrDuplicatePending = apperrors.Conflict("duplicate_pending_request", "you already have a pending date request on this match")
	ErrDeclineLimit     = apperrors.Conflict("decline_limit", "this match has declined too many of your requests")
	ErrDateNotPending   = apperrors.Conflict("date_not_pending", "date request is no longer pending")
	ErrDateNotAccepted  = apperrors.Conflict("date_not_accepted", "only accepted dates can be confirmed")

	ErrInvalidDecision = apperrors.Validation("invalid_decision", "decision must be accepted or declined")
	ErrMissingMatchID  = apperrors.Validation("match_id_required", "matchId is required")
)

// maxDeclinedRequests stops a requester from re-asking after repeated refusals
const maxDeclinedRequests = 2

// maxLikeAttempts bounds the insert/promote retry loop under contention
const maxLikeAttempts = 3
