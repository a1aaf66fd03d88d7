// internal/dating/handlers.go

package dating

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/imadgeboyega/covenant-backend/internal/auth"
	"github.com/imadgeboyega/covenant-backend/internal/common/utils"
)

type Handler struct {
	matches MatchService
	dates   DateService
}

func NewHandler(matches MatchService, dates DateService) *Handler {
	return &Handler{matches: matches, dates: dates}
}

func currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
	}
	return userID, ok
}

func decodeTarget(w http.ResponseWriter, r *http.Request) (string, bool) {
	var dto TargetDTO
	if err := utils.DecodeJSON(r, &dto); err != nil {
		utils.RespondWithAppError(r.Context(), w, err)
		return "", false
	}
	if err := utils.ValidateStruct(&dto); err != nil {
		utils.RespondWithAppError(r.Context(), w, err)
		return "", false
	}
	return dto.TargetID, true
}

func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	targetID, ok := decodeTarget(w, r)
	if !ok {
		return
	}

	res, err := h.matches.Like(r.Context(), userID, targetID)
	if err != nil {
		utils.RespondWithAppError(r.Context(), w, err)
		return
	}

	status := http.StatusOK
	if res.Matched {
		status = http.StatusCreated
	}
	utils.RespondWithJSON(w, status, res)
}

func (h *Handler) Pass(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	targetID, ok := decodeTarget(w, r)
	if !ok {
		return
	}

	res, err := h.matches.Pass(r.Context(), userID, targetID)
	if err != nil {
		utils.RespondWithAppError(r.Context(), w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, res)
}

func (h *Handler) Unmatch(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.matches.Unmatch(r.Context(), mux.Vars(r)["id"], userID); err != nil {
		utils.RespondWithAppError(r.Context(), w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Unmatched"})
}

func (h *Handler) Block(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	targetID, ok := decodeTarget(w, r)
	if !ok {
		return
	}

	if err := h.matches.Block(r.Context(), userID, targetID); err != nil {
		utils.RespondWithAppError(r.Context(), w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "User blocked"})
}

func (h *Handler) Unblock(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	targetID, ok := decodeTarget(w, r)
	if !ok {
		return
	}

	if err := h.matches.Unblock(r.Context(), userID, targetID); err != nil {
		utils.RespondWithAppError(r.Context(), w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "User unblocked"})
}

func (h *Handler) GetMatches(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	matches, err := h.matches.GetMatches(r.Context(), userID)
	if err != nil {
		utils.RespondWithAppError(r.Context(), w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"matches": matches})
}

func (h *Handler) WhoLikedMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	admirers, err := h.matches.WhoLikedMe(r.Context(), userID)
	if err != nil {
		utils.RespondWithAppError(r.Context(), w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"profiles": admirers, "total": len(admirers)})
}

func (h *Handler) RequestDate(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var dto RequestDateDTO
	if err := utils.DecodeJSON(r, &dto); err != nil {
		utils.RespondWithAppError(r.Context(), w, err)
		return
	}

	req, err := h.dates.RequestDate(r.Context(), userID, &dto)
	if err != nil {
		utils.RespondWithAppError(r.Context(), w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, req)
}

func (h *Handler) RespondToDate(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var dto RespondDateDTO
	if err := utils.DecodeJSON(r, &dto); err != nil {
		utils.RespondWithAppError(r.Context(), w, err)
		return
	}

	req, err := h.dates.Respond(r.Context(), mux.Vars(r)["id"], userID, dto.Decision)
	if err != nil {
		utils.RespondWithAppError(r.Context(), w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, req)
}

func (h *Handler) ConfirmMet(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	res, err := h.dates.ConfirmMet(r.Context(), mux.Vars(r)["id"], userID)
	if err != nil {
		utils.RespondWithAppError(r.Context(), w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, res)
}

func (h *Handler) CancelDate(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	req, err := h.dates.Cancel(r.Context(), mux.Vars(r)["id"], userID)
	if err != nil {
		utils.RespondWithAppError(r.Context(), w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, req)
}

func (h *Handler) ListDates(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	dates, err := h.dates.ListDates(r.Context(), userID)
	if err != nil {
		utils.RespondWithAppError(r.Context(), w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"dates": dates})
}
