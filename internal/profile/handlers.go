// internal/profile/handlers.go

package profile

import (
	"net/http"

	"github.com/imadgeboyega/covenant-backend/internal/auth"
	"github.com/imadgeboyega/covenant-backend/internal/common/utils"
)

// Handler handles profile-related HTTP requests
type Handler struct {
	service Service
}

// NewHandler creates a new profile handler
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetPreferences returns the caller's stored discovery preferences
func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	prefs, err := h.service.GetPreferences(r.Context(), userID)
	if err != nil {
		utils.RespondWithAppError(r.Context(), w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"preferences": prefs})
}

// UpdatePreferences applies a partial preferences update
func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var patch PreferencesPatch
	if err := utils.DecodeJSON(r, &patch); err != nil {
		utils.RespondWithAppError(r.Context(), w, err)
		return
	}

	prefs, err := h.service.UpdatePreferences(r.Context(), userID, &patch)
	if err != nil {
		utils.RespondWithAppError(r.Context(), w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "Preferences updated",
		"preferences": prefs,
	})
}

// ActivateBoost boosts the caller's profile
func (h *Handler) ActivateBoost(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	resp, err := h.service.ActivateBoost(r.Context(), userID)
	if err != nil {
		utils.RespondWithAppError(r.Context(), w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, resp)
}
