// internal/discovery/handlers.go

package discovery

import (
	"net/http"

	"github.com/imadgeboyega/covenant-backend/internal/auth"
	"github.com/imadgeboyega/covenant-backend/internal/common/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetFeed handles GET /api/v1/discovery
func (h *Handler) GetFeed(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	q, err := ParseFeedQuery(r.URL.Query())
	if err != nil {
		utils.RespondWithAppError(r.Context(), w, err)
		return
	}

	page, err := h.service.GetFeed(r.Context(), userID, q)
	if err != nil {
		utils.RespondWithAppError(r.Context(), w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, page)
}
