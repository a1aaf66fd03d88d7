// internal/dating/routes.go

package dating

import (
	"github.com/gorilla/mux"

	"github.com/imadgeboyega/covenant-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(authMiddleware.Authenticate)

	// Matching
	api.HandleFunc("/matches", handler.GetMatches).Methods("GET")
	api.HandleFunc("/matches/like", handler.Like).Methods("POST")
	api.HandleFunc("/matches/pass", handler.Pass).Methods("POST")
	api.HandleFunc("/matches/likes", handler.WhoLikedMe).Methods("GET")
	api.HandleFunc("/matches/{id}/unmatch", handler.Unmatch).Methods("POST")

	// Safety
	api.HandleFunc("/safety/block", handler.Block).Methods("POST")
	api.HandleFunc("/safety/unblock", handler.Unblock).Methods("POST")

	// Dates
	api.HandleFunc("/dates", handler.RequestDate).Methods("POST")
	api.HandleFunc("/dates", handler.ListDates).Methods("GET")
	api.HandleFunc("/dates/{id}/respond", handler.RespondToDate).Methods("POST")
	api.HandleFunc("/dates/{id}/confirm-met", handler.ConfirmMet).Methods("POST")
	api.HandleFunc("/dates/{id}/cancel", handler.CancelDate).Methods("POST")
}
