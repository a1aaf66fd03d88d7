// internal/profile/routes.go

package profile

import (
	"github.com/gorilla/mux"

	"github.com/imadgeboyega/covenant-backend/internal/auth"
)

// RegisterRoutes registers the preference and boost routes
func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("/discovery/preferences", handler.GetPreferences).Methods("GET")
	api.HandleFunc("/discovery/preferences", handler.UpdatePreferences).Methods("PUT")
	api.HandleFunc("/premium/boost", handler.ActivateBoost).Methods("POST")
}
