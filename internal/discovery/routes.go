// internal/discovery/routes.go

package discovery

import (
	"github.com/gorilla/mux"

	"github.com/imadgeboyega/covenant-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("/discovery", handler.GetFeed).Methods("GET")
}
