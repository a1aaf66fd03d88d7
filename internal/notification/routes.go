// internal/notification/routes.go

package notification

import (
	"github.com/gorilla/mux"

	"github.com/imadgeboyega/covenant-backend/internal/auth"
)

var (
	// PushEvents go to devices
	PushEvents = []EventType{
		EventMutualMatch, EventDateRequested, EventDateResponded,
		EventDateCancelled, EventDateCompleted, EventDateReminder,
	}

	// EmailEvents go to the inbox
	EmailEvents = []EventType{EventMutualMatch, EventDateResponded, EventAdmirersDigest}

	// SMSEvents are time-sensitive
	SMSEvents = []EventType{EventDateReminder}
)

func RegisterRoutes(router *mux.Router, hub *Hub, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/notifications").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("/ws", hub.ServeWS).Methods("GET")
}
