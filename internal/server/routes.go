package server

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Tyrowin/gochat/internal/log"
	"github.com/Tyrowin/gochat/internal/upload"
)

// SetupRoutes builds the router for the whole HTTP surface: health, the
// socket endpoint, the test page, moderator login and the protected
// moderator API, plus uploads when a store is configured.
func (s *Server) SetupRoutes() *mux.Router {
	r := mux.NewRouter()
	r.Use(log.HTTPMiddleware(log.L()))

	r.HandleFunc("/", HealthHandler).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.WebSocketHandler)
	r.HandleFunc("/test", TestPageHandler).Methods(http.MethodGet)

	if s.gate != nil {
		r.HandleFunc("/admin/login", s.gate.LoginHandler).Methods(http.MethodPost)
		r.HandleFunc("/admin/check", s.gate.CheckHandler).Methods(http.MethodGet)
		r.HandleFunc("/admin/logout", s.gate.LogoutHandler).Methods(http.MethodPost)

		admin := r.PathPrefix("/admin").Subrouter()
		admin.Use(s.gate.RequireModerator)
		admin.HandleFunc("/users", s.ListUsersHandler).Methods(http.MethodGet)
		admin.HandleFunc("/messages", s.ListMessagesHandler).Methods(http.MethodGet)
		admin.HandleFunc("/chat-history", s.ChatHistoryHandler).Methods(http.MethodGet)
		admin.HandleFunc("/messages/{id}", s.DeleteMessageHandler).Methods(http.MethodDelete)
		admin.HandleFunc("/kick-user", s.KickUserHandler).Methods(http.MethodPost)
	}

	if s.uploads != nil {
		upload.NewHandler(s.uploads).RegisterRoutes(r)
	}

	return r
}
