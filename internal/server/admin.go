package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/Tyrowin/gochat/internal/chat"
	"github.com/Tyrowin/gochat/internal/log"
	"github.com/Tyrowin/gochat/internal/response"
)

// DefaultPageSize applies to REST listings that omit pageSize.
const DefaultPageSize = 20

func pageParams(r *http.Request) (int, int) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page <= 0 {
		page = 1
	}
	pageSize, err := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if err != nil || pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return page, pageSize
}

func writeHubError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrHubStopped) {
		response.ServiceUnavailable(w, "chat room is shutting down")
		return
	}
	log.Ctx(r.Context()).Warn().Err(err).Msg("hub request failed")
	response.InternalError(w, "request aborted")
}

// ListUsersHandler handles GET /admin/users.
func (s *Server) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)
	result, err := s.hub.ListParticipants(r.Context(), page, pageSize)
	if err != nil {
		writeHubError(w, r, err)
		return
	}
	response.Paged(w, result.Total, result.Data)
}

// ListMessagesHandler handles GET /admin/messages, newest first.
func (s *Server) ListMessagesHandler(w http.ResponseWriter, r *http.Request) {
	s.listMessages(w, r, chat.NewestFirst)
}

// ChatHistoryHandler handles GET /admin/chat-history in chronological order.
func (s *Server) ChatHistoryHandler(w http.ResponseWriter, r *http.Request) {
	s.listMessages(w, r, chat.Chronological)
}

func (s *Server) listMessages(w http.ResponseWriter, r *http.Request, order chat.Order) {
	page, pageSize := pageParams(r)
	result, err := s.hub.ListMessages(r.Context(), page, pageSize, order)
	if err != nil {
		writeHubError(w, r, err)
		return
	}
	response.Paged(w, result.Total, result.Data)
}

// DeleteMessageHandler handles DELETE /admin/messages/{id}.
func (s *Server) DeleteMessageHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ok, err := s.hub.DeleteMessage(r.Context(), id)
	if err != nil {
		writeHubError(w, r, err)
		return
	}
	if !ok {
		response.NotFound(w, "消息不存在")
		return
	}
	response.Result(w, true)
}

// KickUserHandler handles POST /admin/kick-user.
func (s *Server) KickUserHandler(w http.ResponseWriter, r *http.Request) {
	var req KickRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	ok, err := s.hub.Kick(r.Context(), req.UserID)
	if err != nil {
		writeHubError(w, r, err)
		return
	}
	response.Result(w, ok)
}
