package auth

import (
	"encoding/json"
	"net/http"

	"github.com/Tyrowin/gochat/internal/log"
	"github.com/Tyrowin/gochat/internal/response"
)

type loginRequest struct {
	Password string `json:"password"`
}

// LoginHandler handles POST /admin/login.
func (g *Gate) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	token, err := g.Login(req.Password)
	if err != nil {
		log.Audit(r.Context(), log.ActionLoginFailed, log.ClientIP(r), "moderator login rejected")
		response.Unauthorized(w, "密码错误")
		return
	}

	g.SetCookie(w, token)
	log.Audit(r.Context(), log.ActionLogin, log.ClientIP(r), "moderator logged in")
	response.Success(w, nil)
}

// CheckHandler handles GET /admin/check.
func (g *Gate) CheckHandler(w http.ResponseWriter, r *http.Request) {
	if !g.Authorized(r) {
		response.Unauthorized(w, "未授权")
		return
	}
	response.Success(w, nil)
}

// LogoutHandler handles POST /admin/logout.
func (g *Gate) LogoutHandler(w http.ResponseWriter, _ *http.Request) {
	g.ClearCookie(w)
	response.Success(w, nil)
}

// RequireModerator rejects requests without a valid moderator token.
func (g *Gate) RequireModerator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.Authorized(r) {
			response.Unauthorized(w, "未授权")
			return
		}
		next.ServeHTTP(w, r)
	})
}
