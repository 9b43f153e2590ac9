package handlers

import (
	"net/http"

	"github.com/abrezinsky/councilvote/internal/auth"
	"github.com/abrezinsky/councilvote/internal/models"
)

// handleLoginPage renders the login form
func (h *Handlers) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if user, ok := h.Auth.GetSessionFromRequest(r); ok {
		http.Redirect(w, r, homeFor(user), http.StatusFound)
		return
	}
	h.render(w, h.templates.Login, "", h.pageData(r, "Sign in", "login"))
}

// handleLogin checks credentials and opens a session bound to this device
func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if req.Username == "" || req.Password == "" {
		h.respondError(w, r, BadRequest("username and password are required"))
		return
	}

	user, err := h.User.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	token, err := h.Auth.Login(r.Context(), user)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	auth.SetSessionCookie(w, token)
	h.log.Info("User signed in", "user_id", user.ID, "username", user.Username, "role", user.Role)

	respondOK(w, LoginResponse{Success: true, User: toSessionUser(user), Redirect: homeFor(user)})
}

// handleLogout clears the session
func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.CookieName); err == nil {
		h.Auth.Logout(r.Context(), cookie.Value)
	}
	auth.ClearSessionCookie(w)
	respondOK(w, map[string]bool{"success": true})
}

// handleMe returns the signed-in user
func (h *Handlers) handleMe(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	respondOK(w, map[string]interface{}{"user": toSessionUser(user)})
}

// handleHeartbeat records that the caller's device is online
func (h *Handlers) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	if err := h.User.Heartbeat(r.Context(), user.ID); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, map[string]bool{"success": true})
}

func homeFor(u *models.User) string {
	if u.Role == models.RoleAdmin {
		return "/admin"
	}
	return "/staff"
}
