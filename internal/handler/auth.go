package handler

import (
	"net/http"

	"github.com/armahof/supportdesk/internal/auth"
	"github.com/armahof/supportdesk/internal/domain"
	"github.com/armahof/supportdesk/internal/service"
)

// AuthHandler handles the login and logout pages.
type AuthHandler struct {
	authSvc  *service.AuthService
	sessions *auth.SessionManager
	renderer *Renderer
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authSvc *service.AuthService, sessions *auth.SessionManager, renderer *Renderer) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, sessions: sessions, renderer: renderer}
}

// loginPage carries the inline login error. Login failures cannot flash
// because no session exists yet.
type loginPage struct {
	Error string
}

// Home handles GET /.
func (h *AuthHandler) Home(w http.ResponseWriter, r *http.Request) {
	if session, err := h.sessions.Resolve(r.Context(), r); err == nil && session != nil {
		http.Redirect(w, r, "/tables", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// ShowLogin handles GET /login.
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	if session, err := h.sessions.Resolve(r.Context(), r); err == nil && session != nil {
		http.Redirect(w, r, "/tables", http.StatusSeeOther)
		return
	}
	h.renderer.Render(w, r, http.StatusOK, "login", loginPage{})
}

// Login handles POST /login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.Error(w, r, domain.ErrValidation("malformed form"))
		return
	}

	user, err := h.authSvc.Login(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		h.renderer.Render(w, r, http.StatusUnauthorized, "login", loginPage{Error: "login failed"})
		return
	}

	if _, err := h.sessions.Issue(r.Context(), w, user.ID); err != nil {
		h.renderer.Error(w, r, domain.ErrInternal("issue session", err))
		return
	}
	http.Redirect(w, r, "/tables", http.StatusSeeOther)
}

// Logout handles POST /logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
		h.renderer.Error(w, r, domain.ErrInternal("destroy session", err))
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
