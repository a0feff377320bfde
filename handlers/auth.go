// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"time"

	"github.com/danielhkuo/pollhub/cliparse"
	"github.com/danielhkuo/pollhub/middleware"
	"github.com/danielhkuo/pollhub/models"
	"github.com/danielhkuo/pollhub/session"
)

type AuthHandler struct {
	guard *session.Guard
	cfg   cliparse.Config
}

func NewAuthHandler(guard *session.Guard, cfg cliparse.Config) *AuthHandler {
	return &AuthHandler{guard: guard, cfg: cfg}
}

// Login handles POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := models.Validate(req); err != nil {
		middleware.WriteError(w, err)
		return
	}

	s, err := h.guard.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    s.Token,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	middleware.JSONResponse(w, http.StatusOK, models.LoginResponse{
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
		User:      s.Identity,
	})
}

// Logout handles POST /logout
// Anonymous callers succeed too; there is simply nothing to revoke.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.TokenFromRequest(r); token != "" {
		if err := h.guard.Destroy(r.Context(), token); err != nil {
			middleware.WriteError(w, err)
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "logged out"})
}

// Me handles GET /me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		middleware.WriteError(w, models.ErrUnauthenticated)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, id)
}
