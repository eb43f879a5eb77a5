package handlers

import (
	"net/http"
	"time"

	"github.com/gartstein/clubhire/internal/hiring/auth"
	e "github.com/gartstein/clubhire/internal/hiring/errors"
	"github.com/gartstein/clubhire/internal/hiring/models"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Session   models.Session `json:"session"`
	ExpiresAt time.Time      `json:"expiresAt"`
}

// login sets the session cookie on success. The token itself is not echoed
// back.
func (h *Handler) login(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req loginRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	token, expiresAt, s, err := h.svc.Accounts.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.sessions.SetCookie(w, token, h.secureCookies)
	writeJSON(w, http.StatusOK, loginResponse{Session: s, ExpiresAt: expiresAt})
}

func (h *Handler) logout(w http.ResponseWriter, _ *http.Request, _ map[string]string) {
	h.sessions.ClearCookie(w, h.secureCookies)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	s, ok := auth.SessionFromContext(r.Context())
	if !ok {
		h.writeError(w, r, e.ErrUnauthenticated)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *Handler) createReviewer(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var in models.NewReviewer
	if err := decodeJSON(r.Body, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	reviewer, err := h.svc.Accounts.CreateReviewer(r.Context(), &in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, reviewer)
}
