package handler

import (
	"context"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/sentinel-sec/storefront/internal/supabase"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) signUp(w http.ResponseWriter, r *http.Request) {
	h.authenticate(w, r, h.auth.SignUp)
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	h.authenticate(w, r, h.auth.SignIn)
}

func (h *Handler) authenticate(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, email, password string) (*supabase.Session, error),
) {
	var creds credentialsRequest
	if err := decodeBody(r, &creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if creds.Email == "" || creds.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	session, err := fn(r.Context(), creds.Email, creds.Password)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, session)
	case errors.Is(err, supabase.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid email or password")
	default:
		writeInternal(r.Context(), w, errors.Wrap(err, "authenticate"))
	}
}

func (h *Handler) signOut(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "missing access token")
		return
	}

	if err := h.auth.SignOut(r.Context(), token); err != nil {
		writeInternal(r.Context(), w, errors.Wrap(err, "sign out"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) account(w http.ResponseWriter, r *http.Request) {
	u := h.currentUser(r)
	if u == nil {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}
	writeJSON(w, http.StatusOK, u)
}
