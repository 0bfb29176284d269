// Package handler exposes the storefront HTTP API: catalog browsing, basket
// manipulation, authentication, checkout, and order history.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sentinel-sec/storefront/internal/domain/basket"
	"github.com/sentinel-sec/storefront/internal/domain/catalog"
	"github.com/sentinel-sec/storefront/internal/domain/checkout"
	"github.com/sentinel-sec/storefront/internal/domain/order"
	"github.com/sentinel-sec/storefront/internal/supabase"
)

// sessionCookie identifies the anonymous basket session in the browser.
const sessionCookie = "basket_session"

// AuthService is the slice of the Supabase client the handler needs.
type AuthService interface {
	SignUp(ctx context.Context, email, password string) (*supabase.Session, error)
	SignIn(ctx context.Context, email, password string) (*supabase.Session, error)
	SignOut(ctx context.Context, accessToken string) error
}

// TokenVerifier validates access tokens and resolves the user behind them.
type TokenVerifier interface {
	Verify(token string) (*supabase.User, error)
}

// Handler serves the storefront API.
type Handler struct {
	catalog  catalog.Repository
	auth     AuthService
	verifier TokenVerifier
	baskets  *basket.Manager
	checkout *checkout.Service
	orders   order.Repository
}

func New(
	cat catalog.Repository,
	auth AuthService,
	verifier TokenVerifier,
	baskets *basket.Manager,
	co *checkout.Service,
	orders order.Repository,
) *Handler {
	return &Handler{
		catalog:  cat,
		auth:     auth,
		verifier: verifier,
		baskets:  baskets,
		checkout: co,
		orders:   orders,
	}
}

// RegisterRoutes mounts all API routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/certifications", h.listCertifications)
	mux.HandleFunc("GET /api/certifications/{id}", h.getCertification)
	mux.HandleFunc("GET /api/posts", h.listPosts)
	mux.HandleFunc("GET /api/posts/search", h.searchPosts)
	mux.HandleFunc("GET /api/posts/{id}", h.getPost)

	mux.HandleFunc("GET /api/basket", h.getBasket)
	mux.HandleFunc("GET /api/basket/watch", h.watchBasket)
	mux.HandleFunc("DELETE /api/basket", h.clearBasket)
	mux.HandleFunc("POST /api/basket/items", h.addBasketItem)
	mux.HandleFunc("PUT /api/basket/items/{id}", h.updateBasketItem)
	mux.HandleFunc("DELETE /api/basket/items/{id}", h.removeBasketItem)
	mux.HandleFunc("POST /api/basket/voucher", h.applyVoucher)

	mux.HandleFunc("POST /api/checkout", h.submitCheckout)
	mux.HandleFunc("GET /api/orders", h.listOrders)

	mux.HandleFunc("POST /api/auth/signup", h.signUp)
	mux.HandleFunc("POST /api/auth/signin", h.signIn)
	mux.HandleFunc("POST /api/auth/signout", h.signOut)
	mux.HandleFunc("GET /api/account", h.account)
}

// session returns the basket session ID, minting a new cookie when the
// request carries none.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}

	id := newSessionID()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func newSessionID() string {
	return uuid.New().String()
}

// bearerToken extracts the access token from the Authorization header, or ""
// when absent.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
		return auth[len(prefix):]
	}
	return ""
}

// currentUser resolves the authenticated user, or nil for anonymous requests.
func (h *Handler) currentUser(r *http.Request) *supabase.User {
	token := bearerToken(r)
	if token == "" {
		return nil
	}
	u, err := h.verifier.Verify(token)
	if err != nil {
		return nil
	}
	return u
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeInternal logs the error and hides the detail from the client.
func writeInternal(ctx context.Context, w http.ResponseWriter, err error) {
	zctx.From(ctx).Error("request failed", zap.Error(err))
	writeError(w, http.StatusBadGateway, "upstream request failed")
}

func decodeBody(r *http.Request, v any) error {
	defer func() {
		_ = r.Body.Close()
	}()
	return json.NewDecoder(r.Body).Decode(v)
}
