package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/validator"
	"github.com/utafrali/storefront/services/storefront/internal/api"
	"github.com/utafrali/storefront/services/storefront/internal/domain"
	"github.com/utafrali/storefront/services/storefront/internal/service"
)

// AuthHandler handles signup, login and the session display.
type AuthHandler struct {
	visitors visitorSource
	logger   *slog.Logger
}

// NewAuthHandler creates a new auth HTTP handler.
func NewAuthHandler(registry *service.Registry, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{visitors: visitorSource{registry: registry}, logger: logger}
}

// SessionResponse is what the navbar needs to render. The token itself
// never leaves the server.
type SessionResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *domain.User `json:"user,omitempty"`
	CartCount     int          `json:"cart_count"`
	WishlistCount int          `json:"wishlist_count"`
}

func sessionResponse(r *http.Request, v *service.Visitor) SessionResponse {
	resp := SessionResponse{
		Authenticated: v.Session.IsAuthenticated(r.Context()),
		CartCount:     v.Cart.GetTotalItems(),
		WishlistCount: v.Wishlist.Count(),
	}
	if resp.Authenticated {
		resp.User = v.Session.User(r.Context())
	}
	return resp
}

// Signup handles POST /api/v1/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	v, ok := h.visitors.current(w, r)
	if !ok {
		return
	}

	var req domain.SignupRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if _, err := v.Auth().Signup(r.Context(), req); err != nil {
		httputil.WriteError(w, r, api.ToAppError(err), h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: sessionResponse(r, v)})
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	v, ok := h.visitors.current(w, r)
	if !ok {
		return
	}

	var req domain.LoginRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if _, err := v.Auth().Login(r.Context(), req); err != nil {
		httputil.WriteError(w, r, api.ToAppError(err), h.logger)
		return
	}

	httputil.WriteData(w, sessionResponse(r, v))
}

// Logout handles POST /api/v1/auth/logout. It only forgets the local session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	v, ok := h.visitors.current(w, r)
	if !ok {
		return
	}

	v.Auth().Logout(r.Context())
	httputil.WriteData(w, sessionResponse(r, v))
}

// Me handles GET /api/v1/auth/me. With ?refresh=true the user record is
// re-fetched from the backend and stored in the session.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	v, ok := h.visitors.current(w, r)
	if !ok {
		return
	}

	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))
	if refresh && v.Session.IsAuthenticated(r.Context()) {
		user, err := v.Auth().CurrentUser(r.Context())
		if err != nil {
			httputil.WriteError(w, r, api.ToAppError(err), h.logger)
			return
		}
		v.Session.SetAuth(r.Context(), v.Session.Token(r.Context()), user)
	}

	httputil.WriteData(w, sessionResponse(r, v))
}
