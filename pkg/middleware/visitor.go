package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/storefront/pkg/logger"
)

// VisitorCookie names the cookie that identifies an anonymous shopper.
const VisitorCookie = "sf_visitor"

// VisitorConfig controls the visitor cookie.
type VisitorConfig struct {
	// MaxAge is the cookie lifetime. Zero yields a session cookie.
	MaxAge time.Duration
	Secure bool
}

// Visitor assigns each browser a stable visitor ID carried in a cookie and
// stores it in the request context (see logger.VisitorIDFromContext). Cookies
// that do not hold a UUID are replaced.
func Visitor(cfg VisitorConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(VisitorCookie); err == nil {
				if parsed, err := uuid.Parse(c.Value); err == nil {
					id = parsed.String()
				}
			}

			if id == "" {
				id = uuid.New().String()
			}

			// Refresh on every response so active visitors keep their cookie.
			http.SetCookie(w, &http.Cookie{
				Name:     VisitorCookie,
				Value:    id,
				Path:     "/",
				MaxAge:   int(cfg.MaxAge.Seconds()),
				HttpOnly: true,
				Secure:   cfg.Secure,
				SameSite: http.SameSiteLaxMode,
			})

			ctx := logger.WithVisitorID(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
