package identity

import (
	"context"
	"net/http"
	"time"

	"github.com/mcdev12/dynasty-sim/go/internal/identity/db"
	"github.com/mcdev12/dynasty-sim/go/internal/models"
	"github.com/rs/zerolog/log"
)

// SessionConfig controls the session cookie and its sliding expiry
type SessionConfig struct {
	CookieName    string        `yaml:"cookie_name"`
	TTL           time.Duration `yaml:"ttl"`
	RefreshWindow time.Duration `yaml:"refresh_window"`
	Secure        bool          `yaml:"secure"`
}

// DefaultSessionConfig returns the session defaults
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		CookieName:    "dynasty_session",
		TTL:           7 * 24 * time.Hour,
		RefreshWindow: 24 * time.Hour,
		Secure:        true,
	}
}

type userKey struct{}

// WithUser attaches the resolved caller to ctx. A nil user means anonymous.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFromContext returns the caller resolved by Middleware, or nil.
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey{}).(*models.User)
	return user
}

// Middleware is the request-interception stage: the only place session state
// is mutated. It refreshes sessions close to expiry, clears cookies of dead
// sessions and attaches the caller to the request context for handlers.
func Middleware(p *Provider, cfg SessionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := p.refresh(r.Context(), r, NewResponseCookies(w), cfg)
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func (p *Provider) refresh(ctx context.Context, cookies CookieReader, writer CookieWriter, cfg SessionConfig) *models.User {
	session, tokenHash, err := p.lookup(ctx, cookies)
	if err != nil {
		// Store unreachable: treat the request as anonymous but keep the cookie.
		log.Warn().Err(err).Msg("session lookup failed")
		return nil
	}
	if session == nil {
		if tokenHash != "" {
			writer.SetCookie(p.expiredCookie(cfg))
		}
		return nil
	}

	now := p.clock.Now()
	if session.ExpiresAt.Sub(now) <= cfg.RefreshWindow {
		expiresAt := now.Add(cfg.TTL)
		if err := p.queries.ExtendSession(ctx, db.ExtendSessionParams{TokenHash: tokenHash, ExpiresAt: expiresAt}); err != nil {
			log.Warn().Err(err).Str("user_id", session.UserID.String()).Msg("failed to extend session")
			return session.User()
		}
		if cookie, err := cookies.Cookie(p.cookieName); err == nil {
			writer.SetCookie(p.sessionCookie(cookie.Value, expiresAt, cfg))
		}
		log.Debug().Str("user_id", session.UserID.String()).Time("expires_at", expiresAt).Msg("session refreshed")
	}

	return session.User()
}

func (p *Provider) sessionCookie(token string, expiresAt time.Time, cfg SessionConfig) *http.Cookie {
	return &http.Cookie{
		Name:     p.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (p *Provider) expiredCookie(cfg SessionConfig) *http.Cookie {
	return &http.Cookie{
		Name:     p.cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
