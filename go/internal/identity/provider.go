package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/dynasty-sim/go/internal/identity/db"
	"github.com/mcdev12/dynasty-sim/go/internal/models"
	"github.com/mcdev12/dynasty-sim/go/internal/sqlutil"
)

// Querier defines what the provider needs from the database layer
type Querier interface {
	GetSession(ctx context.Context, tokenHash string) (db.GetSessionRow, error)
	ExtendSession(ctx context.Context, arg db.ExtendSessionParams) error
}

// Provider resolves the signed-in user from the session cookie
type Provider struct {
	queries    Querier
	clock      clockwork.Clock
	cookieName string
}

// NewProvider creates a new identity provider
func NewProvider(queries Querier, clock clockwork.Clock, cookieName string) *Provider {
	return &Provider{
		queries:    queries,
		clock:      clock,
		cookieName: cookieName,
	}
}

// CurrentUser returns the signed-in user, or nil when there is no valid session.
// It never writes cookies or session rows.
func (p *Provider) CurrentUser(ctx context.Context, cookies CookieReader) (*models.User, error) {
	session, _, err := p.lookup(ctx, cookies)
	if err != nil || session == nil {
		return nil, err
	}
	return session.User(), nil
}

// lookup returns the live session and its token hash. A missing, unknown or
// expired session yields a nil session and a nil error.
func (p *Provider) lookup(ctx context.Context, cookies CookieReader) (*models.Session, string, error) {
	cookie, err := cookies.Cookie(p.cookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return nil, "", nil
		}
		return nil, "", err
	}
	if cookie.Value == "" {
		return nil, "", nil
	}

	tokenHash := HashToken(cookie.Value)
	row, err := p.queries.GetSession(ctx, tokenHash)
	if err != nil {
		if sqlutil.IsNoRows(err) {
			return nil, tokenHash, nil
		}
		return nil, tokenHash, fmt.Errorf("failed to get session: %w", err)
	}

	if !p.clock.Now().Before(row.ExpiresAt) {
		return nil, tokenHash, nil
	}

	return &models.Session{
		UserID:    row.UserID,
		Email:     row.Email,
		ExpiresAt: row.ExpiresAt,
	}, tokenHash, nil
}

// HashToken returns the form session tokens are stored in.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
