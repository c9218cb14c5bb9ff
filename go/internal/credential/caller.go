package credential

import (
	"github.com/google/uuid"
	"github.com/mcdev12/dynasty-sim/go/internal/models"
	"github.com/mcdev12/dynasty-sim/go/internal/sqlutil"
)

// AuthenticatedRole is the store role every signed-in caller runs as.
const AuthenticatedRole = "authenticated"

// Caller is the signed-in user's own credential. Queries run with it are subject
// to the store's row-level policies for that user.
type Caller struct {
	UserID uuid.UUID
	Email  string
}

// ForUser builds the caller credential for an authenticated user.
func ForUser(u *models.User) Caller {
	return Caller{UserID: u.ID, Email: u.Email}
}

// Claims returns the claims the store's policies read.
func (c Caller) Claims() sqlutil.Claims {
	return sqlutil.Claims{
		Subject: c.UserID.String(),
		Email:   c.Email,
		Role:    AuthenticatedRole,
	}
}
