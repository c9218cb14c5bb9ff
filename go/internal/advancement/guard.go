package advancement

import "github.com/mcdev12/dynasty-sim/go/internal/models"

// DenialReason says why the guard refused an advancement.
type DenialReason int

const (
	NotSignedIn DenialReason = iota + 1
	NotCommissioner
	LeagueNotFound
)

func (r DenialReason) String() string {
	switch r {
	case NotSignedIn:
		return "not_signed_in"
	case NotCommissioner:
		return "not_commissioner"
	case LeagueNotFound:
		return "league_not_found"
	default:
		return "authorized"
	}
}

// Decision is the guard's verdict. The zero value authorizes.
type Decision struct {
	Reason DenialReason
}

// Authorized reports whether the invoker may be reached.
func (d Decision) Authorized() bool {
	return d.Reason == 0
}

// Failure converts a denial into the failure shown to the caller.
func (d Decision) Failure() *Failure {
	switch d.Reason {
	case NotSignedIn:
		return &Failure{Kind: Unauthenticated, Reason: unauthenticatedMessage}
	case NotCommissioner:
		return &Failure{Kind: Unauthorized, Reason: unauthorizedMessage}
	case LeagueNotFound:
		return &Failure{Kind: NotFound, Reason: notFoundMessage}
	default:
		return nil
	}
}

// Authorize allows an advancement only for the signed-in commissioner of an
// existing league. It reads nothing beyond its arguments.
func Authorize(user *models.User, league *models.League) Decision {
	switch {
	case user == nil:
		return Decision{Reason: NotSignedIn}
	case league == nil:
		return Decision{Reason: LeagueNotFound}
	case !league.IsCommissioner(user.ID):
		return Decision{Reason: NotCommissioner}
	default:
		return Decision{}
	}
}
