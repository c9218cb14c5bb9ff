package web

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/dynasty-sim/go/internal/advancement"
	"github.com/mcdev12/dynasty-sim/go/internal/credential"
	"github.com/mcdev12/dynasty-sim/go/internal/models"
	"github.com/unrolled/render"
)

//go:embed templates
var templates embed.FS

// LeagueStore defines what the pages need from the league store
type LeagueStore interface {
	GetDashboard(ctx context.Context, caller credential.Caller, leagueID uuid.UUID) (*models.League, *models.Membership, error)
	ListMemberships(ctx context.Context, caller credential.Caller) ([]models.Membership, error)
}

// Advancer runs the advancement workflow
type Advancer interface {
	Advance(ctx context.Context, user *models.User, req advancement.Request) advancement.Report
}

// Subscriber upgrades a dashboard tab into a stale-view subscriber
type Subscriber interface {
	Upgrade(w http.ResponseWriter, r *http.Request, userID, leagueID uuid.UUID) error
}

// Pinger checks the store is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps are the collaborators the router wires into its handlers.
type Deps struct {
	Leagues  LeagueStore
	Advancer Advancer
	Events   Subscriber
	Store    Pinger

	// Metrics serves the Prometheus exposition, nil when metrics are off.
	Metrics http.Handler

	// Session is the request-interception stage that resolves the caller.
	Session func(http.Handler) http.Handler

	// RealtimeStatus reports the relay connection state, nil when disabled.
	RealtimeStatus func() string

	RPCPath    string
	RPCHandler http.Handler
}

func newRender() *render.Render {
	return render.New(render.Options{
		Directory: "templates",
		Layout:    "layout",
		FileSystem: &render.EmbedFileSystem{
			FS: templates,
		},
		Funcs: []template.FuncMap{
			{
				"date":          dateFormatter,
				"dashboardPath": dashboardPath,
			},
		},
	})
}

func dateFormatter(t time.Time) string {
	if t.IsZero() {
		return "Unknown"
	}
	return t.Format("Jan 2, 2006")
}

func dashboardPath(leagueID uuid.UUID) string {
	return "/leagues/" + leagueID.String()
}
