package advancement

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/dynasty-sim/go/internal/credential"
	"github.com/mcdev12/dynasty-sim/go/internal/leagues"
	"github.com/mcdev12/dynasty-sim/go/internal/models"
	"github.com/mcdev12/dynasty-sim/go/internal/views"
	"github.com/rs/zerolog/log"
)

// LeagueReader defines what the orchestrator needs from the league store
type LeagueReader interface {
	GetLeague(ctx context.Context, caller credential.Caller, id uuid.UUID) (*models.League, error)
}

// Request asks for one advancement of one league. It is built per caller
// action and never persisted.
type Request struct {
	LeagueID uuid.UUID
	Kind     Kind
}

// Report is everything one call to Advance produced.
type Report struct {
	Request Request
	Result  Result
	Outcome Outcome
	Attempt *Attempt
}

// Orchestrator runs authorize, invoke and present for a single request.
// It keeps no state between requests, so concurrent advancements of the same
// league all reach the store, which decides between them.
type Orchestrator struct {
	leagues     LeagueReader
	invoker     *Invoker
	invalidator views.Invalidator
	metrics     MetricsCollector
	clock       clockwork.Clock
}

// NewOrchestrator creates an orchestrator. invalidator and metrics may be nil.
func NewOrchestrator(leagues LeagueReader, invoker *Invoker, invalidator views.Invalidator, metrics MetricsCollector, clock clockwork.Clock) *Orchestrator {
	if metrics == nil {
		metrics = &NoOpMetricsCollector{}
	}
	return &Orchestrator{
		leagues:     leagues,
		invoker:     invoker,
		invalidator: invalidator,
		metrics:     metrics,
		clock:       clock,
	}
}

// Advance authorizes user against the league with the user's own credential
// and, only when authorized, invokes the procedure for req.Kind once.
func (o *Orchestrator) Advance(ctx context.Context, user *models.User, req Request) Report {
	attempt := newAttempt(o.clock)
	result := o.run(ctx, attempt, user, req)

	if err := attempt.finish(result); err != nil {
		log.Error().Err(err).Str("attempt_id", attempt.ID.String()).Msg("attempt state machine violated")
	}
	outcome := Present(req.Kind, result)

	var failure FailureKind
	if !result.Succeeded() {
		failure = result.Failure.Kind
	}
	o.metrics.RecordAttempt(req.Kind.Name(), failure, attempt.Duration())

	event := log.Info()
	if !result.Succeeded() {
		event = log.Warn().Err(result.Failure.Err).Str("failure", failure.String())
	}
	event.
		Str("attempt_id", attempt.ID.String()).
		Str("league_id", req.LeagueID.String()).
		Str("kind", req.Kind.Name()).
		Dur("duration", attempt.Duration()).
		Msg(outcome.Message)

	if !outcome.Stale.Empty() && o.invalidator != nil {
		if err := o.invalidator.Invalidate(context.WithoutCancel(ctx), req.LeagueID, outcome.Stale); err != nil {
			log.Warn().Err(err).Str("league_id", req.LeagueID.String()).Msg("failed to signal stale views")
		}
	}

	return Report{
		Request: req,
		Result:  result,
		Outcome: outcome,
		Attempt: attempt,
	}
}

func (o *Orchestrator) run(ctx context.Context, attempt *Attempt, user *models.User, req Request) Result {
	if err := attempt.to(PhaseAuthorizing); err != nil {
		return Fail(&Failure{Kind: Transport, Reason: transportMessage, Err: err})
	}

	// Unauthenticated callers never reach the store.
	if user == nil {
		return Fail(Authorize(nil, nil).Failure())
	}

	caller := credential.ForUser(user)
	league, err := o.leagues.GetLeague(ctx, caller, req.LeagueID)
	if err != nil && !errors.Is(err, leagues.ErrLeagueNotFound) {
		return Fail(classify(err))
	}

	decision := Authorize(user, league)
	if !decision.Authorized() {
		return Fail(decision.Failure())
	}

	if err := attempt.to(PhaseInvoking); err != nil {
		return Fail(&Failure{Kind: Transport, Reason: transportMessage, Err: err})
	}
	return o.invoker.Invoke(ctx, caller, req.LeagueID, req.Kind)
}
