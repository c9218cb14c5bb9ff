package advancement

import (
	"context"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/dynasty-sim/go/internal/credential"
)

// Invoker calls the remote procedure bound to a Kind exactly once.
type Invoker struct {
	procs   Procedures
	metrics MetricsCollector
	clock   clockwork.Clock
}

// NewInvoker creates an invoker over the given procedures
func NewInvoker(procs Procedures, metrics MetricsCollector, clock clockwork.Clock) *Invoker {
	if metrics == nil {
		metrics = &NoOpMetricsCollector{}
	}
	return &Invoker{
		procs:   procs,
		metrics: metrics,
		clock:   clock,
	}
}

// Invoke dispatches one already authorized request. The call runs detached
// from ctx cancellation: once sent it is never aborted, and it is never
// retried.
func (i *Invoker) Invoke(ctx context.Context, caller credential.Caller, leagueID uuid.UUID, kind Kind) Result {
	ctx = context.WithoutCancel(ctx)

	start := i.clock.Now()
	summary, err := kind.invoke(ctx, i.procs, caller, leagueID)
	i.metrics.RecordInvocation(kind.Name(), err == nil, i.clock.Since(start))

	if err != nil {
		return Fail(classify(err))
	}
	return Success(summary)
}
