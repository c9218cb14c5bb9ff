package advancement

import "github.com/mcdev12/dynasty-sim/go/internal/views"

// Outcome is what the presentation layer needs from a result: a status line
// and the views that must be refetched before they are shown again.
type Outcome struct {
	Message   string
	Succeeded bool
	Stale     views.Set
}

// Present maps a result onto its outcome. A failure leaves league state as it
// was, so nothing is stale and the reason is passed through verbatim.
func Present(kind Kind, r Result) Outcome {
	if !r.Succeeded() {
		return Outcome{Message: r.Failure.Reason}
	}
	return Outcome{
		Message:   kind.successMessage(),
		Succeeded: true,
		Stale:     kind.StaleViews(),
	}
}
