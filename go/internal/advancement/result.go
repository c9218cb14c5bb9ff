package advancement

import (
	"encoding/json"
	"errors"

	"github.com/mcdev12/dynasty-sim/go/internal/dbconfig"
	"github.com/mcdev12/dynasty-sim/go/internal/sqlutil"
)

const (
	unauthenticatedMessage = "Sign in to advance the week."
	unauthorizedMessage    = "Only the commissioner can advance the week."
	notFoundMessage        = "League not found."
	transportMessage       = "Could not reach the league store. Please try again."
)

// FailureKind classifies a failed attempt.
type FailureKind int

const (
	Unauthenticated FailureKind = iota + 1
	Unauthorized
	NotFound
	Configuration
	Remote
	Transport
)

func (k FailureKind) String() string {
	switch k {
	case Unauthenticated:
		return "unauthenticated"
	case Unauthorized:
		return "unauthorized"
	case NotFound:
		return "not_found"
	case Configuration:
		return "configuration"
	case Remote:
		return "remote"
	case Transport:
		return "transport"
	default:
		return "none"
	}
}

// Failure is a failed attempt. Reason is safe to show; Err is for logs only.
type Failure struct {
	Kind   FailureKind
	Reason string
	Err    error
}

func (f *Failure) Error() string {
	return f.Reason
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Result is Success{summary} or Failure{reason}.
type Result struct {
	// Summary is the procedure's payload, untouched. It may be nil.
	Summary json.RawMessage
	Failure *Failure
}

// Success wraps a procedure summary.
func Success(summary json.RawMessage) Result {
	return Result{Summary: summary}
}

// Fail wraps a failure.
func Fail(f *Failure) Result {
	return Result{Failure: f}
}

// Succeeded reports whether the procedure ran and returned without error.
func (r Result) Succeeded() bool {
	return r.Failure == nil
}

// classify maps a store error onto the failure taxonomy. Server-side errors
// keep their text verbatim.
func classify(err error) *Failure {
	var missing *dbconfig.MissingError
	if errors.As(err, &missing) {
		return &Failure{
			Kind:   Configuration,
			Reason: "Server misconfigured: " + missing.Key + " is not set.",
			Err:    err,
		}
	}
	if se, ok := sqlutil.AsServerError(err); ok {
		return &Failure{Kind: Remote, Reason: se.Message, Err: err}
	}
	return &Failure{Kind: Transport, Reason: transportMessage, Err: err}
}
