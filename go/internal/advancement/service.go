package advancement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/mcdev12/dynasty-sim/go/internal/identity"
	"github.com/mcdev12/dynasty-sim/go/internal/models"
	"github.com/mcdev12/dynasty-sim/go/internal/views"
)

const (
	// ServiceName is the fully-qualified name of the advancement service.
	ServiceName = "dynasty.advancement.v1.AdvancementService"
	// AdvanceProcedure is the path of the Advance RPC.
	AdvanceProcedure = "/" + ServiceName + "/Advance"
)

// AdvanceRequest is the JSON body of an Advance call.
type AdvanceRequest struct {
	LeagueID string `json:"league_id"`
	Kind     string `json:"kind"`
}

// AdvanceResponse reports a successful advancement.
type AdvanceResponse struct {
	Message    string          `json:"message"`
	Summary    json.RawMessage `json:"summary,omitempty"`
	StaleViews []views.View    `json:"stale_views"`
}

// Advancer defines what the service layer needs from the orchestrator
type Advancer interface {
	Advance(ctx context.Context, user *models.User, req Request) Report
}

// Service exposes the workflow over Connect with JSON bodies.
type Service struct {
	advancer Advancer
}

// NewService creates a new advancement service
func NewService(advancer Advancer) *Service {
	return &Service{
		advancer: advancer,
	}
}

// NewHandler builds the Connect handler for the service and returns the path
// prefix to mount it under.
func NewHandler(svc *Service, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{
		connect.WithCodec(JSONCodec{}),
		connect.WithCodec(JSONCodec{charset: true}),
	}, opts...)

	mux := http.NewServeMux()
	mux.Handle(AdvanceProcedure, connect.NewUnaryHandler(AdvanceProcedure, svc.Advance, opts...))
	return "/" + ServiceName + "/", mux
}

// Advance runs one advancement for the signed-in caller
func (s *Service) Advance(ctx context.Context, req *connect.Request[AdvanceRequest]) (*connect.Response[AdvanceResponse], error) {
	leagueID, err := uuid.Parse(req.Msg.LeagueID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("invalid league_id: %w", err))
	}
	kind, err := ParseKind(req.Msg.Kind)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	report := s.advancer.Advance(ctx, identity.UserFromContext(ctx), Request{LeagueID: leagueID, Kind: kind})
	if !report.Result.Succeeded() {
		return nil, connect.NewError(codeFor(report.Result.Failure.Kind), errors.New(report.Outcome.Message))
	}

	return connect.NewResponse(&AdvanceResponse{
		Message:    report.Outcome.Message,
		Summary:    report.Result.Summary,
		StaleViews: report.Outcome.Stale,
	}), nil
}

func codeFor(kind FailureKind) connect.Code {
	switch kind {
	case Unauthenticated:
		return connect.CodeUnauthenticated
	case Unauthorized:
		return connect.CodePermissionDenied
	case NotFound:
		return connect.CodeNotFound
	case Configuration:
		return connect.CodeInternal
	case Remote:
		return connect.CodeFailedPrecondition
	default:
		return connect.CodeUnavailable
	}
}

// JSONCodec marshals plain Go structs, so the service needs no generated
// message types. Connect matches codecs by the exact content-type suffix, so
// the charset-qualified form is registered as its own codec.
type JSONCodec struct {
	charset bool
}

func (c JSONCodec) Name() string {
	if c.charset {
		return "json; charset=utf-8"
	}
	return "json"
}

func (JSONCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (JSONCodec) Unmarshal(data []byte, msg any) error {
	return json.Unmarshal(data, msg)
}
