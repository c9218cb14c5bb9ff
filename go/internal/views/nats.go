package views

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// NATSConfig configures the cross-instance stale-view relay
type NATSConfig struct {
	URL           string
	SubjectPrefix string
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultNATSConfig returns the relay defaults
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           nats.DefaultURL,
		SubjectPrefix: "league.views.stale",
		MaxReconnects: -1, // Infinite
		ReconnectWait: 2 * time.Second,
	}
}

// Connect opens the NATS connection used by the relay
func Connect(cfg NATSConfig) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name("dynasty-web"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return nc, nil
}

// Subject returns the subject stale events for a league are published on.
func Subject(prefix string, leagueID uuid.UUID) string {
	return fmt.Sprintf("%s.%s", prefix, leagueID)
}

// NATSNotifier publishes stale sets so every web instance can push them to
// its own subscribers.
type NATSNotifier struct {
	nc     *nats.Conn
	prefix string
	clock  clockwork.Clock
}

// NewNATSNotifier creates a notifier publishing under prefix
func NewNATSNotifier(nc *nats.Conn, prefix string, clock clockwork.Clock) *NATSNotifier {
	return &NATSNotifier{nc: nc, prefix: prefix, clock: clock}
}

func (n *NATSNotifier) Invalidate(_ context.Context, leagueID uuid.UUID, stale Set) error {
	if stale.Empty() {
		return nil
	}
	data, err := json.Marshal(NewStaleEvent(leagueID, stale, n.clock.Now()))
	if err != nil {
		return fmt.Errorf("marshal stale event: %w", err)
	}
	if err := n.nc.Publish(Subject(n.prefix, leagueID), data); err != nil {
		return fmt.Errorf("publish stale event: %w", err)
	}
	return nil
}

// Relay subscribes to every league's stale events and hands them to the hub
func Relay(nc *nats.Conn, prefix string, hub *Hub) (*nats.Subscription, error) {
	sub, err := nc.Subscribe(prefix+".*", func(msg *nats.Msg) {
		event, err := DecodeStaleEvent(prefix, msg.Subject, msg.Data)
		if err != nil {
			log.Warn().Err(err).Str("subject", msg.Subject).Msg("dropping malformed stale event")
			return
		}
		hub.Broadcast(event)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe to stale events: %w", err)
	}
	log.Info().Str("subject", prefix+".*").Msg("relaying stale events")
	return sub, nil
}

// DecodeStaleEvent parses a relayed event and checks it against its subject.
func DecodeStaleEvent(prefix, subject string, data []byte) (StaleEvent, error) {
	var event StaleEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return StaleEvent{}, fmt.Errorf("unmarshal stale event: %w", err)
	}
	suffix, ok := strings.CutPrefix(subject, prefix+".")
	if !ok {
		return StaleEvent{}, fmt.Errorf("subject %q outside prefix %q", subject, prefix)
	}
	leagueID, err := uuid.Parse(suffix)
	if err != nil {
		return StaleEvent{}, fmt.Errorf("parse league ID from subject: %w", err)
	}
	if event.LeagueID != leagueID {
		return StaleEvent{}, fmt.Errorf("event league %s does not match subject league %s", event.LeagueID, leagueID)
	}
	event.Views = NewSet(event.Views...)
	return event, nil
}
