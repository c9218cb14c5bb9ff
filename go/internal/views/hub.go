package views

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Hub pushes stale events to browser tabs that have a league's pages open
type Hub struct {
	// Connection pools organized by league ID
	leagueConnections map[uuid.UUID]map[*Connection]bool
	mu                sync.RWMutex

	upgrader    websocket.Upgrader
	config      HubConfig
	clock       clockwork.Clock
	broadcastCh chan StaleEvent
}

// Connection represents a WebSocket connection to a client
type Connection struct {
	ID       string
	UserID   uuid.UUID
	LeagueID uuid.UUID
	Conn     *websocket.Conn
	Send     chan []byte
	hub      *Hub

	ConnectedAt time.Time
}

// HubConfig holds configuration for WebSocket connections
type HubConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

// DefaultHubConfig returns default WebSocket configuration
func DefaultHubConfig() HubConfig {
	return HubConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  512,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
}

// NewHub creates a new hub
func NewHub(config HubConfig, clock clockwork.Clock) *Hub {
	return &Hub{
		leagueConnections: make(map[uuid.UUID]map[*Connection]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		clock:       clock,
		broadcastCh: make(chan StaleEvent, 256),
	}
}

// Start processes broadcasts until ctx is done
func (h *Hub) Start(ctx context.Context) {
	log.Info().Msg("view hub started")

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			log.Info().Msg("view hub shutting down")
			return
		case event := <-h.broadcastCh:
			h.handleBroadcast(event)
		}
	}
}

// Invalidate queues a stale event for every tab open on the league.
func (h *Hub) Invalidate(_ context.Context, leagueID uuid.UUID, stale Set) error {
	if stale.Empty() {
		return nil
	}
	h.Broadcast(NewStaleEvent(leagueID, stale, h.clock.Now()))
	return nil
}

// Broadcast queues an already built event. Events are dropped when the queue is full.
func (h *Hub) Broadcast(event StaleEvent) {
	select {
	case h.broadcastCh <- event:
	default:
		log.Warn().Str("league_id", event.LeagueID.String()).Msg("broadcast channel full, dropping stale event")
	}
}

// Upgrade upgrades an HTTP connection to WebSocket and subscribes it to a league
func (h *Hub) Upgrade(w http.ResponseWriter, r *http.Request, userID, leagueID uuid.UUID) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	c := &Connection{
		ID:          uuid.NewString(),
		UserID:      userID,
		LeagueID:    leagueID,
		Conn:        conn,
		Send:        make(chan []byte, 16),
		hub:         h,
		ConnectedAt: h.clock.Now(),
	}
	h.register(c)

	go c.writePump()
	go c.readPump()

	log.Debug().
		Str("connection_id", c.ID).
		Str("user_id", userID.String()).
		Str("league_id", leagueID.String()).
		Msg("view subscriber connected")
	return nil
}

// ConnectionCount returns the number of open connections for a league
func (h *Hub) ConnectionCount(leagueID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.leagueConnections[leagueID])
}

func (h *Hub) register(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.leagueConnections[c.LeagueID] == nil {
		h.leagueConnections[c.LeagueID] = make(map[*Connection]bool)
	}
	h.leagueConnections[c.LeagueID][c] = true
}

func (h *Hub) unregister(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

// removeLocked drops c and closes its Send channel. Send is only ever closed
// here, under the write lock, so a send made while holding the lock never
// races a close.
func (h *Hub) removeLocked(c *Connection) {
	connections, ok := h.leagueConnections[c.LeagueID]
	if !ok || !connections[c] {
		return
	}
	delete(connections, c)
	close(c.Send)
	if len(connections) == 0 {
		delete(h.leagueConnections, c.LeagueID)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, connections := range h.leagueConnections {
		for c := range connections {
			h.removeLocked(c)
		}
	}
}

func (h *Hub) handleBroadcast(event StaleEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal stale event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	connections := h.leagueConnections[event.LeagueID]
	if len(connections) == 0 {
		return
	}
	sent := len(connections)
	for c := range connections {
		select {
		case c.Send <- data:
		default:
			log.Warn().Str("connection_id", c.ID).Msg("send buffer full, closing connection")
			h.removeLocked(c)
			sent--
		}
	}

	log.Debug().
		Str("league_id", event.LeagueID.String()).
		Int("connections", sent).
		Msg("stale event broadcast")
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(c.hub.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.hub.config.WriteTimeout))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Debug().Err(err).Str("connection_id", c.ID).Msg("failed to write stale event")
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.hub.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only drains control frames; clients never send data.
func (c *Connection) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.hub.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.hub.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.hub.config.ReadTimeout))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Debug().Err(err).Str("connection_id", c.ID).Msg("unexpected WebSocket close")
			}
			return
		}
	}
}
