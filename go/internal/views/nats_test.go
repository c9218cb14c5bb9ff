package views

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	natsserver "github.com/nats-io/nats-server/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeStaleEvent(t *testing.T) {
	const prefix = "league.views.stale"
	leagueID := uuid.MustParse("0b9c7f3e-6a0e-4a7c-9a55-3d5b8a0d1e01")
	at := time.Date(2025, 9, 6, 18, 0, 0, 0, time.UTC)

	data, err := json.Marshal(NewStaleEvent(leagueID, NewSet(RecruitingBoard, Dashboard), at))
	require.NoError(t, err)

	t.Run("round trip through the subject", func(t *testing.T) {
		event, err := DecodeStaleEvent(prefix, Subject(prefix, leagueID), data)
		require.NoError(t, err)
		assert.Equal(t, leagueID, event.LeagueID)
		assert.Equal(t, []View{Dashboard, RecruitingBoard}, event.Views)
		assert.True(t, event.At.Equal(at))
	})

	t.Run("subject for another league", func(t *testing.T) {
		_, err := DecodeStaleEvent(prefix, Subject(prefix, uuid.New()), data)
		assert.ErrorContains(t, err, "does not match")
	})

	t.Run("foreign prefix", func(t *testing.T) {
		_, err := DecodeStaleEvent(prefix, "draft.events."+leagueID.String(), data)
		assert.Error(t, err)
	})

	t.Run("garbage payload", func(t *testing.T) {
		_, err := DecodeStaleEvent(prefix, Subject(prefix, leagueID), []byte("{"))
		assert.Error(t, err)
	})
}

func TestRelay_DeliversPublishedStaleSetsToSubscribers(t *testing.T) {
	opts := natsserver.DefaultTestOptions
	opts.Port = -1
	server := natsserver.RunServer(&opts)
	defer server.Shutdown()

	cfg := DefaultNATSConfig()
	cfg.URL = server.ClientURL()

	publisherConn, err := Connect(cfg)
	require.NoError(t, err)
	defer publisherConn.Close()
	relayConn, err := Connect(cfg)
	require.NoError(t, err)
	defer relayConn.Close()

	leagueID := uuid.MustParse("0b9c7f3e-6a0e-4a7c-9a55-3d5b8a0d1e01")
	clock := clockwork.NewFakeClockAt(time.Date(2025, 9, 6, 18, 0, 0, 0, time.UTC))
	hub := NewHub(DefaultHubConfig(), clock)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Start(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := hub.Upgrade(w, r, uuid.New(), leagueID); err != nil {
			t.Errorf("upgrade: %v", err)
		}
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.ConnectionCount(leagueID) == 1 }, time.Second, 10*time.Millisecond)

	sub, err := Relay(relayConn, cfg.SubjectPrefix, hub)
	require.NoError(t, err)
	defer sub.Unsubscribe()
	require.NoError(t, relayConn.Flush())

	// A malformed message on the same subject is dropped, not forwarded.
	require.NoError(t, publisherConn.Publish(Subject(cfg.SubjectPrefix, leagueID), []byte("{")))

	notifier := NewNATSNotifier(publisherConn, cfg.SubjectPrefix, clock)
	require.NoError(t, notifier.Invalidate(ctx, leagueID, nil), "empty sets are not published")
	require.NoError(t, notifier.Invalidate(ctx, leagueID, NewSet(RecruitingBoard, Dashboard)))
	require.NoError(t, publisherConn.Flush())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var event StaleEvent
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, leagueID, event.LeagueID)
	assert.Equal(t, []View{Dashboard, RecruitingBoard}, event.Views)
	assert.True(t, event.At.Equal(clock.Now()))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err, "exactly one event reaches the subscriber")
}
