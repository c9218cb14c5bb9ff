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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestHub_PushesStaleEventsToLeagueSubscribers(t *testing.T) {
	defer goleak.VerifyNone(t)

	leagueID := uuid.MustParse("0b9c7f3e-6a0e-4a7c-9a55-3d5b8a0d1e01")
	otherLeague := uuid.MustParse("9d8c7b6a-5f4e-4d3c-8b2a-1f0e9d8c7b6a")
	userID := uuid.New()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 9, 6, 18, 0, 0, 0, time.UTC))

	hub := NewHub(DefaultHubConfig(), clock)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Start(ctx)
		close(done)
	}()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.MustParse(r.URL.Query().Get("league"))
		if err := hub.Upgrade(w, r, userID, id); err != nil {
			t.Errorf("upgrade: %v", err)
		}
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?league="+leagueID.String(), nil)
	require.NoError(t, err)
	other, _, err := websocket.DefaultDialer.Dial(wsURL+"?league="+otherLeague.String(), nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return hub.ConnectionCount(leagueID) == 1 && hub.ConnectionCount(otherLeague) == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Invalidate(ctx, leagueID, NewSet(Dashboard, Standings, Schedule)))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var event StaleEvent
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, "views_stale", event.Type)
	assert.Equal(t, leagueID, event.LeagueID)
	assert.Equal(t, []View{Dashboard, Standings, Schedule}, event.Views)
	assert.True(t, event.At.Equal(clock.Now()))

	require.NoError(t, other.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err = other.ReadMessage()
	assert.Error(t, err, "subscribers of other leagues receive nothing")

	conn.Close()
	other.Close()
	cancel()
	<-done
	srv.Close()
}

func TestHub_InvalidateEmptySetIsNoop(t *testing.T) {
	hub := NewHub(DefaultHubConfig(), clockwork.NewFakeClock())

	require.NoError(t, hub.Invalidate(context.Background(), uuid.New(), nil))
	assert.Len(t, hub.broadcastCh, 0)
}

func newTestConnection(h *Hub, leagueID uuid.UUID, buffer int) *Connection {
	return &Connection{
		ID:       uuid.NewString(),
		LeagueID: leagueID,
		Send:     make(chan []byte, buffer),
		hub:      h,
	}
}

func TestHub_SubscriberLeavingDuringBroadcast(t *testing.T) {
	defer goleak.VerifyNone(t)

	leagueID := uuid.New()
	hub := NewHub(DefaultHubConfig(), clockwork.NewFakeClock())
	event := NewStaleEvent(leagueID, NewSet(Dashboard), time.Now())

	stop := make(chan struct{})
	churned := make(chan struct{})
	go func() {
		defer close(churned)
		for {
			select {
			case <-stop:
				return
			default:
			}
			c := newTestConnection(hub, leagueID, 1)
			hub.register(c)
			hub.unregister(c)
		}
	}()

	for i := 0; i < 5000; i++ {
		hub.handleBroadcast(event)
	}
	close(stop)
	<-churned

	assert.Zero(t, hub.ConnectionCount(leagueID))
}

func TestHub_FullSendBufferDropsSubscriber(t *testing.T) {
	leagueID := uuid.New()
	hub := NewHub(DefaultHubConfig(), clockwork.NewFakeClock())
	slow := newTestConnection(hub, leagueID, 1)
	fast := newTestConnection(hub, leagueID, 4)
	hub.register(slow)
	hub.register(fast)

	event := NewStaleEvent(leagueID, NewSet(Dashboard), time.Now())
	hub.handleBroadcast(event)
	hub.handleBroadcast(event)

	assert.Equal(t, 1, hub.ConnectionCount(leagueID))

	_, ok := <-slow.Send
	require.True(t, ok, "the first event was delivered")
	_, ok = <-slow.Send
	assert.False(t, ok, "the slow subscriber's channel is closed")
	assert.Len(t, fast.Send, 2)

	hub.unregister(slow)
	hub.closeAll()
	assert.Zero(t, hub.ConnectionCount(leagueID))
	_, ok = <-fast.Send
	assert.True(t, ok)
}
