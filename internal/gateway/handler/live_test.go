package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ecoledger/internal/gateway/service/live"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiveStreamDeliversScans(t *testing.T) {
	hub := live.NewHub(4)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/carbon/live/{userId}", NewLiveHandler(hub, zerolog.Nop()).Stream)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/carbon/live/u1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var msg liveWSOutbound
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "subscribed", msg.Type)
	require.Eventually(t, func() bool { return hub.Subscribers("u1") == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish(live.Event{Type: live.EventScan, UserID: "u2", CO2Saved: 9})
	hub.Publish(live.Event{Type: live.EventScan, UserID: "u1", Category: "plastic", CO2Saved: 0.525, TotalCO2Saved: 0.525, Timestamp: time.Now()})

	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, live.EventScan, msg.Type)
	assert.Equal(t, "plastic", msg.Category)
	assert.InDelta(t, 0.525, msg.TotalCO2Saved, 1e-9)

	require.NoError(t, conn.WriteJSON(liveWSInbound{Type: "ping"}))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "pong", msg.Type)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Subscribers("u1") == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestLiveStreamRequiresUser(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/carbon/live/%20", nil)
	req.SetPathValue("userId", " ")
	NewLiveHandler(live.NewHub(1), zerolog.Nop()).Stream(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
