package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"ecoledger/internal/gateway/entity"
	"ecoledger/internal/gateway/service/live"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	liveWSWriteWait = 10 * time.Second
	liveWSPongWait  = 60 * time.Second
	liveWSPingEvery = (liveWSPongWait * 9) / 10
)

var liveWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type liveWSOutbound struct {
	Type          string        `json:"type"`
	UserID        entity.UserID `json:"userId,omitempty"`
	Category      string        `json:"category,omitempty"`
	CO2Saved      float64       `json:"co2Saved,omitempty"`
	TotalCO2Saved float64       `json:"totalCo2Saved,omitempty"`
	Timestamp     *time.Time    `json:"timestamp,omitempty"`
}

type liveWSInbound struct {
	Type string `json:"type"`
}

type LiveHandler struct {
	hub *live.Hub
	log zerolog.Logger
}

func NewLiveHandler(hub *live.Hub, log zerolog.Logger) *LiveHandler {
	return &LiveHandler{hub: hub, log: log}
}

// Stream handles GET /api/carbon/live/{userId}: it upgrades to a websocket
// and pushes one message per scan recorded for the user.
func (h *LiveHandler) Stream(w http.ResponseWriter, r *http.Request) {
	userID := entity.NormalizeUserID(r.PathValue("userId"))
	if userID.IsZero() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "userId is required"})
		return
	}

	conn, err := liveWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	sub := h.hub.Subscribe(userID)
	defer sub.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(liveWSPongWait)); err != nil {
		h.log.Warn().Err(err).Msg("live ws set read deadline failed")
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(liveWSPongWait))
	})

	writeCh := make(chan liveWSOutbound, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		// unblock the reader loop below
		defer conn.Close()
		defer cancel()
		ticker := time.NewTicker(liveWSPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(liveWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case ev, ok := <-sub.Events():
				if !ok {
					return
				}
				ts := ev.Timestamp
				if err := conn.SetWriteDeadline(time.Now().Add(liveWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(liveWSOutbound{
					Type:          ev.Type,
					UserID:        ev.UserID,
					Category:      ev.Category,
					CO2Saved:      ev.CO2Saved,
					TotalCO2Saved: ev.TotalCO2Saved,
					Timestamp:     &ts,
				}); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(liveWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	pushLiveWS(ctx, writeCh, liveWSOutbound{Type: "subscribed", UserID: userID})

	for {
		var in liveWSInbound
		if err := conn.ReadJSON(&in); err != nil {
			cancel()
			<-writerDone
			return
		}
		if strings.EqualFold(strings.TrimSpace(in.Type), "ping") {
			pushLiveWS(ctx, writeCh, liveWSOutbound{Type: "pong"})
		}
	}
}

func pushLiveWS(ctx context.Context, ch chan<- liveWSOutbound, msg liveWSOutbound) {
	select {
	case ch <- msg:
	case <-ctx.Done():
	}
}
