package http

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"quizhub-service/internal/app"
)

// LeaderboardWSHandler streams leaderboard snapshots to a client. Each
// connection owns one Viewer: its change-feed subscription, auto-refresh
// ticker, and rank scan are scoped to the connected user and torn down with
// the socket.
type LeaderboardWSHandler struct {
	leaderboard app.LeaderboardRepository
	users       app.UserRepository
	feed        app.ChangeFeed
	interval    time.Duration
	upgrader    websocket.Upgrader
}

func NewLeaderboardWSHandler(leaderboard app.LeaderboardRepository, users app.UserRepository, feed app.ChangeFeed, interval time.Duration) *LeaderboardWSHandler {
	return &LeaderboardWSHandler{
		leaderboard: leaderboard,
		users:       users,
		feed:        feed,
		interval:    interval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type autoRefreshPayload struct {
	Enabled bool `json:"enabled"`
}

func (h *LeaderboardWSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	viewer := app.NewViewer(h.leaderboard, h.users, h.feed, userID, h.interval)
	defer viewer.Close()

	if err := viewer.Start(r.Context()); err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	updates, cancel := viewer.Subscribe()
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case snap, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "leaderboard", Payload: snap}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "refresh":
			go func() {
				if err := viewer.Refresh(r.Context(), false); err != nil {
					log.Printf("manual refresh: %v", err)
				}
			}()
		case "autoRefresh":
			var payload autoRefreshPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid autoRefresh payload"}}
				continue
			}
			viewer.SetAutoRefresh(payload.Enabled)
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}
