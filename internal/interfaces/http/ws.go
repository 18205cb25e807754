package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		return strings.Contains(origin, "localhost") || strings.Contains(origin, "127.0.0.1")
	},
}

// streamEvent is pushed to websocket clients on pool and filter changes.
type streamEvent struct {
	Type      string    `json:"type"`
	Problems  int       `json:"problems"`
	Degraded  bool      `json:"degraded"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// handleWebSocket streams store change events until the client goes away.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	updates := s.store.Subscribe()
	defer s.store.Unsubscribe(updates)

	// Reads are discarded; their only job is detecting a closed peer.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case evt, ok := <-updates:
			if !ok {
				return
			}
			event := streamEvent{
				Type:      evt.Type,
				Problems:  len(evt.Snapshot.Problems),
				Degraded:  evt.Snapshot.Degraded,
				FetchedAt: evt.Snapshot.FetchedAt,
			}
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(event); err != nil {
				log.Debug().Err(err).Msg("websocket write failed")
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
