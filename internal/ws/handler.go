// Package ws streams connection-status updates to the UI.
package ws

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/lcu-tools/dodgewatch/internal/appstate"
)

// StatusMessage mirrors the event name the UI listens for.
type StatusMessage struct {
	Type      string `json:"type"` // always "lcu_state_update"
	Connected bool   `json:"connected"`
}

func Handler(conn *appstate.Connection, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// Loopback-only service; the UI runs on localhost.
			OriginPatterns: []string{"localhost:*", "127.0.0.1:*"},
		})
		if err != nil {
			return
		}
		defer c.Close(websocket.StatusNormalClosure, "bye")

		clientID := randID(6)
		updates := conn.Subscribe(clientID)
		defer conn.Unsubscribe(clientID)

		// Writer goroutine: every subscription update, including the
		// initial one, goes out with a bounded write deadline.
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for connected := range updates {
				payload, _ := json.Marshal(StatusMessage{Type: "lcu_state_update", Connected: connected})
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				err := c.Write(ctx, websocket.MessageText, payload)
				cancel()
				if err != nil {
					return
				}
			}
		}()

		// Reader loop: the stream is one-way, but reading is what tells
		// us the client went away.
		for {
			if _, _, err := c.Read(r.Context()); err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				log.Debug("status stream closed", zap.String("client", clientID), zap.Error(err))
				return
			}
		}
	}
}

func randID(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
