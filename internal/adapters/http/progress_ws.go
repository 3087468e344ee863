package httpadapter

import (
	"net/http"

	"golang.org/x/net/websocket"

	"github.com/g-g-pletnev/docan/internal/core/ports"
)

// progressHandler upgrades the connection and pushes every broadcast
// event as one JSON message. Client-to-server messages are ignored.
// The handshake accepts any origin so non-browser observers can connect.
func progressHandler(stream ports.ProgressStream) http.Handler {
	return websocket.Server{
		Handshake: func(*websocket.Config, *http.Request) error { return nil },
		Handler: func(conn *websocket.Conn) {
			defer conn.Close()

			id, events := stream.Subscribe()
			defer stream.Unsubscribe(id)

			for event := range events {
				if err := websocket.JSON.Send(conn, event); err != nil {
					return
				}
			}
		},
	}
}
