package server

import (
	"context"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/hammamikhairi/hearth/internal/domain"
)

// handleUpdates upgrades the connection and pumps broadcast events to the
// observer until it disconnects, is evicted, or the server shuts down.
// Inbound frames carry no commands; they are logged and ignored.
func (s *Server) handleUpdates(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.log.Warn("websocket accept: %v", err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "server error")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sub := s.hub.Subscribe()
	defer s.hub.Unsubscribe(sub)

	hello := domain.NewEvent(domain.EventConnectionEstablished, map[string]string{
		"message": "connected to hearth updates",
	})
	if err := wsjson.Write(ctx, conn, hello); err != nil {
		s.log.Debug("websocket hello failed: %v", err)
		return
	}

	s.log.Info("observer connected (%s)", r.RemoteAddr)

	// Drain inbound frames so disconnects surface promptly.
	go func() {
		defer cancel()
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			s.log.Debug("ignoring inbound frame from %s: %s", r.RemoteAddr, data)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("observer disconnected (%s)", r.RemoteAddr)
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case ev, ok := <-sub.C():
			if !ok {
				// Evicted for lagging, or the hub shut down.
				s.log.Warn("observer dropped (%s)", r.RemoteAddr)
				conn.Close(websocket.StatusGoingAway, "subscription closed")
				return
			}
			if err := wsjson.Write(ctx, conn, ev); err != nil {
				s.log.Debug("websocket write to %s failed: %v", r.RemoteAddr, err)
				return
			}
		}
	}
}
