// internal/api/events.go
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tamzrod/netclass/internal/watcher"
)

const (
	pingInterval = 20 * time.Second
	writeTimeout = 5 * time.Second
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(_ *http.Request) bool { return true },
}

// eventStream holds one watcher subscription per connection.
// The first message is the current class; every delivery follows.
func (s *Server) eventStream(w http.ResponseWriter, r *http.Request) {
	sub, err := s.w.Subscribe()
	if err != nil {
		var ae *watcher.ActivationError
		if errors.As(err, &ae) {
			s.log.Warn("api: subscribe", zap.Error(err))
			http.Error(w, "network source unavailable", http.StatusServiceUnavailable)
			return
		}
		s.log.Error("api: subscribe", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer func() {
		if err := s.w.Unsubscribe(sub); err != nil {
			s.log.Warn("api: unsubscribe", zap.Error(err))
		}
	}()

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("api: ws upgrade", zap.Error(err))
		return
	}
	defer conn.Close()

	log := s.log.With(zap.String("subscription", sub.ID.String()))

	// Drain client frames so close and pong are processed.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	send := func(v interface{}) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(v); err != nil {
			log.Debug("api: ws write", zap.Error(err))
			return false
		}
		return true
	}

	if !send(s.event(s.w.Status())) {
		return
	}

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case c, ok := <-sub.C():
			if !ok {
				// watcher closed
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "watcher closed"),
					time.Now().Add(writeTimeout))
				return
			}
			if !send(s.event(c)) {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		case <-gone:
			return
		case <-r.Context().Done():
			return
		}
	}
}
