package http

import (
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/galbox/galconsole/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const wsWriteTimeout = 5 * time.Second

// WebsocketHandler pushes a {wifi, cpu, timestamp} message on every monitor
// sample. It is served on its own port.
func (s *Server) WebsocketHandler() http.Handler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}

	r := chi.NewRouter()
	handler := func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Debug().Err(err).Str("remote", r.RemoteAddr).Msg("websocket upgrade failed")
			return
		}
		s.pushSnapshots(conn)
	}
	r.Get("/", handler)
	r.Get("/ws", handler)
	return r
}

func (s *Server) pushSnapshots(conn *websocket.Conn) {
	metrics.WebsocketConnected()
	defer metrics.WebsocketDisconnected()
	defer conn.Close()

	updates, unsubscribe := s.monitor.Subscribe()
	defer unsubscribe()

	// the reader only notices the peer going away
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := writePush(conn, s.monitor.Snapshot()); err != nil {
		return
	}
	for {
		select {
		case <-closed:
			return
		case snap := <-updates:
			if err := writePush(conn, snap); err != nil {
				log.Debug().Err(err).Msg("dropping websocket client")
				return
			}
		}
	}
}

func writePush(conn *websocket.Conn, snap Snapshot) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(snap.push())
}

// checkOrigin accepts clients without an Origin header, the CORS allow-list
// and pages served from the same host as the dashboard.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range s.cfg.CORSOrigins {
		if o == origin {
			return true
		}
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	host, _, err := net.SplitHostPort(r.Host)
	if err != nil {
		host = r.Host
	}
	return u.Hostname() == host
}
