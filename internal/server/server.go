package server

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Server exposes the hub at /ws. Clients receive every broadcast frame;
// anything they send is discarded.
type Server struct {
	hub      *Hub
	addr     string
	log      *logrus.Logger
	upgrader websocket.Upgrader
}

func New(hub *Hub, addr string, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{
		hub:  hub,
		addr: addr,
		log:  log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWS)
	return mux
}

func (s *Server) ListenAndServe() error {
	s.log.WithField("addr", s.addr).Info("snapshot server listening")
	return http.ListenAndServe(s.addr, s.Handler())
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	s.log.WithField("remote", conn.RemoteAddr().String()).Info("client connected")
	s.hub.Register(conn)

	// Drain the connection; the hub owns all writes.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.hub.Unregister(conn)
				return
			}
		}
	}()
}
