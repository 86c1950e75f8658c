package server

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/lxzan/gws"

	"github.com/soar/joyinput/internal/hub"
)

// Driver is what the HTTP endpoints need from the joystick driver.
type Driver interface {
	hub.Controller
	NumJoysticks() int
	JoystickName(id int) string
}

type Server struct {
	hub        *hub.Hub
	driver     Driver
	addr       string
	upgrader   *gws.Upgrader
	httpServer *http.Server
}

func New(h *hub.Hub, d Driver, addr string) *Server {
	return &Server{
		hub:    h,
		driver: d,
		addr:   addr,
		upgrader: gws.NewUpgrader(hub.NewHandler(h, d), &gws.ServerOption{
			ReadMaxPayloadSize: 4096,
		}),
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/devices", s.handleDevices)
	return mux
}

func (s *Server) ListenAndServe() error {
	s.httpServer = &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	log.Printf("HTTP server listening on %s", s.addr)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		log.Println("Shutting down HTTP server...")
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
