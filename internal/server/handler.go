package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/soar/joyinput/internal/hub"
	"github.com/soar/joyinput/internal/joystick"
)

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	socket, err := s.upgrader.Upgrade(w, r)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	go socket.ReadLoop()
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, hub.NewStatus(s.driver.Status()))
}

func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	active := s.driver.Status().Device

	n := s.driver.NumJoysticks()
	devices := make([]joystick.DeviceInfo, 0, n)
	for id := 0; id < n; id++ {
		info := joystick.DeviceInfo{ID: id, Name: s.driver.JoystickName(id)}
		if active.Open && active.ID == id {
			info = active
		}
		devices = append(devices, info)
	}
	writeJSON(w, devices)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
