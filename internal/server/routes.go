// Package server wires HTTP handlers into a ServeMux for the FluxChat
// application via routing helpers.
package server

import "net/http"

// Routes configures and returns an HTTP ServeMux with all application routes:
// health check, WebSocket endpoint, and the browser test page.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", HealthHandler)
	mux.HandleFunc("/ws", s.WebSocketHandler)
	mux.HandleFunc("/test", TestPageHandler)
	return mux
}
