// Package server constructs and starts the FluxChat HTTP service with helpers
// that apply sensible production defaults.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Server owns the relay's runtime pieces: the configuration, the hub, the
// origin policy, and the WebSocket upgrader. Handlers hang off this value
// rather than package globals so tests can build isolated instances.
type Server struct {
	cfg      Config
	hub      *Hub
	origins  originPolicy
	upgrader websocket.Upgrader
}

// NewServer assembles a Server and its hub from the given configuration.
func NewServer(cfg Config) *Server {
	cfg = cfg.sanitized()
	s := &Server{
		cfg:     cfg,
		hub:     NewHub(cfg),
		origins: newOriginPolicy(cfg.AllowedOrigins),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.origins.check,
	}
	return s
}

// Hub returns the server's hub for shutdown coordination and tests.
func (s *Server) Hub() *Hub {
	return s.hub
}

// StartHub starts the hub's event loop in a separate goroutine. This should
// be called before serving HTTP traffic.
func (s *Server) StartHub() {
	go s.hub.Run()
	log.Println("Hub started and ready to manage WebSocket connections")
}

// CreateServer creates and configures an HTTP server with the specified port and handler.
// It sets reasonable timeout values for production use.
func CreateServer(port string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// StartServer starts the HTTP server and begins listening for connections.
// It returns an error if the server fails to start.
func StartServer(server *http.Server) error {
	fmt.Printf("Server listening on port %s\n", server.Addr)
	return server.ListenAndServe()
}

// ShutdownServer gracefully shuts down the HTTP server without interrupting active connections.
// It waits for active connections to close or until the timeout is reached.
func ShutdownServer(server *http.Server, timeout time.Duration) error {
	log.Println("Shutting down HTTP server...")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		return err
	}

	log.Println("HTTP server shutdown completed")
	return nil
}
