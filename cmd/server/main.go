package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/fluxchat/fluxchat/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	fmt.Println("Starting FluxChat server...")

	config, err := server.NewConfigFromEnv()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	srv := server.NewServer(config)
	srv.StartHub()

	httpServer := server.CreateServer(config.Port, srv.Routes())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.StartServer(httpServer)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	case <-ctx.Done():
		log.Println("Shutdown signal received")
	}

	if err := server.ShutdownServer(httpServer, shutdownTimeout); err != nil {
		log.Printf("HTTP shutdown: %v", err)
	}
	if err := srv.Hub().Shutdown(shutdownTimeout); err != nil {
		log.Printf("Hub shutdown: %v", err)
	}
}
