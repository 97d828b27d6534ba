// Package server coordinates client registration, room membership, and event
// fan-out for the FluxChat relay via the Hub type.
package server

import (
	"context"
	"log"
	"sync"
	"time"
)

// Hub owns every piece of mutable relay state: the set of live connections,
// the room directory, and the per-room typing sets. All mutations to rooms and
// typing sets happen on the Run goroutine, which drains the register,
// unregister, and frame channels one event at a time; the mutex only guards
// the clients set so safeSend can run from any goroutine.
type Hub struct {
	cfg Config

	clients map[*Client]bool

	// rooms maps a room name to its member set. A room is created on first
	// join and deleted as soon as its member set becomes empty; an entry with
	// zero members never persists past the operation that emptied it.
	rooms map[string]map[*Client]struct{}

	// typing maps a room name to the display identities currently typing in
	// it. Same lazy-create/eager-delete lifecycle as rooms, keyed
	// independently: a room usually exists with no typing entry.
	typing map[string]map[string]struct{}

	frames     chan Frame
	register   chan *Client
	unregister chan *Client

	mutex  sync.RWMutex
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewHub creates a Hub ready to manage connections under the given config.
func NewHub(cfg Config) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		cfg:        cfg.sanitized(),
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]struct{}),
		typing:     make(map[string]map[string]struct{}),
		frames:     make(chan Frame),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
}

// GetRegisterChan returns the channel used for registering new clients to the hub.
// This channel is write-only from the caller's perspective.
func (h *Hub) GetRegisterChan() chan<- *Client {
	return h.register
}

// GetUnregisterChan returns the channel used for unregistering clients from the hub.
// This channel is write-only from the caller's perspective.
func (h *Hub) GetUnregisterChan() chan<- *Client {
	return h.unregister
}

// GetFrameChan returns the channel that feeds raw inbound frames to the router.
// This channel is write-only from the caller's perspective.
func (h *Hub) GetFrameChan() chan<- Frame {
	return h.frames
}

// safeSend delivers a payload to one client without blocking. It returns false
// when the client is gone, closed, or its buffer is full; per the fan-out
// contract a failed delivery is skipped, never an error, and never removes the
// client. Removal only happens through the unregister path.
func (h *Hub) safeSend(client *Client, message []byte) bool {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic in safeSend: %v", r)
		}
	}()

	if message == nil {
		return false
	}

	h.mutex.RLock()
	defer h.mutex.RUnlock()

	_, exists := h.clients[client]
	if !exists || client.closed {
		return false
	}

	select {
	case client.send <- message:
		return true
	default:
		return false
	}
}

// Run starts the hub's event loop, handling client registration, disconnects,
// and inbound frame routing. This method should be called in a separate
// goroutine as it runs indefinitely.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.shutdownClients()
			return

		case client := <-h.register:
			if client == nil {
				log.Printf("Received nil client registration; skipping")
				continue
			}

			h.mutex.Lock()
			client.closed = false
			h.clients[client] = true
			clientCount := len(h.clients)
			h.mutex.Unlock()
			log.Printf("Client %s registered from %s. Total clients: %d", client.id, client.addr, clientCount)

			h.wg.Add(2)
			go func() {
				defer h.wg.Done()
				client.writePump()
			}()
			go func() {
				defer h.wg.Done()
				client.readPump()
			}()

		case client := <-h.unregister:
			if client == nil {
				continue
			}
			h.disconnectClient(client)

		case frame := <-h.frames:
			h.route(frame.Client, frame.Data)
		}
	}
}

// disconnectClient runs the full leave sequence for every room the client
// belonged to, then drops it from the client set. Safe to invoke more than
// once for the same client: the leave sweep treats absent memberships as
// no-ops and the send channel is only closed on the first pass.
func (h *Hub) disconnectClient(client *Client) {
	for room := range client.rooms {
		h.leaveRoom(client, room)
	}

	h.mutex.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		client.closed = true
		clientCount := len(h.clients)
		h.mutex.Unlock()
		// Close the channel after releasing the lock
		close(client.send)
		log.Printf("Client %s unregistered from %s. Total clients: %d", client.id, client.addr, clientCount)
	} else {
		h.mutex.Unlock()
	}
}

// shutdownClients gracefully closes all active client connections
func (h *Hub) shutdownClients() {
	log.Println("Shutting down all client connections...")

	h.mutex.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mutex.Unlock()

	for _, client := range clients {
		if client.conn != nil {
			if err := client.conn.Close(); err != nil {
				if !isExpectedCloseError(err) {
					log.Printf("Error closing client connection from %s: %v", client.addr, err)
				}
			}
		}
	}

	log.Printf("Closed %d client connections", len(clients))
}

// Shutdown initiates graceful shutdown of the hub and waits for all goroutines
// to complete, or until the timeout is reached.
func (h *Hub) Shutdown(timeout time.Duration) error {
	log.Println("Initiating hub shutdown...")

	h.cancel()

	// Wait for Run() to complete
	<-h.done

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("Hub shutdown completed successfully")
		return nil
	case <-time.After(timeout):
		log.Println("Hub shutdown timeout reached, some goroutines may still be running")
		return context.DeadlineExceeded
	}
}
