// Package server implements the core of the FluxChat relay: room membership,
// typing indicators, presence, and event fan-out over WebSocket connections.
//
// The implementation is organized into specialized files for configuration,
// hub management, clients, routing, and HTTP handlers to keep the codebase
// maintainable and testable as the project grows.
package server
