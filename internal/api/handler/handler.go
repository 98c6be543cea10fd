// Package handler exposes the HTTP and websocket surface of the messaging
// backend.
package handler

import (
	"drinkbuddies/backend/internal/auth"
	"drinkbuddies/backend/internal/chathub"
	"drinkbuddies/backend/internal/storage"

	"github.com/rs/zerolog"
)

// Handler carries the shared dependencies of all routes.
type Handler struct {
	Tokens *auth.Service
	Store  storage.Storage
	Gate   *chathub.Gate
	Relay  *chathub.Relay
	Log    zerolog.Logger
}

// NewHandler builds the handler set.
func NewHandler(tokens *auth.Service, store storage.Storage, gate *chathub.Gate, relay *chathub.Relay, log zerolog.Logger) *Handler {
	return &Handler{
		Tokens: tokens,
		Store:  store,
		Gate:   gate,
		Relay:  relay,
		Log:    log.With().Str("component", "api").Logger(),
	}
}
