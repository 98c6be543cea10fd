package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"drinkbuddies/backend/internal/chathub"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allows connections from any origin. Tighten for production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Close codes for failed session establishment, one per gate failure so the
// client can tell why it was refused.
const (
	closeInvalidToken = 4401
	closeNotFriends   = 4403
	closeNotFound     = 4404
)

// ServePrivateChat upgrades the connection and admits it into the private
// room shared with :friendUsername. The bearer credential comes in as a
// query parameter because browsers cannot set headers on websocket dials.
func (h *Handler) ServePrivateChat(c *gin.Context) {
	friendUsername := c.Param("friendUsername")
	token := c.Query("token")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		return
	}

	adm, err := h.Gate.Authorize(token, friendUsername)
	if err != nil {
		h.refuse(conn, err)
		return
	}

	sess := chathub.NewWebSocketSession(conn, adm.User.ID)
	// The relay blocks until the session ends; the connection is hijacked,
	// so holding the handler goroutine is fine. The request context dies
	// with the hijack, hence Background.
	h.Relay.ServePrivate(context.Background(), sess, adm)
}

// ServeGlobalChat admits any authenticated user into the global room.
func (h *Handler) ServeGlobalChat(c *gin.Context) {
	token := c.Query("token")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	user, err := h.Gate.AuthorizeGlobal(token)
	if err != nil {
		h.refuse(conn, err)
		return
	}

	sess := chathub.NewWebSocketSession(conn, user.ID)
	h.Relay.ServeGlobal(context.Background(), sess, user)
}

// refuse closes a just-upgraded connection with a distinguishable code and
// reason. The user/friend distinction in the reason is kept for
// compatibility with the original client.
func (h *Handler) refuse(conn *websocket.Conn, err error) {
	code := websocket.CloseInternalServerErr
	reason := "internal error"

	switch {
	case errors.Is(err, chathub.ErrInvalidToken):
		code, reason = closeInvalidToken, "Invalid token"
	case errors.Is(err, chathub.ErrUserNotFound):
		code, reason = closeNotFound, "User not found"
	case errors.Is(err, chathub.ErrFriendNotFound):
		code, reason = closeNotFound, "Friend not found"
	case errors.Is(err, chathub.ErrNotFriends):
		code, reason = closeNotFriends, "Not friends"
	default:
		h.Log.Error().Err(err).Msg("session establishment failed")
	}

	deadline := time.Now().Add(5 * time.Second)
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason), deadline)
	_ = conn.Close()
}
