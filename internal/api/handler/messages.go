package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"drinkbuddies/backend/internal/models"
	"drinkbuddies/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

// PrivateMessageResponse is the REST shape of a private message. The live
// websocket frames carry the same fields under the private_message type.
type PrivateMessageResponse struct {
	ID               string    `json:"id"`
	SenderID         string    `json:"sender_id"`
	SenderUsername   string    `json:"sender_username"`
	ReceiverID       string    `json:"receiver_id"`
	ReceiverUsername string    `json:"receiver_username"`
	Message          string    `json:"message"`
	CreatedAt        time.Time `json:"created_at"`
	Read             bool      `json:"read"`
}

func toMessageResponse(m *models.PrivateMessage) PrivateMessageResponse {
	return PrivateMessageResponse{
		ID:               strconv.FormatUint(uint64(m.ID), 10),
		SenderID:         m.SenderID,
		SenderUsername:   m.SenderUsername,
		ReceiverID:       m.ReceiverID,
		ReceiverUsername: m.ReceiverUsername,
		Message:          m.Content,
		CreatedAt:        m.CreatedAt,
		Read:             m.Read,
	}
}

// GetConversation returns the caller's full history with :friendUsername,
// oldest first. Retrieval marks every message addressed to the caller as
// read; the response already reflects the flipped flags.
func (h *Handler) GetConversation(c *gin.Context) {
	user := currentUser(c)

	friend, err := h.Store.GetUserByUsername(c.Param("friendUsername"))
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		h.Log.Error().Err(err).Msg("conversation friend lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	messages, err := h.Store.Conversation(user.ID, friend.ID)
	if err != nil {
		h.Log.Error().Err(err).Msg("conversation fetch failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	out := make([]PrivateMessageResponse, 0, len(messages))
	for i := range messages {
		out = append(out, toMessageResponse(&messages[i]))
	}
	c.JSON(http.StatusOK, out)
}

type sendMessageRequest struct {
	ReceiverUsername string `json:"receiver_username" binding:"required"`
	Message          string `json:"message" binding:"required"`
}

// SendMessage is the non-live send path: friendship-gated, persists the
// message and returns it. It does not touch the relay or the backbone, so
// the receiver sees it on their next history fetch.
func (h *Handler) SendMessage(c *gin.Context) {
	user := currentUser(c)

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := models.ValidateContent(req.Message); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	receiver, err := h.Store.GetUserByUsername(req.ReceiverUsername)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		h.Log.Error().Err(err).Msg("send receiver lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	ok, err := h.Store.AreFriends(user.ID, receiver.ID)
	if err != nil {
		h.Log.Error().Err(err).Msg("send friendship check failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "Can only message friends"})
		return
	}

	msg := &models.PrivateMessage{
		SenderID:         user.ID,
		SenderUsername:   user.Username,
		ReceiverID:       receiver.ID,
		ReceiverUsername: receiver.Username,
		Content:          req.Message,
	}
	if err := h.Store.SaveMessage(msg); err != nil {
		h.Log.Error().Err(err).Msg("send persist failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save message"})
		return
	}

	c.JSON(http.StatusCreated, toMessageResponse(msg))
}
