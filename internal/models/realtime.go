package models

import (
	"encoding/json"
	"strconv"
	"time"
)

// Frame type tags. The server only ever emits this closed set; anything the
// client sends that is not a valid InboundFrame is rejected.
const (
	FrameSystem         = "system"
	FramePrivateMessage = "private_message"
	FrameGlobalMessage  = "message"
	FrameError          = "error"
)

// InboundFrame is the single shape a client may send over a live session.
type InboundFrame struct {
	Content string `json:"content"`
}

// DecodeInbound parses a raw client frame.
func DecodeInbound(data []byte) (InboundFrame, error) {
	var f InboundFrame
	err := json.Unmarshal(data, &f)
	return f, err
}

// SystemFrame is sent once on connect and for lifecycle notices.
type SystemFrame struct {
	Type      string `json:"type"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// NewSystemFrame builds a system frame stamped with the current time.
func NewSystemFrame(content string) SystemFrame {
	return SystemFrame{
		Type:      FrameSystem,
		Content:   content,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// ErrorFrame tells the sender that their last frame was not accepted.
type ErrorFrame struct {
	Type      string `json:"type"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// NewErrorFrame builds an error frame stamped with the current time.
func NewErrorFrame(content string) ErrorFrame {
	return ErrorFrame{
		Type:      FrameError,
		Content:   content,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// PrivateMessageFrame is the broadcast payload for one private message.
// It is published to the backbone and relayed verbatim to every session in
// the conversation room, the sender's own included.
type PrivateMessageFrame struct {
	Type             string `json:"type"`
	ID               string `json:"id"`
	Content          string `json:"content"`
	SenderUsername   string `json:"sender_username"`
	SenderID         string `json:"sender_id"`
	ReceiverUsername string `json:"receiver_username"`
	ReceiverID       string `json:"receiver_id"`
	Timestamp        string `json:"timestamp"`
	Read             bool   `json:"read"`
}

// NewPrivateMessageFrame builds the wire payload for a stored message.
func NewPrivateMessageFrame(m *PrivateMessage) PrivateMessageFrame {
	return PrivateMessageFrame{
		Type:             FramePrivateMessage,
		ID:               strconv.FormatUint(uint64(m.ID), 10),
		Content:          m.Content,
		SenderUsername:   m.SenderUsername,
		SenderID:         m.SenderID,
		ReceiverUsername: m.ReceiverUsername,
		ReceiverID:       m.ReceiverID,
		Timestamp:        m.CreatedAt.UTC().Format(time.RFC3339),
		Read:             m.Read,
	}
}

// GlobalMessageFrame is the broadcast payload for the global room.
type GlobalMessageFrame struct {
	Type           string `json:"type"`
	ID             string `json:"id"`
	Content        string `json:"content"`
	SenderUsername string `json:"sender_username"`
	SenderID       string `json:"sender_id"`
	Timestamp      string `json:"timestamp"`
}

// NewGlobalMessageFrame builds the wire payload for a stored global message.
func NewGlobalMessageFrame(m *ChatMessage) GlobalMessageFrame {
	return GlobalMessageFrame{
		Type:           FrameGlobalMessage,
		ID:             strconv.FormatUint(uint64(m.ID), 10),
		Content:        m.Content,
		SenderUsername: m.SenderUsername,
		SenderID:       m.SenderID,
		Timestamp:      m.CreatedAt.UTC().Format(time.RFC3339),
	}
}
