package models

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Message content bounds, enforced before anything is persisted or published.
const (
	MinContentLen = 1
	MaxContentLen = 2000
)

var (
	// ErrContentEmpty is returned for a missing or whitespace-only body.
	ErrContentEmpty = errors.New("message content is empty")
	// ErrContentTooLong is returned for a body over MaxContentLen characters.
	ErrContentTooLong = errors.New("message content exceeds maximum length")
)

// PrivateMessage is a persisted 1:1 message. Immutable after creation except
// for the Read flag, which flips to true the first time the receiver
// retrieves the conversation.
type PrivateMessage struct {
	gorm.Model // ID serves as the message ID, CreatedAt as the timestamp

	SenderID         string `gorm:"type:text;not null;index:idx_private_pair"`
	SenderUsername   string `gorm:"type:text;not null"`
	ReceiverID       string `gorm:"type:text;not null;index:idx_private_pair"`
	ReceiverUsername string `gorm:"type:text;not null"`
	Content          string `gorm:"type:text;not null"`
	Read             bool   `gorm:"not null;default:false"`
}

// ChatMessage is a persisted message in the global broadcast room.
type ChatMessage struct {
	gorm.Model

	SenderID       string `gorm:"type:text;not null;index"`
	SenderUsername string `gorm:"type:text;not null"`
	Room           string `gorm:"type:text;not null;default:global;index"`
	Content        string `gorm:"type:text;not null"`
}

// ValidateContent checks the message body against the length bounds.
// Content is counted in runes so multi-byte text is not penalised.
func ValidateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrContentEmpty
	}
	if len([]rune(content)) > MaxContentLen {
		return ErrContentTooLong
	}
	return nil
}
