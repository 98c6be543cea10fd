package models

import "gorm.io/gorm"

// Friendship statuses. Only accepted friendships admit a private chat.
const (
	FriendshipPending  = "pending"
	FriendshipAccepted = "accepted"
	FriendshipRejected = "rejected"
)

// Friendship links two users. UserID is the requester, FriendID the user who
// received the request. The relation is symmetric once accepted, so lookups
// must check both orderings.
type Friendship struct {
	gorm.Model

	UserID   string `gorm:"type:text;not null;index:idx_friend_pair"`
	FriendID string `gorm:"type:text;not null;index:idx_friend_pair"`
	Status   string `gorm:"type:text;not null;default:pending"`
}
