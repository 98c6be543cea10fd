// Package storage is the data-access layer: users and friendships in
// PostgreSQL via GORM, message history in PostgreSQL, and ephemeral state
// (online flags, cached friend lists) in Redis.
package storage

import (
	"context"
	"errors"
	"time"

	"drinkbuddies/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// onlineTTL is how long a user counts as online after their last
// authenticated request.
const onlineTTL = 5 * time.Minute

// Storage is the persistence contract the chat hub and the HTTP handlers
// depend on. The concrete Service is backed by PostgreSQL and Redis; tests
// substitute a mock.
type Storage interface {
	// User directory
	CreateUser(user *models.User) error
	GetUserByID(id string) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)

	// Friendship store
	AreFriends(userID, friendID string) (bool, error)
	CreateFriendship(userID, friendID string) error
	AcceptFriendship(userID, friendID string) error

	// Message store
	SaveMessage(msg *models.PrivateMessage) error
	// Conversation returns every message between the two users oldest
	// first and, as a documented side effect, marks each message
	// addressed to userID as read.
	Conversation(userID, friendID string) ([]models.PrivateMessage, error)
	MarkMessageRead(id uint) error
	SaveGlobalMessage(msg *models.ChatMessage) error

	// Presence
	SetUserOnline(userID string) error
	IsUserOnline(userID string) (bool, error)
}

// Service implements Storage.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewService wires the storage service over an open DB and Redis client.
func NewService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// CreateUser inserts a new user. The UUID primary key is assigned by the
// model's BeforeCreate hook.
func (s *Service) CreateUser(user *models.User) error {
	return s.DB.Create(user).Error
}

func (s *Service) GetUserByID(id string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// AreFriends reports whether an accepted friendship exists between the two
// users. Either user may be the original requester, so both orderings are
// checked.
func (s *Service) AreFriends(userID, friendID string) (bool, error) {
	var count int64
	err := s.DB.Model(&models.Friendship{}).
		Where("status = ?", models.FriendshipAccepted).
		Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)",
			userID, friendID, friendID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateFriendship records a pending request from userID to friendID.
func (s *Service) CreateFriendship(userID, friendID string) error {
	var count int64
	err := s.DB.Model(&models.Friendship{}).
		Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)",
			userID, friendID, friendID, userID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return errors.New("friendship already exists")
	}
	f := models.Friendship{UserID: userID, FriendID: friendID, Status: models.FriendshipPending}
	if err := s.DB.Create(&f).Error; err != nil {
		return err
	}
	return s.invalidateFriendsCache(userID, friendID)
}

// AcceptFriendship flips the pending request from userID to friendID to
// accepted and drops both users' cached friend lists.
func (s *Service) AcceptFriendship(userID, friendID string) error {
	res := s.DB.Model(&models.Friendship{}).
		Where("user_id = ? AND friend_id = ? AND status = ?", userID, friendID, models.FriendshipPending).
		Update("status", models.FriendshipAccepted)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return s.invalidateFriendsCache(userID, friendID)
}

// SaveMessage persists a private message. msg.ID and msg.CreatedAt are
// populated by GORM on return.
func (s *Service) SaveMessage(msg *models.PrivateMessage) error {
	return s.DB.Create(msg).Error
}

// Conversation loads both directions of the 1:1 history oldest first and
// marks every message addressed to userID as read. The returned slice
// reflects the updated read flags.
func (s *Service) Conversation(userID, friendID string) ([]models.PrivateMessage, error) {
	var messages []models.PrivateMessage
	err := s.DB.
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, friendID, friendID, userID).
		Order("created_at asc").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	if err := s.DB.Model(&models.PrivateMessage{}).
		Where("sender_id = ? AND receiver_id = ? AND read = ?", friendID, userID, false).
		Update("read", true).Error; err != nil {
		return nil, err
	}

	for i := range messages {
		if messages[i].ReceiverID == userID {
			messages[i].Read = true
		}
	}
	return messages, nil
}

// MarkMessageRead flips a single message's read flag.
func (s *Service) MarkMessageRead(id uint) error {
	res := s.DB.Model(&models.PrivateMessage{}).
		Where("id = ?", id).
		Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveGlobalMessage persists a message sent to the global broadcast room.
func (s *Service) SaveGlobalMessage(msg *models.ChatMessage) error {
	if msg.Room == "" {
		msg.Room = "global"
	}
	return s.DB.Create(msg).Error
}

// SetUserOnline refreshes the user's online flag in Redis.
func (s *Service) SetUserOnline(userID string) error {
	return s.Redis.SetEx(s.Ctx, "online:"+userID, "1", onlineTTL).Err()
}

// IsUserOnline reports whether the user's online flag is still live.
func (s *Service) IsUserOnline(userID string) (bool, error) {
	n, err := s.Redis.Exists(s.Ctx, "online:"+userID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// invalidateFriendsCache drops the cached friend lists kept by the friends
// API so the next read sees the mutation.
func (s *Service) invalidateFriendsCache(userIDs ...string) error {
	if s.Redis == nil {
		return nil
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, "friends:"+id)
	}
	return s.Redis.Del(s.Ctx, keys...).Err()
}
