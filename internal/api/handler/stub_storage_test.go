package handler_test

import (
	"context"
	"sync"
	"time"

	"drinkbuddies/backend/internal/chathub"
	"drinkbuddies/backend/internal/models"
	"drinkbuddies/backend/internal/storage"
)

// stubStorage is an in-memory storage.Storage for handler tests.
type stubStorage struct {
	mu       sync.Mutex
	users    map[string]*models.User // by username
	friends  map[string]bool         // canonical pair key -> accepted
	messages []*models.PrivateMessage
	global   []*models.ChatMessage
	online   map[string]bool
	nextID   uint
}

func newStubStorage() *stubStorage {
	return &stubStorage{
		users:   make(map[string]*models.User),
		friends: make(map[string]bool),
		online:  make(map[string]bool),
	}
}

func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

func (s *stubStorage) addUser(u *models.User) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.IsActive = true
	s.users[u.Username] = u
	return u
}

func (s *stubStorage) befriend(a, b *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.friends[pairKey(a.ID, b.ID)] = true
}

func (s *stubStorage) CreateUser(user *models.User) error {
	s.addUser(user)
	return nil
}

func (s *stubStorage) GetUserByID(id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *stubStorage) GetUserByUsername(username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[username]; ok {
		return u, nil
	}
	return nil, storage.ErrNotFound
}

func (s *stubStorage) AreFriends(userID, friendID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.friends[pairKey(userID, friendID)], nil
}

func (s *stubStorage) CreateFriendship(userID, friendID string) error {
	return nil
}

func (s *stubStorage) AcceptFriendship(userID, friendID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.friends[pairKey(userID, friendID)] = true
	return nil
}

func (s *stubStorage) SaveMessage(msg *models.PrivateMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	msg.ID = s.nextID
	msg.CreatedAt = time.Now()
	s.messages = append(s.messages, msg)
	return nil
}

func (s *stubStorage) Conversation(userID, friendID string) ([]models.PrivateMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.PrivateMessage
	for _, m := range s.messages {
		between := (m.SenderID == userID && m.ReceiverID == friendID) ||
			(m.SenderID == friendID && m.ReceiverID == userID)
		if !between {
			continue
		}
		if m.ReceiverID == userID {
			m.Read = true
		}
		out = append(out, *m)
	}
	return out, nil
}

func (s *stubStorage) MarkMessageRead(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages {
		if m.ID == id {
			m.Read = true
			return nil
		}
	}
	return storage.ErrNotFound
}

func (s *stubStorage) SaveGlobalMessage(msg *models.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	msg.ID = s.nextID
	msg.CreatedAt = time.Now()
	s.global = append(s.global, msg)
	return nil
}

func (s *stubStorage) SetUserOnline(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.online[userID] = true
	return nil
}

func (s *stubStorage) IsUserOnline(userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online[userID], nil
}

// memoryBackbone is an in-process chathub.Backbone so handler tests run
// without Redis.
type memoryBackbone struct {
	mu   sync.Mutex
	subs map[string][]*memorySub
}

func newMemoryBackbone() *memoryBackbone {
	return &memoryBackbone{subs: make(map[string][]*memorySub)}
}

func (b *memoryBackbone) Publish(ctx context.Context, topic string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subs[topic] {
		sub.ch <- payload
	}
	return nil
}

func (b *memoryBackbone) Subscribe(ctx context.Context, topic string) (chathub.Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	sub := &memorySub{b: b, topic: topic, ch: make(chan []byte, 64)}
	b.subs[topic] = append(b.subs[topic], sub)
	return sub, nil
}

type memorySub struct {
	b         *memoryBackbone
	topic     string
	ch        chan []byte
	closeOnce sync.Once
}

func (s *memorySub) Messages() <-chan []byte { return s.ch }

func (s *memorySub) Close() error {
	s.closeOnce.Do(func() {
		s.b.mu.Lock()
		live := s.b.subs[s.topic][:0]
		for _, sub := range s.b.subs[s.topic] {
			if sub != s {
				live = append(live, sub)
			}
		}
		s.b.subs[s.topic] = live
		s.b.mu.Unlock()
		close(s.ch)
	})
	return nil
}
