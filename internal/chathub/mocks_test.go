package chathub_test

import (
	"context"
	"errors"
	"sync"

	"drinkbuddies/backend/internal/chathub"
	"drinkbuddies/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockStorage is a testify mock of the storage.Storage interface.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) CreateUser(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockStorage) GetUserByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) GetUserByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) AreFriends(userID, friendID string) (bool, error) {
	args := m.Called(userID, friendID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) CreateFriendship(userID, friendID string) error {
	args := m.Called(userID, friendID)
	return args.Error(0)
}

func (m *MockStorage) AcceptFriendship(userID, friendID string) error {
	args := m.Called(userID, friendID)
	return args.Error(0)
}

func (m *MockStorage) SaveMessage(msg *models.PrivateMessage) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockStorage) Conversation(userID, friendID string) ([]models.PrivateMessage, error) {
	args := m.Called(userID, friendID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PrivateMessage), args.Error(1)
}

func (m *MockStorage) MarkMessageRead(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockStorage) SaveGlobalMessage(msg *models.ChatMessage) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockStorage) SetUserOnline(userID string) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockStorage) IsUserOnline(userID string) (bool, error) {
	args := m.Called(userID)
	return args.Bool(0), args.Error(1)
}

// mockSession is a scripted in-memory chathub.Session. Frames queued via
// queueFrame are served to ReadFrame; payloads accepted by Send land on
// sent. failSends makes every Send fail, for broadcast eviction tests.
type mockSession struct {
	userID    string
	frames    chan []byte
	sent      chan []byte
	failSends bool

	closed    chan struct{}
	closeOnce sync.Once
}

func newMockSession(userID string) *mockSession {
	return &mockSession{
		userID: userID,
		frames: make(chan []byte, 16),
		sent:   make(chan []byte, 64), // buffered to prevent blocking in tests
		closed: make(chan struct{}),
	}
}

func (s *mockSession) UserID() string { return s.userID }

func (s *mockSession) queueFrame(data []byte) { s.frames <- data }

func (s *mockSession) ReadFrame() ([]byte, error) {
	select {
	case data := <-s.frames:
		return data, nil
	case <-s.closed:
		return nil, errors.New("session closed")
	}
}

func (s *mockSession) Send(payload []byte) error {
	if s.failSends {
		return chathub.ErrSessionClosed
	}
	select {
	case <-s.closed:
		return chathub.ErrSessionClosed
	default:
	}
	select {
	case s.sent <- payload:
		return nil
	default:
		return chathub.ErrSessionClosed
	}
}

func (s *mockSession) Close() {
	s.closeOnce.Do(func() { close(s.closed) })
}

func (s *mockSession) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

// memoryBackbone is an in-process Backbone for relay tests: publishes go to
// every live subscription of the topic, in order.
type memoryBackbone struct {
	mu         sync.Mutex
	subs       map[string][]*memorySub
	publishErr error
	published  [][]byte
}

func newMemoryBackbone() *memoryBackbone {
	return &memoryBackbone{subs: make(map[string][]*memorySub)}
}

func (b *memoryBackbone) Publish(ctx context.Context, topic string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.publishErr != nil {
		return b.publishErr
	}
	b.published = append(b.published, payload)
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
