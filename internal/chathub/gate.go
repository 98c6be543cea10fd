package chathub

import (
	"errors"
	"fmt"

	"drinkbuddies/backend/internal/auth"
	"drinkbuddies/backend/internal/models"
	"drinkbuddies/backend/internal/storage"
)

// Gate authorization failures. Each maps to a distinct websocket close code
// at the session-establishment endpoint.
var (
	// ErrInvalidToken means the presented credential failed verification
	// or carried no subject.
	ErrInvalidToken = errors.New("invalid token")
	// ErrUserNotFound means the token's subject no longer resolves to a
	// user (stale token).
	ErrUserNotFound = errors.New("user not found")
	// ErrFriendNotFound means the requested conversation partner does not
	// exist.
	ErrFriendNotFound = errors.New("friend not found")
	// ErrNotFriends means no accepted friendship links the two users.
	ErrNotFriends = errors.New("not friends")
)

// Admission is a successful authorization: both resolved participants and
// the canonical room they share.
type Admission struct {
	User    *models.User
	Friend  *models.User
	RoomKey string
}

// Gate converts a bearer credential plus a target username into a validated
// room admission. It runs once at session establishment; a friendship
// revoked while a session is open does not close the socket (known
// limitation, kept from the original behavior).
type Gate struct {
	tokens *auth.Service
	store  storage.Storage
}

// NewGate wires the gate over the token service and the user/friendship
// stores.
func NewGate(tokens *auth.Service, store storage.Storage) *Gate {
	return &Gate{tokens: tokens, store: store}
}

// Authorize admits the token's subject into a private conversation with
// friendUsername. Both users must exist and share an accepted friendship,
// in either request direction.
func (g *Gate) Authorize(token, friendUsername string) (*Admission, error) {
	username, err := g.tokens.ParseAccessToken(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := g.store.GetUserByUsername(username)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolving user %q: %w", username, err)
	}

	friend, err := g.store.GetUserByUsername(friendUsername)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrFriendNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolving friend %q: %w", friendUsername, err)
	}

	ok, err := g.store.AreFriends(user.ID, friend.ID)
	if err != nil {
		return nil, fmt.Errorf("checking friendship: %w", err)
	}
	if !ok {
		return nil, ErrNotFriends
	}

	return &Admission{
		User:    user,
		Friend:  friend,
		RoomKey: RoomKey(user.ID, friend.ID),
	}, nil
}

// AuthorizeGlobal admits the token's subject into the global room. Only the
// credential is checked; no friendship is involved.
func (g *Gate) AuthorizeGlobal(token string) (*models.User, error) {
	username, err := g.tokens.ParseAccessToken(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := g.store.GetUserByUsername(username)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolving user %q: %w", username, err)
	}
	return user, nil
}

// GlobalRoom is the single broadcast room every authenticated user may join.
const GlobalRoom = "global"

// RoomKey derives the canonical identifier of a 1:1 conversation. The two
// participant IDs are sorted lexicographically so both ends compute the same
// key regardless of who initiates; IDs are UUIDs and can never contain the
// delimiter, which keeps distinct pairs collision-free.
func RoomKey(userID, friendID string) string {
	lo, hi := userID, friendID
	if lo > hi {
		lo, hi = hi, lo
	}
	return "private:" + lo + ":" + hi
}

// Topic names the backbone channel carrying a room's traffic.
func Topic(roomKey string) string {
	return "chat:" + roomKey
}
