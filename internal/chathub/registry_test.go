package chathub_test

import (
	"testing"

	"drinkbuddies/backend/internal/chathub"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_JoinIsIdempotent(t *testing.T) {
	r := chathub.NewRegistry()
	s := newMockSession("user_A")

	assert.Equal(t, 1, r.Join("room1", s))
	assert.Equal(t, 1, r.Join("room1", s), "joining the same session twice must not grow the room")
	assert.Equal(t, 1, r.Count("room1"))
}

func TestRegistry_SameUserMultipleSessions(t *testing.T) {
	r := chathub.NewRegistry()
	tab1 := newMockSession("user_A")
	tab2 := newMockSession("user_A")

	r.Join("room1", tab1)
	r.Join("room1", tab2)

	assert.Equal(t, 2, r.Count("room1"), "membership is keyed by session, not by user")
}

func TestRegistry_LeavePrunesEmptyRooms(t *testing.T) {
	r := chathub.NewRegistry()
	a := newMockSession("user_A")
	b := newMockSession("user_B")

	r.Join("room1", a)
	r.Join("room1", b)
	assert.Equal(t, 1, r.RoomCount())

	r.Leave("room1", a)
	assert.Equal(t, 1, r.RoomCount(), "room survives while members remain")
	assert.Equal(t, 1, r.Count("room1"))

	r.Leave("room1", b)
	assert.Equal(t, 0, r.RoomCount(), "last leave must remove the room entry")
	assert.Equal(t, 0, r.Count("room1"))
}

func TestRegistry_LeaveUnknownRoomIsNoop(t *testing.T) {
	r := chathub.NewRegistry()
	r.Leave("nope", newMockSession("user_A"))
	assert.Equal(t, 0, r.RoomCount())
}

func TestRegistry_BroadcastDeliversToAllMembers(t *testing.T) {
	r := chathub.NewRegistry()
	a := newMockSession("user_A")
	b := newMockSession("user_B")
	r.Join("room1", a)
	r.Join("room1", b)

	delivered := r.Broadcast("room1", []byte("hello"))

	assert.Equal(t, 2, delivered)
	assert.Equal(t, []byte("hello"), <-a.sent)
	assert.Equal(t, []byte("hello"), <-b.sent)
}

func TestRegistry_BroadcastIsolatesFailures(t *testing.T) {
	r := chathub.NewRegistry()
	a := newMockSession("user_A")
	b := newMockSession("user_B")
	c := newMockSession("user_C")
	b.failSends = true

	r.Join("room1", a)
	r.Join("room1", b)
	r.Join("room1", c)

	delivered := r.Broadcast("room1", []byte("hi"))

	assert.Equal(t, 2, delivered, "failed member must not count as delivered")
	assert.Equal(t, 2, r.Count("room1"), "failed member must be evicted")
	assert.True(t, b.isClosed(), "evicted session must be closed")
	assert.Equal(t, []byte("hi"), <-a.sent)
	assert.Equal(t, []byte("hi"), <-c.sent)
}

func TestRegistry_BroadcastUnknownRoom(t *testing.T) {
	r := chathub.NewRegistry()
	assert.Equal(t, 0, r.Broadcast("nope", []byte("x")))
}
