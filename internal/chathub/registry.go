package chathub

import "sync"

// Registry tracks which rooms have live sessions. It is the only place
// allowed to mutate room membership; the relay goes through Join, Leave and
// Broadcast exclusively.
//
// Membership map operations are serialized by the registry lock; each room
// additionally carries its own lock so a broadcast snapshot on one room
// never contends with deliveries on another. Sends happen outside all locks.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*room
}

type room struct {
	mu      sync.Mutex
	members map[Session]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*room)}
}

// Join adds the session to the room and returns the new member count.
// Joining the same session twice is a no-op; membership is keyed by the
// exact session value, not by user, so one user may hold several sessions
// in the same room.
func (r *Registry) Join(roomKey string, s Session) int {
	r.mu.Lock()
	rm, ok := r.rooms[roomKey]
	if !ok {
		rm = &room{members: make(map[Session]struct{})}
		r.rooms[roomKey] = rm
	}
	rm.mu.Lock()
	r.mu.Unlock()

	rm.members[s] = struct{}{}
	n := len(rm.members)
	rm.mu.Unlock()
	return n
}

// Leave removes the session from the room. The room entry itself is removed
// once its member set empties, so the registry never holds dangling rooms.
func (r *Registry) Leave(roomKey string, s Session) {
	r.mu.Lock()
	rm, ok := r.rooms[roomKey]
	if !ok {
		r.mu.Unlock()
		return
	}
	rm.mu.Lock()
	delete(rm.members, s)
	empty := len(rm.members) == 0
	rm.mu.Unlock()
	if empty {
		delete(r.rooms, roomKey)
	}
	r.mu.Unlock()
}

// Broadcast delivers the payload to every member of the room and returns how
// many sessions accepted it. A failed send is isolated to that member: the
// rest still receive the payload and the failed session is removed from the
// room and closed.
func (r *Registry) Broadcast(roomKey string, payload []byte) int {
	r.mu.Lock()
	rm, ok := r.rooms[roomKey]
	r.mu.Unlock()
	if !ok {
		return 0
	}

	rm.mu.Lock()
	members := make([]Session, 0, len(rm.members))
	for s := range rm.members {
		members = append(members, s)
	}
	rm.mu.Unlock()

	delivered := 0
	for _, s := range members {
		if err := s.Send(payload); err != nil {
			r.Leave(roomKey, s)
			s.Close()
			continue
		}
		delivered++
	}
	return delivered
}

// Count returns the number of live sessions in the room.
func (r *Registry) Count(roomKey string) int {
	r.mu.Lock()
	rm, ok := r.rooms[roomKey]
	r.mu.Unlock()
	if !ok {
		return 0
	}
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return len(rm.members)
}

// RoomCount returns how many rooms currently have at least one session.
func (r *Registry) RoomCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}
