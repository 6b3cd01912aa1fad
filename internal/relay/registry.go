package relay

import (
	"errors"
	"sync"

	"github.com/A-s-w-i-n/webRtc-videoCall/internal/protocol"
)

// RoomCapacity is the hard occupancy limit per room. The negotiation
// model is strictly two-party: one initiator, one responder.
const RoomCapacity = 2

var ErrRoomFull = errors.New("room is full")

type occupant struct {
	id   string
	name string
}

type room struct {
	name      string
	occupants []occupant
}

func (r *room) users() []protocol.User {
	users := make([]protocol.User, len(r.occupants))
	for i, o := range r.occupants {
		users[i] = protocol.User{ID: o.id, Name: o.name}
	}
	return users
}

// Registry is the in-memory room membership store. It is the only
// mutable shared state on the server; all access goes through its
// methods, which serialize room mutations under one lock. Rooms are
// created lazily on first admit and deleted the moment they empty, so
// a registered room always has at least one occupant.
type Registry struct {
	mu     sync.Mutex
	rooms  map[string]*room
	member map[string]string // connection id -> room name
}

func NewRegistry() *Registry {
	return &Registry{
		rooms:  make(map[string]*room),
		member: make(map[string]string),
	}
}

// ensure returns the named room, creating an empty one when the name has
// never been seen. Callers must hold r.mu.
func (r *Registry) ensure(roomName string) *room {
	rm, ok := r.rooms[roomName]
	if !ok {
		rm = &room{name: roomName}
		r.rooms[roomName] = rm
	}
	return rm
}

// Admit adds a connection to the named room and returns the resulting
// occupant list. It fails with ErrRoomFull when the room already holds
// RoomCapacity occupants; the existing occupants are untouched.
func (r *Registry) Admit(roomName, connID, displayName string) ([]protocol.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm := r.ensure(roomName)
	if len(rm.occupants) >= RoomCapacity {
		return nil, ErrRoomFull
	}

	rm.occupants = append(rm.occupants, occupant{id: connID, name: displayName})
	r.member[connID] = roomName
	return rm.users(), nil
}

// Remove takes a connection out of whichever room holds it. It returns
// the room name and the post-removal occupant list, or ok=false when the
// connection was not in any room. An emptied room is deleted immediately.
func (r *Registry) Remove(connID string) (roomName string, remaining []protocol.User, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	roomName, ok = r.member[connID]
	if !ok {
		return "", nil, false
	}
	delete(r.member, connID)

	rm := r.rooms[roomName]
	for i, o := range rm.occupants {
		if o.id == connID {
			rm.occupants = append(rm.occupants[:i], rm.occupants[i+1:]...)
			break
		}
	}
	if len(rm.occupants) == 0 {
		delete(r.rooms, roomName)
		return roomName, nil, true
	}
	return roomName, rm.users(), true
}

// RoomOf reports which room a connection currently occupies.
func (r *Registry) RoomOf(connID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	roomName, ok := r.member[connID]
	return roomName, ok
}

// Occupants returns the occupant list of a room, nil when it does not exist.
func (r *Registry) Occupants(roomName string) []protocol.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	rm, ok := r.rooms[roomName]
	if !ok {
		return nil
	}
	return rm.users()
}

// Stats reports current room and occupant counts.
func (r *Registry) Stats() (rooms, occupants int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rooms = len(r.rooms)
	occupants = len(r.member)
	return rooms, occupants
}
