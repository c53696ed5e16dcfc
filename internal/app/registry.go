package app

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/tdemirci/videocall/internal/core"
	"github.com/tdemirci/videocall/internal/domain"
)

var ErrRoomNotFound = errors.New("room not found")

type sessionEntry struct {
	user    *domain.User
	session core.MemberSession
	room    domain.RoomID // "" while not in a room
}

// roomState exists in the registry iff members is non-empty.
type roomState struct {
	members []core.SessionID // insertion order
	host    core.SessionID
}

// MemberSnap is a read snapshot of one room member.
type MemberSnap struct {
	SID     core.SessionID
	User    domain.User
	Session core.MemberSession
}

type RoomInfo struct {
	ID        domain.RoomID `json:"room"`
	UserCount int           `json:"userCount"`
}

// Registry owns the session and room tables. Every compound mutation
// (leave-old-then-join-new, remove-then-maybe-delete-room) runs under
// one lock, so no two mutations interleave. Nothing outside this type
// touches the tables.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*sessionEntry
	rooms    map[domain.RoomID]*roomState
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[core.SessionID]*sessionEntry),
		rooms:    make(map[domain.RoomID]*roomState),
	}
}

// Bind registers a freshly connected session. A re-bind for the same id
// replaces the transport but keeps no room membership.
func (r *Registry) Bind(sid core.SessionID, sess core.MemberSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(sid)
	r.sessions[sid] = &sessionEntry{
		user:    sess.Meta().User,
		session: sess,
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("bound session")
}

// Unbind destroys the session record. The caller is expected to have
// run the departure flow first; leaving here is a safety net.
func (r *Registry) Unbind(sid core.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(sid)
	delete(r.sessions, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbound session")
}

// CreateOrReplace joins roomID, creating the room if absent. The caller
// becomes host of a newly created room. Never fails; an unknown session
// id is a no-op.
func (r *Registry) CreateOrReplace(sid core.SessionID, roomID domain.RoomID, username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.joinLocked(sid, roomID, username, true)
}

// Join adds the session to an existing room; ErrRoomNotFound otherwise.
// The current room, if any, is left first.
func (r *Registry) Join(sid core.SessionID, roomID domain.RoomID, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[roomID]; !ok {
		return ErrRoomNotFound
	}
	r.joinLocked(sid, roomID, username, false)
	return nil
}

func (r *Registry) joinLocked(sid core.SessionID, roomID domain.RoomID, username string, create bool) {
	entry, ok := r.sessions[sid]
	if !ok {
		return
	}
	if username != "" {
		if err := entry.user.SetUsername(username); err != nil {
			log.Warn().Str("module", "app.registry").Str("sid", string(sid)).Err(err).Msg("rejected username")
		}
	}
	_, existed := r.rooms[roomID]
	if !existed && !create {
		return
	}
	r.leaveLocked(sid)
	// A lone member rejoining its own room empties it above; recreate
	// rather than strand the session roomless.
	rs, ok := r.rooms[roomID]
	if !ok {
		rs = &roomState{host: sid}
		r.rooms[roomID] = rs
		log.Info().Str("module", "app.registry").Str("room", string(roomID)).Msg("room created")
	}
	rs.members = append(rs.members, sid)
	entry.room = roomID
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(roomID)).Msg("joined room")
}

// Leave removes the session from its current room. The room is deleted
// the moment it becomes empty. Reports which room was left.
func (r *Registry) Leave(sid core.SessionID) (domain.RoomID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.leaveLocked(sid)
}

func (r *Registry) leaveLocked(sid core.SessionID) (domain.RoomID, bool) {
	entry, ok := r.sessions[sid]
	if !ok || entry.room == "" {
		return "", false
	}
	roomID := entry.room
	entry.room = ""
	rs, ok := r.rooms[roomID]
	if !ok {
		return roomID, true
	}
	for i, m := range rs.members {
		if m == sid {
			rs.members = append(rs.members[:i], rs.members[i+1:]...)
			break
		}
	}
	if len(rs.members) == 0 {
		delete(r.rooms, roomID)
		log.Info().Str("module", "app.registry").Str("room", string(roomID)).Msg("room deleted")
		return roomID, true
	}
	if rs.host == sid {
		rs.host = rs.members[0]
	}
	return roomID, true
}

// MembersOf returns the room's members in insertion order, empty if the
// room does not exist.
func (r *Registry) MembersOf(roomID domain.RoomID) []MemberSnap {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rs, ok := r.rooms[roomID]
	if !ok {
		return nil
	}
	out := make([]MemberSnap, 0, len(rs.members))
	for _, sid := range rs.members {
		entry, ok := r.sessions[sid]
		if !ok {
			continue
		}
		out = append(out, MemberSnap{SID: sid, User: *entry.user, Session: entry.session})
	}
	return out
}

func (r *Registry) RoomOf(sid core.SessionID) (domain.RoomID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.sessions[sid]
	if !ok || entry.room == "" {
		return "", false
	}
	return entry.room, true
}

func (r *Registry) UserOf(sid core.SessionID) (domain.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.sessions[sid]
	if !ok {
		return domain.User{}, false
	}
	return *entry.user, true
}

func (r *Registry) SessionOf(sid core.SessionID) (core.MemberSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.sessions[sid]
	if !ok {
		return nil, false
	}
	return entry.session, true
}

func (r *Registry) HostOf(roomID domain.RoomID) (core.SessionID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rs, ok := r.rooms[roomID]
	if !ok {
		return "", false
	}
	return rs.host, true
}

func (r *Registry) SetHost(roomID domain.RoomID, sid core.SessionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	rs, ok := r.rooms[roomID]
	if !ok {
		return false
	}
	for _, m := range rs.members {
		if m == sid {
			rs.host = sid
			log.Info().Str("module", "app.registry").Str("room", string(roomID)).Str("sid", string(sid)).Msg("host assigned")
			return true
		}
	}
	return false
}

func (r *Registry) Rooms() []RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]RoomInfo, 0, len(r.rooms))
	for id, rs := range r.rooms {
		out = append(out, RoomInfo{ID: id, UserCount: len(rs.members)})
	}
	return out
}
