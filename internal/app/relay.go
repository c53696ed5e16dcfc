package app

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tdemirci/videocall/internal/core"
	"github.com/tdemirci/videocall/internal/domain"
	"github.com/tdemirci/videocall/internal/protocol"
)

// emit marshals and best-effort delivers one event to one session.
// A full send buffer means the member misses this event; signaling is
// idempotent on the client side so nothing retries.
func emit(sess core.MemberSession, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Str("module", "app").Err(err).Msg("emit marshal")
		return
	}
	if err := sess.Signal().TrySend(b); err != nil {
		log.Debug().Str("module", "app").Err(err).Msg("emit dropped")
	}
}

// Relay forwards opaque handshake payloads between sessions. It never
// inspects payload contents beyond the addressing fields.
type Relay struct {
	Registry *Registry
}

// Relay delivers an event of type kind to the target, replacing the
// "to" field with sender attribution. A missing target is silently
// dropped: the target disconnected between send and delivery, and the
// handshake protocol tolerates loss.
func (r *Relay) Relay(kind string, from, to core.SessionID, payload map[string]any) {
	sender, ok := r.Registry.UserOf(from)
	if !ok {
		return
	}
	target, ok := r.Registry.SessionOf(to)
	if !ok {
		log.Debug().Str("module", "app.relay").Str("kind", kind).Str("to", string(to)).Msg("target gone, dropped")
		return
	}
	msg := make(map[string]any, len(payload)+2)
	for k, v := range payload {
		if k == "to" {
			continue
		}
		msg[k] = v
	}
	msg["type"] = kind
	msg["from"] = string(from)
	msg["fromName"] = sender.Username
	b, err := json.Marshal(msg)
	if err != nil {
		log.Error().Str("module", "app.relay").Err(err).Msg("relay marshal")
		return
	}
	_ = target.Signal().TrySend(b)
}

// Broadcast fans one event to every room member except exclude.
func (r *Relay) Broadcast(roomID domain.RoomID, exclude core.SessionID, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Str("module", "app.relay").Err(err).Msg("broadcast marshal")
		return
	}
	sent, dropped := 0, 0
	for _, m := range r.Registry.MembersOf(roomID) {
		if m.SID == exclude {
			continue
		}
		if err := m.Session.Signal().TrySend(b); err != nil {
			dropped++
			continue
		}
		sent++
	}
	log.Debug().Str("module", "app.relay").Str("room", string(roomID)).Int("sent_to", sent).Int("dropped", dropped).Msg("broadcast result")
}

// BroadcastChat relays a room chat message with a server-assigned
// timestamp, excluding its sender.
func (r *Relay) BroadcastChat(roomID domain.RoomID, exclude core.SessionID, message, sender string) {
	r.Broadcast(roomID, exclude, protocol.ChatMessage{
		Type:      protocol.EventChatMessage,
		Message:   message,
		Sender:    sender,
		Timestamp: time.Now().UnixMilli(),
	})
}

// BroadcastRoomUpdate pushes the current member list to the whole room.
// The snapshot reflects registry state at emission time; clients treat
// it as eventually consistent.
func (r *Relay) BroadcastRoomUpdate(roomID domain.RoomID) {
	members := r.Registry.MembersOf(roomID)
	if len(members) == 0 {
		return
	}
	users := make([]core.MemberDTO, 0, len(members))
	for _, m := range members {
		users = append(users, core.MemberDTO{UserID: string(m.SID), UserName: m.User.Username})
	}
	r.Broadcast(roomID, "", protocol.RoomUpdated{
		Type:      protocol.EventRoomUpdated,
		UserCount: len(users),
		Users:     users,
	})
}
