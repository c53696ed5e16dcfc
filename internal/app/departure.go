package app

import (
	"github.com/rs/zerolog/log"

	"github.com/tdemirci/videocall/internal/core"
	"github.com/tdemirci/videocall/internal/domain"
	"github.com/tdemirci/videocall/internal/protocol"
)

// Departure reacts to explicit leave, host termination and transport
// loss. All notifications are fire-and-forget; the room-updated
// broadcast that follows self-heals any transient inconsistency.
type Departure struct {
	Registry *Registry
	Relay    *Relay
	Orch     *Orchestrator
}

// Leave notifies the rest of the room, removes the session from its
// room and re-triggers the orchestrator if members remain.
func (d *Departure) Leave(sid core.SessionID) {
	roomID, ok := d.Registry.RoomOf(sid)
	if !ok {
		return
	}
	user, _ := d.Registry.UserOf(sid)
	d.Relay.Broadcast(roomID, sid, protocol.PeerDisconnected{
		Type:     protocol.EventPeerDisconnected,
		UserID:   string(sid),
		UserName: user.Username,
	})
	d.Registry.Leave(sid)
	log.Info().Str("module", "app.departure").Str("sid", string(sid)).Str("room", string(roomID)).Msg("left room")
	if len(d.Registry.MembersOf(roomID)) > 0 {
		d.Relay.BroadcastRoomUpdate(roomID)
		d.Orch.Schedule(roomID)
	}
}

// Disconnect is the transport-loss variant: departure flow, then the
// session record itself is destroyed.
func (d *Departure) Disconnect(sid core.SessionID) {
	d.Leave(sid)
	d.Registry.Unbind(sid)
}

// HostEndedCall handles host-initiated termination. The first remaining
// member is promoted; a non-host sender degrades to a plain leave.
func (d *Departure) HostEndedCall(sid core.SessionID, roomID domain.RoomID) {
	current, ok := d.Registry.RoomOf(sid)
	if !ok || current != roomID {
		return
	}
	if host, _ := d.Registry.HostOf(roomID); host != sid {
		d.Leave(sid)
		return
	}

	var promotee *MemberSnap
	for _, m := range d.Registry.MembersOf(roomID) {
		if m.SID != sid {
			snap := m
			promotee = &snap
			break
		}
	}

	d.Registry.Leave(sid)
	if promotee == nil {
		// Host was alone; the room is gone.
		log.Info().Str("module", "app.departure").Str("room", string(roomID)).Msg("host ended empty call")
		return
	}

	d.Registry.SetHost(roomID, promotee.SID)
	emit(promotee.Session, protocol.YouAreNewHost{
		Type: protocol.EventYouAreNewHost,
		Room: string(roomID),
	})
	d.Relay.Broadcast(roomID, promotee.SID, protocol.NewHostAssigned{
		Type:     protocol.EventNewHostAssigned,
		UserID:   string(promotee.SID),
		UserName: promotee.User.Username,
	})
	log.Info().Str("module", "app.departure").Str("room", string(roomID)).Str("new_host", string(promotee.SID)).Msg("host migrated")

	d.Relay.BroadcastRoomUpdate(roomID)
	d.Orch.Schedule(roomID)
}
