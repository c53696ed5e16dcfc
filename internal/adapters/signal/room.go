package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/tdemirci/videocall/internal/app"
	"github.com/tdemirci/videocall/internal/core"
	"github.com/tdemirci/videocall/internal/domain"
	"github.com/tdemirci/videocall/internal/protocol"
)

func (ctl *SignalWSController) handleSignal(sid core.SessionID, c *WsSignalConn, data []byte) {
	var env protocol.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad json")
		return
	}

	switch env.Type {
	case protocol.EventCreateRoom:
		ctl.handleCreateRoom(sid, c, data)
	case protocol.EventJoinRoom:
		ctl.handleJoinRoom(sid, c, data)
	case protocol.EventOffer, protocol.EventAnswer, protocol.EventICECandidate:
		ctl.handleRelay(env.Type, sid, data)
	case protocol.EventChatMessage:
		ctl.handleChat(sid, data)
	case protocol.EventLeaveRoom, protocol.EventParticipantLeft:
		ctl.Departure.Leave(sid)
	case protocol.EventHostEndedCall:
		ctl.handleHostEnded(sid, data)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
	}
}

func (ctl *SignalWSController) handleCreateRoom(sid core.SessionID, conn *WsSignalConn, data []byte) {
	type createPayload struct {
		Type     string `json:"type"`
		Room     string `json:"room"`
		UserName string `json:"userName"`
	}
	var p createPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad create-room payload")
		ctl.sendError(conn, "bad payload")
		return
	}
	raw := p.Room
	if len(raw) > domain.MaxRoomIDLen {
		raw = raw[:domain.MaxRoomIDLen]
	}
	roomID := domain.RoomID(raw)
	if roomID == "" {
		ctl.sendError(conn, "empty room id")
		return
	}

	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", string(roomID)).Msg("create-room")
	ctl.Registry.CreateOrReplace(sid, roomID, p.UserName)
	ctl.sendJSON(conn, protocol.RoomCreated{
		Type: protocol.EventRoomCreated,
		Room: string(roomID),
	})
	ctl.Relay.BroadcastRoomUpdate(roomID)
	ctl.Orch.Schedule(roomID)
}

func (ctl *SignalWSController) handleJoinRoom(sid core.SessionID, conn *WsSignalConn, data []byte) {
	type joinPayload struct {
		Type     string `json:"type"`
		Room     string `json:"room"`
		UserName string `json:"userName"`
	}
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join-room payload")
		ctl.sendError(conn, "bad payload")
		return
	}
	if !ctl.Limiter.Allow(sid) {
		ctl.sendJSON(conn, protocol.JoinResult{Type: protocol.EventJoinResult, Error: "too many join attempts"})
		return
	}

	roomID := domain.RoomID(p.Room)
	if err := ctl.Registry.Join(sid, roomID, p.UserName); err != nil {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", p.Room).Msg("join failed, room not found")
		ctl.sendJSON(conn, protocol.JoinResult{Type: protocol.EventJoinResult, Error: err.Error()})
		ctl.sendError(conn, "Room not found!")
		return
	}

	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", p.Room).Msg("joined")
	ctl.sendJSON(conn, protocol.JoinResult{Type: protocol.EventJoinResult, Success: true})

	user, _ := ctl.Registry.UserOf(sid)
	ctl.Relay.Broadcast(roomID, sid, protocol.UserJoined{
		Type:     protocol.EventUserJoined,
		UserID:   string(sid),
		UserName: user.Username,
	})
	ctl.sendJSON(conn, protocol.ExistingUsers{
		Type:  protocol.EventExistingUsers,
		Users: othersOf(ctl.Registry.MembersOf(roomID), sid),
	})
	ctl.Relay.BroadcastRoomUpdate(roomID)
	ctl.Orch.Schedule(roomID)
}

func (ctl *SignalWSController) handleHostEnded(sid core.SessionID, data []byte) {
	type hostEndedPayload struct {
		Type string `json:"type"`
		Room string `json:"room"`
	}
	var p hostEndedPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad host-ended-call payload")
		return
	}
	ctl.Departure.HostEndedCall(sid, domain.RoomID(p.Room))
}

func (ctl *SignalWSController) sendError(conn *WsSignalConn, message string) {
	ctl.sendJSON(conn, protocol.ErrorEvent{Type: protocol.EventError, Message: message})
}

func othersOf(members []app.MemberSnap, self core.SessionID) []core.MemberDTO {
	out := make([]core.MemberDTO, 0, len(members))
	for _, m := range members {
		if m.SID == self {
			continue
		}
		out = append(out, core.MemberDTO{UserID: string(m.SID), UserName: m.User.Username})
	}
	return out
}
