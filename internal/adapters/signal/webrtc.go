package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/tdemirci/videocall/internal/core"
)

// handleRelay ferries offer/answer/ice-candidate payloads verbatim.
// Only the "to" field is interpreted; the rest is opaque to the server.
func (ctl *SignalWSController) handleRelay(kind string, sid core.SessionID, data []byte) {
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("kind", kind).Msg("bad relay payload")
		return
	}
	to, _ := payload["to"].(string)
	if to == "" {
		log.Warn().Str("module", "signal").Str("kind", kind).Str("sid", string(sid)).Msg("relay without target")
		return
	}
	ctl.Relay.Relay(kind, sid, core.SessionID(to), payload)
}

func (ctl *SignalWSController) handleChat(sid core.SessionID, data []byte) {
	type chatPayload struct {
		Type    string `json:"type"`
		Room    string `json:"room"`
		Message string `json:"message"`
		Sender  string `json:"sender"`
	}
	var p chatPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad chat payload")
		return
	}
	// Cross-room chat is a non-goal: the sender's registry room wins
	// over whatever the payload claims.
	roomID, ok := ctl.Registry.RoomOf(sid)
	if !ok {
		return
	}
	ctl.Relay.BroadcastChat(roomID, sid, p.Message, p.Sender)
}
