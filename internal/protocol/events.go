// Package protocol defines the JSON event surface spoken over the
// signaling websocket. Every frame is a flat object with a "type" field.
package protocol

import "github.com/tdemirci/videocall/internal/core"

// Inbound event types.
const (
	EventCreateRoom      = "create-room"
	EventJoinRoom        = "join-room"
	EventOffer           = "offer"
	EventAnswer          = "answer"
	EventICECandidate    = "ice-candidate"
	EventChatMessage     = "chat-message"
	EventLeaveRoom       = "leave-room"
	EventHostEndedCall   = "host-ended-call"
	EventParticipantLeft = "participant-left"
)

// Outbound event types.
const (
	EventRoomCreated      = "room-created"
	EventJoinResult       = "join-result"
	EventError            = "error"
	EventUserJoined       = "user-joined"
	EventExistingUsers    = "existing-users"
	EventRoomUpdated      = "room-updated"
	EventReadyToCall      = "ready-to-call"
	EventSetupPeers       = "setup-peer-connections"
	EventPeerDisconnected = "peer-disconnected"
	EventNewHostAssigned  = "new-host-assigned"
	EventYouAreNewHost    = "you-are-new-host"
)

// Envelope is the minimal shape every inbound frame must carry.
// Handlers re-unmarshal into their own payload structs.
type Envelope struct {
	Type string `json:"type"`
}

type RoomCreated struct {
	Type string `json:"type"`
	Room string `json:"room"`
}

type JoinResult struct {
	Type    string `json:"type"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type UserJoined struct {
	Type     string `json:"type"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

type ExistingUsers struct {
	Type  string           `json:"type"`
	Users []core.MemberDTO `json:"users"`
}

type RoomUpdated struct {
	Type      string           `json:"type"`
	UserCount int              `json:"userCount"`
	Users     []core.MemberDTO `json:"users"`
}

// ReadyToCall instructs a member of a two-party room to connect to the
// other member. Exactly one of the pair gets ShouldOffer == true.
type ReadyToCall struct {
	Type        string `json:"type"`
	UserID      string `json:"userId"`
	UserName    string `json:"userName"`
	ShouldOffer bool   `json:"shouldOffer"`
}

// SetupPeerConnections carries a full-mesh plan: the receiver initiates
// one connection per entry in AllUsers.
type SetupPeerConnections struct {
	Type     string           `json:"type"`
	AllUsers []core.MemberDTO `json:"allUsers"`
	MyInfo   core.MemberDTO   `json:"myInfo"`
}

type PeerDisconnected struct {
	Type     string `json:"type"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

type NewHostAssigned struct {
	Type     string `json:"type"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

type YouAreNewHost struct {
	Type string `json:"type"`
	Room string `json:"room"`
}

type ChatMessage struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Sender    string `json:"sender"`
	Timestamp int64  `json:"timestamp"`
}
