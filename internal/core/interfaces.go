package core

import "github.com/tdemirci/videocall/internal/domain"

// Frame is a raw encoded message ready for the wire.
type Frame []byte

// SessionID identifies one live client connection. Assigned by the
// transport layer at connect time, stable for the connection's lifetime.
type SessionID string

// SignalConnection abstracts a system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// MemberSession binds domain.Member and its transport endpoint.
// This is what the registry stores and fans out to.
type MemberSession interface {
	Meta() *domain.Member
	Signal() SignalConnection
}

// MemberDTO is a read-only view for the wire (no transport fields).
type MemberDTO struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}
