package domain

const MaxRoomIDLen = 64

// RoomID is the client-chosen room identifier. Free-form; the first
// create-room for an id implicitly creates the room.
type RoomID string

// Member represents user's participation meta for a room.
// No transport or lifecycle logic here.
type Member struct {
	User *User
}

// NewMember avoids raw literals in adapters and keeps construction obvious.
func NewMember(user *User) *Member {
	return &Member{User: user}
}
