package app

import (
	"errors"
	"testing"
)

func TestRoomExistsIffNonEmpty(t *testing.T) {
	reg := NewRegistry()
	bind(reg, "a", "Alice")

	if got := reg.Rooms(); len(got) != 0 {
		t.Fatalf("expected no rooms, got %v", got)
	}

	reg.CreateOrReplace("a", "r1", "Alice")
	rooms := reg.Rooms()
	if len(rooms) != 1 || rooms[0].ID != "r1" || rooms[0].UserCount != 1 {
		t.Fatalf("expected r1 with one member, got %v", rooms)
	}

	reg.Leave("a")
	if got := reg.Rooms(); len(got) != 0 {
		t.Fatalf("room must be deleted the moment it empties, got %v", got)
	}
	if got := reg.MembersOf("r1"); len(got) != 0 {
		t.Fatalf("deleted room must have no members, got %v", got)
	}
}

func TestJoinUnknownRoom(t *testing.T) {
	reg := NewRegistry()
	bind(reg, "a", "Alice")

	err := reg.Join("a", "nope", "Alice")
	if !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
	if _, ok := reg.RoomOf("a"); ok {
		t.Fatal("failed join must not place the session in a room")
	}
}

func TestFailedJoinKeepsCurrentRoom(t *testing.T) {
	reg := NewRegistry()
	bind(reg, "a", "Alice")
	reg.CreateOrReplace("a", "r1", "Alice")

	if err := reg.Join("a", "missing", "Alice"); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
	room, ok := reg.RoomOf("a")
	if !ok || room != "r1" {
		t.Fatalf("session must stay in r1 after failed join, got %q ok=%v", room, ok)
	}
}

func TestSingleRoomMembership(t *testing.T) {
	reg := NewRegistry()
	bind(reg, "a", "Alice")

	reg.CreateOrReplace("a", "r1", "Alice")
	reg.CreateOrReplace("a", "r2", "Alice")

	if got := reg.MembersOf("r1"); len(got) != 0 {
		t.Fatalf("session must be removed from r1, got %v", got)
	}
	if got := reg.MembersOf("r2"); len(got) != 1 || got[0].SID != "a" {
		t.Fatalf("session must be in r2, got %v", got)
	}
	room, _ := reg.RoomOf("a")
	if room != "r2" {
		t.Fatalf("RoomOf = %q, want r2", room)
	}
}

func TestMemberInsertionOrder(t *testing.T) {
	reg := NewRegistry()
	bind(reg, "a", "Alice")
	bind(reg, "b", "Bob")
	bind(reg, "c", "Cem")

	reg.CreateOrReplace("a", "r1", "Alice")
	if err := reg.Join("b", "r1", "Bob"); err != nil {
		t.Fatal(err)
	}
	if err := reg.Join("c", "r1", "Cem"); err != nil {
		t.Fatal(err)
	}

	members := reg.MembersOf("r1")
	want := []string{"a", "b", "c"}
	if len(members) != len(want) {
		t.Fatalf("got %d members, want %d", len(members), len(want))
	}
	for i, w := range want {
		if string(members[i].SID) != w {
			t.Fatalf("member[%d] = %s, want %s", i, members[i].SID, w)
		}
	}

	reg.Leave("b")
	members = reg.MembersOf("r1")
	if len(members) != 2 || members[0].SID != "a" || members[1].SID != "c" {
		t.Fatalf("order after leave = %v, want [a c]", members)
	}
}

func TestHostTracksCreatorThenFallsBack(t *testing.T) {
	reg := NewRegistry()
	bind(reg, "a", "Alice")
	bind(reg, "b", "Bob")

	reg.CreateOrReplace("a", "r1", "Alice")
	if host, _ := reg.HostOf("r1"); host != "a" {
		t.Fatalf("creator must be host, got %s", host)
	}

	if err := reg.Join("b", "r1", "Bob"); err != nil {
		t.Fatal(err)
	}
	reg.Leave("a")
	if host, _ := reg.HostOf("r1"); host != "b" {
		t.Fatalf("host must fall back to first remaining member, got %s", host)
	}
}

func TestUnbindLeavesRoomFirst(t *testing.T) {
	reg := NewRegistry()
	bind(reg, "a", "Alice")
	reg.CreateOrReplace("a", "r1", "Alice")

	reg.Unbind("a")
	if _, ok := reg.SessionOf("a"); ok {
		t.Fatal("session record must be destroyed")
	}
	if got := reg.Rooms(); len(got) != 0 {
		t.Fatalf("room must be deleted, got %v", got)
	}
}

func TestLoneMemberRejoinKeepsRoomAlive(t *testing.T) {
	reg := NewRegistry()
	bind(reg, "a", "Alice")
	reg.CreateOrReplace("a", "r1", "Alice")

	if err := reg.Join("a", "r1", "Alice2"); err != nil {
		t.Fatalf("rejoin must succeed, got %v", err)
	}
	if got := reg.MembersOf("r1"); len(got) != 1 || got[0].SID != "a" {
		t.Fatalf("expected a alone in r1, got %v", got)
	}
	user, _ := reg.UserOf("a")
	if user.Username != "Alice2" {
		t.Fatalf("rejoin must update the display name, got %q", user.Username)
	}
}

func TestUsernameUpdatedOnJoin(t *testing.T) {
	reg := NewRegistry()
	bind(reg, "a", "")

	reg.CreateOrReplace("a", "r1", "Alice")
	user, _ := reg.UserOf("a")
	if user.Username != "Alice" {
		t.Fatalf("username = %q, want Alice", user.Username)
	}
}
