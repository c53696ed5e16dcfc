package app

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/tdemirci/videocall/internal/core"
	"github.com/tdemirci/videocall/internal/domain"
)

// fakeConn records delivered frames; full simulates backpressure.
type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	full   bool
}

func (f *fakeConn) TrySend(fr core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.full {
		return errors.New("backpressure")
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeConn) Close() {}

func (f *fakeConn) events(t *testing.T) []map[string]any {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]map[string]any, 0, len(f.frames))
	for _, fr := range f.frames {
		var m map[string]any
		if err := json.Unmarshal(fr, &m); err != nil {
			t.Fatalf("bad frame %q: %v", fr, err)
		}
		out = append(out, m)
	}
	return out
}

func (f *fakeConn) eventsOfType(t *testing.T, typ string) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, e := range f.events(t) {
		if e["type"] == typ {
			out = append(out, e)
		}
	}
	return out
}

func bind(reg *Registry, sid core.SessionID, name string) *fakeConn {
	conn := &fakeConn{}
	user := domain.NewUser(domain.UserID(sid), name)
	reg.Bind(sid, core.NewMemberSession(domain.NewMember(user), conn))
	return conn
}
