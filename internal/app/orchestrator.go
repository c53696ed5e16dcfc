package app

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tdemirci/videocall/internal/core"
	"github.com/tdemirci/videocall/internal/domain"
	"github.com/tdemirci/videocall/internal/protocol"
)

const DefaultOrchestrateDelay = 600 * time.Millisecond

// Orchestrator decides the peer-connection topology after every
// membership change. Emission is debounced per room: one replaceable
// timer per room id, and firing always recomputes from live registry
// state, never from a captured snapshot.
type Orchestrator struct {
	Registry *Registry

	delay  time.Duration
	mu     sync.Mutex
	timers map[domain.RoomID]*time.Timer
}

func NewOrchestrator(reg *Registry, delay time.Duration) *Orchestrator {
	if delay <= 0 {
		delay = DefaultOrchestrateDelay
	}
	return &Orchestrator{
		Registry: reg,
		delay:    delay,
		timers:   make(map[domain.RoomID]*time.Timer),
	}
}

// Schedule arms (or re-arms) the room's plan timer. A further
// membership change before the delay elapses supersedes the pending
// plan.
func (o *Orchestrator) Schedule(roomID domain.RoomID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if t, ok := o.timers[roomID]; ok {
		t.Stop()
	}
	o.timers[roomID] = time.AfterFunc(o.delay, func() {
		o.mu.Lock()
		delete(o.timers, roomID)
		o.mu.Unlock()
		o.dispatch(roomID)
	})
}

// Stop cancels all pending plans. Used on shutdown.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for id, t := range o.timers {
		t.Stop()
		delete(o.timers, id)
	}
}

// dispatch reads current membership and emits the connection plan.
// Fewer than two members means nothing to set up; the room may even be
// gone already, which is fine.
func (o *Orchestrator) dispatch(roomID domain.RoomID) {
	members := o.Registry.MembersOf(roomID)
	switch {
	case len(members) < 2:
		return
	case len(members) == 2:
		a, b := members[0], members[1]
		emit(a.Session, readyToCall(b, ShouldOffer(a.SID, b.SID)))
		emit(b.Session, readyToCall(a, ShouldOffer(b.SID, a.SID)))
		log.Info().Str("module", "app.orch").Str("room", string(roomID)).Msg("pairwise plan dispatched")
	default:
		all := make([]core.MemberDTO, len(members))
		for i, m := range members {
			all[i] = core.MemberDTO{UserID: string(m.SID), UserName: m.User.Username}
		}
		for i, m := range members {
			others := make([]core.MemberDTO, 0, len(all)-1)
			others = append(others, all[:i]...)
			others = append(others, all[i+1:]...)
			emit(m.Session, protocol.SetupPeerConnections{
				Type:     protocol.EventSetupPeers,
				AllUsers: others,
				MyInfo:   all[i],
			})
		}
		log.Info().Str("module", "app.orch").Str("room", string(roomID)).Int("members", len(members)).Msg("mesh plan dispatched")
	}
}

// ShouldOffer elects the offerer of a pair with a total, transport
// independent ordering: the lexicographically smaller id offers.
func ShouldOffer(self, other core.SessionID) bool {
	return self < other
}

func readyToCall(peer MemberSnap, shouldOffer bool) protocol.ReadyToCall {
	return protocol.ReadyToCall{
		Type:        protocol.EventReadyToCall,
		UserID:      string(peer.SID),
		UserName:    peer.User.Username,
		ShouldOffer: shouldOffer,
	}
}
