package platform

import (
	"sync"

	"sensehat-go/errcode"
	"sensehat-go/types"
)

// claimKey identifies one addressed device on one controller.
type claimKey struct {
	ctrl types.ControllerID
	addr types.DeviceAddress
}

type claim struct {
	mode types.SharingMode
	refs int
}

// claimTable arbitrates connections per (controller, address).
// An exclusive claim excludes every other claim; shared claims coexist.
type claimTable struct {
	mu   sync.Mutex
	held map[claimKey]claim
}

func newClaimTable() *claimTable {
	return &claimTable{held: make(map[claimKey]claim)}
}

func (t *claimTable) acquire(ctrl types.ControllerID, cfg types.BusConnectionConfig) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	k := claimKey{ctrl: ctrl, addr: cfg.Address}
	cur, inUse := t.held[k]
	if inUse && (cur.mode == types.SharingExclusive || cfg.Sharing == types.SharingExclusive) {
		return &errcode.E{C: errcode.BusInUse, Op: "claim", Msg: string(ctrl) + "/" + cfg.Address.String()}
	}
	t.held[k] = claim{mode: cfg.Sharing, refs: cur.refs + 1}
	return nil
}

func (t *claimTable) release(ctrl types.ControllerID, addr types.DeviceAddress) {
	t.mu.Lock()
	defer t.mu.Unlock()
	k := claimKey{ctrl: ctrl, addr: addr}
	cur, ok := t.held[k]
	if !ok {
		return
	}
	if cur.refs <= 1 {
		delete(t.held, k)
		return
	}
	cur.refs--
	t.held[k] = cur
}

func (t *claimTable) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, c := range t.held {
		n += c.refs
	}
	return n
}
