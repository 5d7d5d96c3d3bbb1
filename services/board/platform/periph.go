// Package platform provides bus transports for board bring-up: a periph.io
// backed transport for Linux hosts and scripted fakes for host-side tests.
package platform

import (
	"sort"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"sensehat-go/errcode"
	"sensehat-go/logging"
	"sensehat-go/types"
)

// PeriphTransport enumerates and opens I²C controllers through periph.io.
// Each controller is opened once and shared by every connection on it; the
// controller is closed when its last connection closes.
type PeriphTransport struct {
	initOnce sync.Once
	initErr  error

	mu     sync.Mutex
	buses  map[types.ControllerID]*sharedBus
	claims *claimTable
	log    logging.Logger
}

type sharedBus struct {
	bus  i2c.BusCloser
	refs int
}

// NewPeriphTransport returns a transport that logs to log; nil discards.
func NewPeriphTransport(log logging.Logger) *PeriphTransport {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &PeriphTransport{
		buses:  make(map[types.ControllerID]*sharedBus),
		claims: newClaimTable(),
		log:    log,
	}
}

func (p *PeriphTransport) init() error {
	p.initOnce.Do(func() {
		_, p.initErr = host.Init()
	})
	return p.initErr
}

// Enumerate lists registered I²C buses by name. The registry already sorts
// by name; sorting again keeps the order independent of driver load order.
func (p *PeriphTransport) Enumerate(selector string) ([]types.ControllerID, error) {
	if selector != types.SelectorI2C {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "enumerate", Msg: "unsupported selector " + selector}
	}
	if err := p.init(); err != nil {
		return nil, err
	}
	refs := i2creg.All()
	ids := make([]types.ControllerID, 0, len(refs))
	for _, r := range refs {
		ids = append(ids, types.ControllerID(r.Name))
	}
	sort.SliceStable(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (p *PeriphTransport) Open(id types.ControllerID, cfg types.BusConnectionConfig) (types.BusConn, error) {
	if err := p.init(); err != nil {
		return nil, err
	}
	if err := p.claims.acquire(id, cfg); err != nil {
		return nil, err
	}
	bus, err := p.retain(id, cfg.Speed)
	if err != nil {
		p.claims.release(id, cfg.Address)
		return nil, err
	}
	return &periphConn{
		t:    p,
		ctrl: id,
		cfg:  cfg,
		dev:  &i2c.Dev{Bus: bus, Addr: uint16(cfg.Address)},
	}, nil
}

func (p *PeriphTransport) retain(id types.ControllerID, speed types.BusSpeed) (i2c.Bus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	sb, ok := p.buses[id]
	if !ok {
		b, err := i2creg.Open(string(id))
		if err != nil {
			return nil, err
		}
		// The clock is set once, by the first connection; later ones share
		// it. sysfs buses without a speed hook reject SetSpeed and stay at the
		// kernel default (standard mode).
		if err := b.SetSpeed(physic.Frequency(speed.Hz()) * physic.Hertz); err != nil {
			p.log.Debugw("bus speed not applied", "controller", id, "speed", speed, "error", err)
		}
		sb = &sharedBus{bus: b}
		p.buses[id] = sb
	}
	sb.refs++
	return sb.bus, nil
}

func (p *PeriphTransport) release(id types.ControllerID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	sb, ok := p.buses[id]
	if !ok {
		return nil
	}
	sb.refs--
	if sb.refs > 0 {
		return nil
	}
	delete(p.buses, id)
	return sb.bus.Close()
}

// ---- Connection ----

type periphConn struct {
	t    *PeriphTransport
	ctrl types.ControllerID
	cfg  types.BusConnectionConfig
	dev  *i2c.Dev

	closeOnce sync.Once
	closeErr  error
}

func (c *periphConn) Tx(w, r []byte) error              { return c.dev.Tx(w, r) }
func (c *periphConn) Controller() types.ControllerID    { return c.ctrl }
func (c *periphConn) Config() types.BusConnectionConfig { return c.cfg }
func (c *periphConn) String() string                    { return string(c.ctrl) + "@" + c.cfg.Address.String() }

func (c *periphConn) Close() error {
	c.closeOnce.Do(func() {
		c.t.claims.release(c.ctrl, c.cfg.Address)
		c.closeErr = c.t.release(c.ctrl)
	})
	return c.closeErr
}
