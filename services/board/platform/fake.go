package platform

import (
	"errors"
	"sync"

	"sensehat-go/errcode"
	"sensehat-go/types"
)

// ErrNoAck is returned by fake connections when nothing answers at the address.
var ErrNoAck = errors.New("i2c: no ack")

// TxDevice emulates one addressed device behind a fake connection.
type TxDevice interface {
	Tx(w, r []byte) error
}

// FakeTransport is a scripted transport for host-side tests and dry runs.
// It enforces the same exclusive/shared claims as the periph transport and
// counts every enumeration, open and transaction.
type FakeTransport struct {
	mu sync.Mutex

	controllers  []types.ControllerID
	enumerateErr error
	openErr      map[types.DeviceAddress]error
	devices      map[types.DeviceAddress]TxDevice

	// OnEnumerate, when set, runs (outside the lock) before each enumeration.
	OnEnumerate func()

	enumerations int
	opens        map[types.DeviceAddress]int
	txs          map[types.DeviceAddress]int
	lastOpen     map[types.DeviceAddress]openRecord
	live         int

	claims *claimTable
}

type openRecord struct {
	ctrl types.ControllerID
	cfg  types.BusConnectionConfig
}

// NewFakeTransport creates a transport reporting the given controllers.
func NewFakeTransport(controllers ...types.ControllerID) *FakeTransport {
	return &FakeTransport{
		controllers: append([]types.ControllerID(nil), controllers...),
		openErr:     make(map[types.DeviceAddress]error),
		devices:     make(map[types.DeviceAddress]TxDevice),
		opens:       make(map[types.DeviceAddress]int),
		txs:         make(map[types.DeviceAddress]int),
		lastOpen:    make(map[types.DeviceAddress]openRecord),
		claims:      newClaimTable(),
	}
}

// ---- Scripting ----

func (f *FakeTransport) SetControllers(ids ...types.ControllerID) {
	f.mu.Lock()
	f.controllers = append([]types.ControllerID(nil), ids...)
	f.mu.Unlock()
}

func (f *FakeTransport) FailEnumerate(err error) {
	f.mu.Lock()
	f.enumerateErr = err
	f.mu.Unlock()
}

// FailOpen makes every Open at addr fail with err; nil clears it.
func (f *FakeTransport) FailOpen(addr types.DeviceAddress, err error) {
	f.mu.Lock()
	if err == nil {
		delete(f.openErr, addr)
	} else {
		f.openErr[addr] = err
	}
	f.mu.Unlock()
}

// Attach places an emulated device at addr; nil detaches it (the address NACKs).
func (f *FakeTransport) Attach(addr types.DeviceAddress, dev TxDevice) {
	f.mu.Lock()
	if dev == nil {
		delete(f.devices, addr)
	} else {
		f.devices[addr] = dev
	}
	f.mu.Unlock()
}

// ---- Introspection ----

func (f *FakeTransport) Enumerations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enumerations
}

func (f *FakeTransport) Opens(addr types.DeviceAddress) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opens[addr]
}

func (f *FakeTransport) Txs(addr types.DeviceAddress) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.txs[addr]
}

// LastOpen reports the controller and settings of the latest Open at addr.
func (f *FakeTransport) LastOpen(addr types.DeviceAddress) (types.ControllerID, types.BusConnectionConfig, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.lastOpen[addr]
	return r.ctrl, r.cfg, ok
}

// Live is the number of connections opened and not yet closed.
func (f *FakeTransport) Live() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.live
}

// ---- types.BusTransport ----

func (f *FakeTransport) Enumerate(selector string) ([]types.ControllerID, error) {
	if hook := f.OnEnumerate; hook != nil {
		hook()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enumerations++
	if selector != types.SelectorI2C {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "enumerate", Msg: "unsupported selector " + selector}
	}
	if f.enumerateErr != nil {
		return nil, f.enumerateErr
	}
	return append([]types.ControllerID(nil), f.controllers...), nil
}

func (f *FakeTransport) Open(id types.ControllerID, cfg types.BusConnectionConfig) (types.BusConn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opens[cfg.Address]++
	f.lastOpen[cfg.Address] = openRecord{ctrl: id, cfg: cfg}
	if err := f.openErr[cfg.Address]; err != nil {
		return nil, err
	}
	known := false
	for _, c := range f.controllers {
		if c == id {
			known = true
			break
		}
	}
	if !known {
		return nil, &errcode.E{C: errcode.DeviceNotFound, Op: "open", Msg: "unknown controller " + string(id)}
	}
	if err := f.claims.acquire(id, cfg); err != nil {
		return nil, err
	}
	f.live++
	return &fakeConn{f: f, ctrl: id, cfg: cfg}, nil
}

// ---- Connection ----

type fakeConn struct {
	f      *FakeTransport
	ctrl   types.ControllerID
	cfg    types.BusConnectionConfig
	closed bool
}

func (c *fakeConn) Tx(w, r []byte) error {
	c.f.mu.Lock()
	if c.closed {
		c.f.mu.Unlock()
		return &errcode.E{C: errcode.TransportError, Op: "tx", Msg: "connection closed"}
	}
	c.f.txs[c.cfg.Address]++
	dev := c.f.devices[c.cfg.Address]
	c.f.mu.Unlock()
	if dev == nil {
		return ErrNoAck
	}
	return dev.Tx(w, r)
}

func (c *fakeConn) Controller() types.ControllerID    { return c.ctrl }
func (c *fakeConn) Config() types.BusConnectionConfig { return c.cfg }

func (c *fakeConn) Close() error {
	c.f.mu.Lock()
	defer c.f.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.f.live--
	c.f.claims.release(c.ctrl, c.cfg.Address)
	return nil
}
