package drvshim

import (
	"sync"

	"tinygo.org/x/drivers"

	"sensehat-go/errcode"
	"sensehat-go/types"
)

// Compile-time check.
var (
	_ drivers.I2C = I2C{}
	_ drivers.I2C = (*Latch)(nil)
)

// I2C adapts a set of owned per-address connections to the tinygo driver Tx
// shape. Drivers keep addressing the bus by number; each transaction is routed
// to the connection opened for that address. Addresses the shim does not own
// are rejected rather than forwarded.
type I2C struct {
	conns map[uint16]types.BusConn
}

func New(conns ...types.BusConn) I2C {
	s := I2C{conns: make(map[uint16]types.BusConn, len(conns))}
	for _, c := range conns {
		s.conns[uint16(c.Config().Address)] = c
	}
	return s
}

// Tx delegates to the connection bound to addr.
func (s I2C) Tx(addr uint16, w, r []byte) error {
	c, ok := s.conns[addr]
	if !ok {
		return &errcode.E{C: errcode.InvalidParams, Op: "drvshim.Tx", Msg: "address " + types.DeviceAddress(addr).String() + " not owned"}
	}
	return c.Tx(w, r)
}

// Latch wraps a shim and keeps the first Tx error. It serves drivers whose
// setup calls discard bus errors: run the setup, then Take the error.
type Latch struct {
	I2C

	mu  sync.Mutex
	err error
}

func NewLatch(s I2C) *Latch { return &Latch{I2C: s} }

func (l *Latch) Tx(addr uint16, w, r []byte) error {
	err := l.I2C.Tx(addr, w, r)
	if err != nil {
		l.mu.Lock()
		if l.err == nil {
			l.err = err
		}
		l.mu.Unlock()
	}
	return err
}

// Take returns the first error since the previous Take and clears it.
func (l *Latch) Take() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	err := l.err
	l.err = nil
	return err
}
