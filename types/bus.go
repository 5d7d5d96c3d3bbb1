package types

// ---- Bus transport contract ----
//
// The transport layer (kernel i2c-dev via periph.io on Linux, or a scripted
// fake on the host) sits behind these interfaces. Board bring-up never talks
// to a concrete bus type.

// ControllerID names one bus controller as reported by enumeration (e.g. "I2C1").
type ControllerID string

// SelectorI2C selects the I²C bus class during enumeration.
const SelectorI2C = "i2c"

// BusConn is an opened connection to one addressed device on one controller.
// A connection is owned by exactly one wrapper; it is not shared.
type BusConn interface {
	// Tx writes w then reads len(r) bytes with a repeated start.
	// Either slice may be empty.
	Tx(w, r []byte) error
	Controller() ControllerID
	Config() BusConnectionConfig
	Close() error
}

type BusEnumerator interface {
	// Enumerate lists controllers matching selector, in a stable order.
	Enumerate(selector string) ([]ControllerID, error)
}

type BusOpener interface {
	Open(id ControllerID, cfg BusConnectionConfig) (BusConn, error)
}

type BusTransport interface {
	BusEnumerator
	BusOpener
}
