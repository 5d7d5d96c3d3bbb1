package errcode

import "errors"

// Code is a stable, log-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK Code = "ok"

	// Bring-up taxonomy.
	DeviceNotFound      Code = "device_not_found"
	BusAccessDenied     Code = "bus_access_denied"
	TransportError      Code = "transport_error"
	InitializationError Code = "initialization_error"

	// Transport / contract.
	BusInUse      Code = "bus_in_use"
	InvalidParams Code = "invalid_params"
	NotReady      Code = "not_ready"

	Error Code = "error" // generic fallback
)

// E keeps a Code together with context and a cause.
// Kind names the sensor for InitializationError; empty otherwise.
type E struct {
	C    Code
	Op   string
	Kind string
	Msg  string
	Err  error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Kind != "" {
		s += "[" + e.Kind + "]"
	}
	if e.Op != "" {
		s += " " + e.Op
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Is lets errors.Is(err, errcode.DeviceNotFound) match a wrapped E.
func (e *E) Is(target error) bool {
	c, ok := target.(Code)
	return ok && c == e.C
}

// Wrap attaches a code and operation to err. A nil err stays nil.
func Wrap(c Code, op string, err error) error {
	if err == nil {
		return nil
	}
	return &E{C: c, Op: op, Err: err}
}

// Of extracts the outermost Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	type coder interface{ Code() Code }
	var x coder
	if errors.As(err, &x) {
		return x.Code()
	}
	var c Code
	if errors.As(err, &c) {
		return c
	}
	return Error
}

// KindOf returns the sensor kind recorded on the outermost E, if any.
func KindOf(err error) string {
	var e *E
	for errors.As(err, &e) {
		if e.Kind != "" {
			return e.Kind
		}
		err = e.Err
	}
	return ""
}
