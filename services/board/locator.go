package board

import (
	"errors"
	"io/fs"
	"strings"

	"sensehat-go/errcode"
	"sensehat-go/types"
)

// SelectFunc picks one controller out of a non-empty enumeration result.
type SelectFunc func(ids []types.ControllerID) (types.ControllerID, error)

// SelectFirst is the default tie-break: the first enumerated controller wins.
// No further disambiguation is attempted.
func SelectFirst(ids []types.ControllerID) (types.ControllerID, error) {
	if len(ids) == 0 {
		return "", &errcode.E{C: errcode.DeviceNotFound, Op: "select", Msg: "no i2c controller"}
	}
	return ids[0], nil
}

// SelectByID pins a controller by name; enumeration must report it.
func SelectByID(want types.ControllerID) SelectFunc {
	return func(ids []types.ControllerID) (types.ControllerID, error) {
		for _, id := range ids {
			if id == want {
				return id, nil
			}
		}
		return "", &errcode.E{C: errcode.DeviceNotFound, Op: "select", Msg: "controller " + string(want) + " not enumerated"}
	}
}

// DisplayConnectionConfig is the fixed setting for the display/joystick
// controller: address 0x46, standard mode, exclusive.
func DisplayConnectionConfig() types.BusConnectionConfig {
	return types.BusConnectionConfig{
		Address: types.AddrDisplayJoystick,
		Speed:   types.SpeedStandard,
		Sharing: types.SharingExclusive,
	}
}

// Locate enumerates controllers matching selector, picks one with sel and
// opens the display/joystick connection on it. Failures are classified as
// DeviceNotFound, BusAccessDenied or TransportError and never retried.
func Locate(t types.BusTransport, selector string, sel SelectFunc) (types.BusConn, error) {
	if sel == nil {
		sel = SelectFirst
	}
	ids, err := t.Enumerate(selector)
	if err != nil {
		return nil, classify(errcode.TransportError, "enumerate", err)
	}
	if len(ids) == 0 {
		return nil, &errcode.E{C: errcode.DeviceNotFound, Op: "enumerate", Msg: "no controller matches " + selector}
	}
	id, err := sel(ids)
	if err != nil {
		return nil, classify(errcode.DeviceNotFound, "select", err)
	}
	conn, err := t.Open(id, DisplayConnectionConfig())
	if err != nil {
		return nil, classify(errcode.TransportError, "open "+string(id), err)
	}
	return conn, nil
}

// classify keeps an already-classified taxonomy error, maps claim conflicts
// and permission failures to BusAccessDenied and everything else to fallback.
func classify(fallback errcode.Code, op string, err error) error {
	switch errcode.Of(err) {
	case errcode.DeviceNotFound, errcode.BusAccessDenied, errcode.TransportError:
		return err
	case errcode.BusInUse:
		return errcode.Wrap(errcode.BusAccessDenied, op, err)
	}
	if errors.Is(err, fs.ErrPermission) || strings.Contains(err.Error(), "permission denied") {
		return errcode.Wrap(errcode.BusAccessDenied, op, err)
	}
	return errcode.Wrap(fallback, op, err)
}
