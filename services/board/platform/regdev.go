package platform

import (
	"sync"

	"sensehat-go/types"
)

// RegisterDevice emulates a register-mapped I²C peripheral.
// A write of [reg, d0, d1, ...] stores d0.. at reg, reg+1, ...; a read after
// [reg] returns consecutive registers. The ST auto-increment bit (0x80) in the
// register byte is ignored.
type RegisterDevice struct {
	mu   sync.Mutex
	regs [128]byte
}

func NewRegisterDevice(init map[byte]byte) *RegisterDevice {
	d := &RegisterDevice{}
	for r, v := range init {
		d.regs[r&0x7F] = v
	}
	return d
}

func (d *RegisterDevice) Tx(w, r []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(w) == 0 {
		for i := range r {
			r[i] = 0
		}
		return nil
	}
	reg := int(w[0] & 0x7F)
	for i, b := range w[1:] {
		d.regs[(reg+i)&0x7F] = b
	}
	for i := range r {
		r[i] = d.regs[(reg+i)&0x7F]
	}
	return nil
}

func (d *RegisterDevice) Reg(reg byte) byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.regs[reg&0x7F]
}

func (d *RegisterDevice) SetReg(reg, v byte) {
	d.mu.Lock()
	d.regs[reg&0x7F] = v
	d.mu.Unlock()
}

// ---- Board preset ----

// WHO_AM_I register and identities of the board's sensors.
const (
	RegWhoAmI        = 0x0F
	WhoAmIAccelGyro  = 0x68 // LSM9DS1 accelerometer/gyroscope
	WhoAmIMagnet     = 0x3D // LSM9DS1 magnetometer
	WhoAmIPressure   = 0xBD // LPS25H
	WhoAmIHumidity   = 0xBC // HTS221
	defaultFakeBusID = "I2C1"
)

// NewBoardFake returns a transport with every board device answering at its
// fixed address. With no controllers given it reports a single "I2C1".
func NewBoardFake(controllers ...types.ControllerID) *FakeTransport {
	if len(controllers) == 0 {
		controllers = []types.ControllerID{defaultFakeBusID}
	}
	f := NewFakeTransport(controllers...)
	for addr, dev := range BoardDevices() {
		f.Attach(addr, dev)
	}
	return f
}

// BoardDevices returns fresh emulations of the board's devices keyed by address.
func BoardDevices() map[types.DeviceAddress]*RegisterDevice {
	return map[types.DeviceAddress]*RegisterDevice{
		types.AddrDisplayJoystick: NewRegisterDevice(nil),
		types.AddrIMUAccelGyro:    NewRegisterDevice(map[byte]byte{RegWhoAmI: WhoAmIAccelGyro}),
		types.AddrIMUMagnetometer: NewRegisterDevice(map[byte]byte{RegWhoAmI: WhoAmIMagnet}),
		types.AddrPressure:        NewRegisterDevice(map[byte]byte{RegWhoAmI: WhoAmIPressure}),
		types.AddrHumidity: NewRegisterDevice(map[byte]byte{
			RegWhoAmI: WhoAmIHumidity,
			// Calibration: 32/72 %rH, 20/40 °C, non-degenerate ADC spans.
			0x30: 0x40, 0x31: 0x90,
			0x32: 0xA0, 0x33: 0x40, 0x35: 0x04,
			0x36: 0x00, 0x37: 0x00, 0x3A: 0x00, 0x3B: 0x20,
			0x3C: 0x00, 0x3D: 0x00, 0x3E: 0x00, 0x3F: 0x04,
		}),
	}
}
