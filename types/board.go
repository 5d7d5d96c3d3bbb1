package types

import "fmt"

// ---- Fixed bus addresses ----

// DeviceAddress is a 7-bit I²C address on the board's shared bus.
type DeviceAddress uint16

// Manufacturer-default addresses as wired on the board. These must match the
// hardware exactly and are never derived at runtime.
const (
	AddrDisplayJoystick DeviceAddress = 0x46 // LED matrix + joystick controller
	AddrIMUAccelGyro    DeviceAddress = 0x6A // LSM9DS1 accelerometer/gyroscope
	AddrIMUMagnetometer DeviceAddress = 0x1C // LSM9DS1 magnetometer
	AddrPressure        DeviceAddress = 0x5C // LPS25H
	AddrHumidity        DeviceAddress = 0x5F // HTS221
)

func (a DeviceAddress) String() string { return fmt.Sprintf("0x%02x", uint16(a)) }

// ---- Connection settings ----

type BusSpeed uint8

const (
	SpeedStandard BusSpeed = iota // 100 kHz
	SpeedFast                     // 400 kHz
)

// Hz returns the nominal SCL frequency for the mode.
func (s BusSpeed) Hz() uint32 {
	switch s {
	case SpeedFast:
		return 400_000
	default:
		return 100_000
	}
}

func (s BusSpeed) String() string {
	switch s {
	case SpeedStandard:
		return "standard"
	case SpeedFast:
		return "fast"
	default:
		return fmt.Sprintf("speed(%d)", uint8(s))
	}
}

type SharingMode uint8

const (
	// SharingExclusive: no other connection may address the device while held.
	SharingExclusive SharingMode = iota
	SharingShared
)

func (m SharingMode) String() string {
	switch m {
	case SharingExclusive:
		return "exclusive"
	case SharingShared:
		return "shared"
	default:
		return fmt.Sprintf("sharing(%d)", uint8(m))
	}
}

// BusConnectionConfig is handed to the bus layer to obtain a live connection.
// Values are compared and copied, never mutated after construction.
type BusConnectionConfig struct {
	Address DeviceAddress
	Speed   BusSpeed
	Sharing SharingMode
}

func (c BusConnectionConfig) String() string {
	return fmt.Sprintf("addr=%s speed=%s sharing=%s", c.Address, c.Speed, c.Sharing)
}

// ---- Sensor kinds ----

type SensorKind uint8

const (
	SensorInertial SensorKind = iota
	SensorPressure
	SensorHumidity
)

func (k SensorKind) String() string {
	switch k {
	case SensorInertial:
		return "inertial"
	case SensorPressure:
		return "pressure"
	case SensorHumidity:
		return "humidity"
	default:
		return fmt.Sprintf("sensor(%d)", uint8(k))
	}
}
