// Package lps25h provides a driver for the ST LPS25H pressure/temperature
// sensor.
//
//	d := lps25h.New(bus)
//	err := d.Configure(lps25h.Config{})  // WHO_AM_I check + power up
//	p, err := d.ReadPressure()           // milli-hPa
//
// The driver avoids floating-point; fixed-point helpers return thousandths of
// units (milli-hPa and milli-°C).
package lps25h

import (
	"errors"

	"tinygo.org/x/drivers"

	"sensehat-go/x/mathx"
)

// I2C address (SA0 low).
const Address = 0x5C

// Registers and bits (per datasheet).
const (
	regWhoAmI     = 0x0F
	regCtrl1      = 0x20
	regPressOutXL = 0x28
	regTempOutL   = 0x2B

	whoAmIValue = 0xBD

	ctrl1PowerDown = 0x80 // PD: active mode when set
	ctrl1BDU       = 0x04 // block data update

	autoIncrement = 0x80 // MSB of sub-address enables multi-byte reads
)

// DataRate selects the output data rate (CTRL_REG1 ODR bits).
type DataRate uint8

const (
	RateOneShot DataRate = 0x00
	Rate1Hz     DataRate = 0x10
	Rate7Hz     DataRate = 0x20
	Rate12_5Hz  DataRate = 0x30
	Rate25Hz    DataRate = 0x40
)

// Errors returned by the driver.
var (
	ErrNotConnected = errors.New("lps25h: device not found")
	ErrNotReady     = errors.New("lps25h: not configured")
)

// Config controls non-hardware behaviour. All fields are optional.
type Config struct {
	// Address defaults to 0x5C if zero.
	Address uint16
	// DataRate defaults to Rate1Hz. RateOneShot is not supported by Configure.
	DataRate DataRate
}

// Device wraps an I2C connection to an LPS25H device.
type Device struct {
	bus     drivers.I2C
	Address uint16

	configured bool
	buf        [3]byte
}

// New creates a new LPS25H connection. The I2C bus must already be configured.
// This function only creates the Device object; it does not touch the device.
func New(bus drivers.I2C) Device {
	return Device{
		bus:     bus,
		Address: Address,
	}
}

// Connected reads WHO_AM_I and checks the identity.
func (d *Device) Connected() bool {
	data := d.buf[:1]
	if err := d.bus.Tx(d.Address, []byte{regWhoAmI}, data); err != nil {
		return false
	}
	return data[0] == whoAmIValue
}

// Configure checks the identity and powers the device up in continuous mode
// with block data update. It is the device's only initialisation step.
func (d *Device) Configure(cfg Config) error {
	if cfg.Address != 0 {
		d.Address = cfg.Address
	}
	if cfg.DataRate == RateOneShot {
		cfg.DataRate = Rate1Hz
	}
	if !d.Connected() {
		return ErrNotConnected
	}
	ctrl := ctrl1PowerDown | byte(cfg.DataRate) | ctrl1BDU
	if err := d.bus.Tx(d.Address, []byte{regCtrl1, ctrl}, nil); err != nil {
		return err
	}
	d.configured = true
	return nil
}

// ReadPressure returns pressure in milli-hPa (1 hPa = 4096 LSB).
func (d *Device) ReadPressure() (int32, error) {
	if !d.configured {
		return 0, ErrNotReady
	}
	data := d.buf[:3]
	if err := d.bus.Tx(d.Address, []byte{regPressOutXL | autoIncrement}, data); err != nil {
		return 0, err
	}
	raw := int32(uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16)
	if raw&0x800000 != 0 {
		raw -= 1 << 24
	}
	return int32(mathx.RoundDiv(int64(raw)*1000, 4096)), nil
}

// ReadTemperature returns temperature in milli-°C (42.5 °C + raw/480).
func (d *Device) ReadTemperature() (int32, error) {
	if !d.configured {
		return 0, ErrNotReady
	}
	data := d.buf[:2]
	if err := d.bus.Tx(d.Address, []byte{regTempOutL | autoIncrement}, data); err != nil {
		return 0, err
	}
	raw := int16(uint16(data[0]) | uint16(data[1])<<8)
	return 42_500 + mathx.RoundDiv(int32(raw)*1000, 480), nil
}
