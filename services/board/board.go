// Package board brings up the composite sensor board: it locates the bus
// controller, opens the display/joystick controller, initialises the inertial,
// pressure and humidity sensors and hands out one Board for the process.
package board

import (
	"fmt"

	"sensehat-go/errcode"
	"sensehat-go/types"
)

// Board is the fully initialised composite handle. It owns the exclusive
// display/joystick connection and three ready sensors. A Board is only ever
// constructed by Assemble and is never partially initialised.
type Board struct {
	display  types.BusConn
	imu      *IMU
	pressure *Pressure
	humidity *Humidity
}

// Assemble composes the opened display connection and the three ready sensors.
// It performs no I/O. Nil or not-ready inputs violate the caller's contract and
// are reported as NotReady.
func Assemble(display types.BusConn, imu *IMU, pressure *Pressure, humidity *Humidity) (*Board, error) {
	if display == nil {
		return nil, &errcode.E{C: errcode.NotReady, Op: "assemble", Msg: "display connection missing"}
	}
	for _, s := range []struct {
		kind  types.SensorKind
		ready bool
	}{
		{types.SensorInertial, imu != nil && imu.Ready()},
		{types.SensorPressure, pressure != nil && pressure.Ready()},
		{types.SensorHumidity, humidity != nil && humidity.Ready()},
	} {
		if !s.ready {
			return nil, &errcode.E{C: errcode.NotReady, Op: "assemble", Kind: s.kind.String(), Msg: "sensor not ready"}
		}
	}
	return &Board{display: display, imu: imu, pressure: pressure, humidity: humidity}, nil
}

// Display returns the display/joystick controller connection for the LED
// matrix and joystick facades.
func (b *Board) Display() types.BusConn { return b.display }
func (b *Board) IMU() *IMU              { return b.imu }
func (b *Board) Pressure() *Pressure    { return b.pressure }
func (b *Board) Humidity() *Humidity    { return b.humidity }

// Sensors lists the three sensors in bring-up order.
func (b *Board) Sensors() []Sensor {
	return []Sensor{b.imu, b.pressure, b.humidity}
}

func (b *Board) String() string {
	return fmt.Sprintf("board{controller=%s display=%s imu=%v pressure=%v humidity=%v}",
		b.display.Controller(), b.display.Config().Address,
		b.imu.Addresses(), b.pressure.Addresses(), b.humidity.Addresses())
}
