package board

import (
	"fmt"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"sensehat-go/logging"
	"sensehat-go/types"
)

// Mode selects how the three sensor bring-ups are scheduled.
type Mode uint8

const (
	// Sequential runs inertial, pressure, humidity in that order.
	Sequential Mode = iota
	// Concurrent runs all three at once, waits for all of them and reports
	// the first failure.
	Concurrent
)

func (m Mode) String() string {
	switch m {
	case Sequential:
		return "sequential"
	case Concurrent:
		return "concurrent"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// ParseMode accepts "sequential" (or "") and "concurrent".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "sequential":
		return Sequential, nil
	case "concurrent":
		return Concurrent, nil
	default:
		return 0, fmt.Errorf("unknown bring-up mode %q", s)
	}
}

type sensorSet struct {
	imu      *IMU
	pressure *Pressure
	humidity *Humidity
}

// close releases every sensor that did come up.
func (s sensorSet) close() error {
	var err error
	if s.imu != nil {
		err = multierr.Append(err, s.imu.close())
	}
	if s.pressure != nil {
		err = multierr.Append(err, s.pressure.close())
	}
	if s.humidity != nil {
		err = multierr.Append(err, s.humidity.close())
	}
	return err
}

func bringUpSensors(t types.BusOpener, ctrl types.ControllerID, mode Mode, log logging.Logger) (sensorSet, error) {
	var set sensorSet
	var err error
	switch mode {
	case Concurrent:
		var g errgroup.Group
		g.Go(func() (e error) {
			if set.imu, e = BringUpIMU(t, ctrl); e == nil {
				log.Debugw("sensor ready", "kind", types.SensorInertial)
			}
			return e
		})
		g.Go(func() (e error) {
			if set.pressure, e = BringUpPressure(t, ctrl); e == nil {
				log.Debugw("sensor ready", "kind", types.SensorPressure)
			}
			return e
		})
		g.Go(func() (e error) {
			if set.humidity, e = BringUpHumidity(t, ctrl); e == nil {
				log.Debugw("sensor ready", "kind", types.SensorHumidity)
			}
			return e
		})
		err = g.Wait()
	default:
		if set.imu, err = BringUpIMU(t, ctrl); err != nil {
			break
		}
		log.Debugw("sensor ready", "kind", types.SensorInertial)
		if set.pressure, err = BringUpPressure(t, ctrl); err != nil {
			break
		}
		log.Debugw("sensor ready", "kind", types.SensorPressure)
		if set.humidity, err = BringUpHumidity(t, ctrl); err != nil {
			break
		}
		log.Debugw("sensor ready", "kind", types.SensorHumidity)
	}
	if err != nil {
		if cerr := set.close(); cerr != nil {
			log.Warnw("closing sensors after failed bring-up", "error", cerr)
		}
		return sensorSet{}, err
	}
	return set, nil
}

// bringUpBoard runs the full sequence: locate, sensors, assemble. On any
// failure every connection opened so far is closed and nothing is returned.
func bringUpBoard(t types.BusTransport, selector string, sel SelectFunc, mode Mode, log logging.Logger) (*Board, error) {
	display, err := Locate(t, selector, sel)
	if err != nil {
		return nil, err
	}
	log.Debugw("display controller open", "controller", display.Controller(), "conn", display.Config())

	set, err := bringUpSensors(t, display.Controller(), mode, log)
	if err != nil {
		if cerr := display.Close(); cerr != nil {
			log.Warnw("closing display connection after failed bring-up", "error", cerr)
		}
		return nil, err
	}
	return Assemble(display, set.imu, set.pressure, set.humidity)
}
