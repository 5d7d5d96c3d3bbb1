package board

import (
	"go.uber.org/multierr"
	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/hts221"
	"tinygo.org/x/drivers/lsm9ds1"

	"sensehat-go/drivers/lps25h"
	"sensehat-go/errcode"
	"sensehat-go/services/board/internal/drvshim"
	"sensehat-go/types"
)

// Sensor is the lifecycle common to every sensor handle. A handle starts
// constructed (address bound, no bus traffic) and becomes ready once its
// initialisation handshake succeeds. There is no way back.
type Sensor interface {
	Kind() types.SensorKind
	Ready() bool
	Addresses() []types.DeviceAddress
}

// sensor holds the owned connections and the one-shot ready flag.
type sensor struct {
	kind  types.SensorKind
	conns []types.BusConn
	ready bool
}

func (s *sensor) Kind() types.SensorKind { return s.kind }
func (s *sensor) Ready() bool            { return s.ready }

func (s *sensor) Addresses() []types.DeviceAddress {
	out := make([]types.DeviceAddress, 0, len(s.conns))
	for _, c := range s.conns {
		out = append(out, c.Config().Address)
	}
	return out
}

func (s *sensor) bus() drivers.I2C { return drvshim.New(s.conns...) }

func (s *sensor) close() error {
	var err error
	for _, c := range s.conns {
		err = multierr.Append(err, c.Close())
	}
	return err
}

// ---- Inertial (LSM9DS1) ----

// Fusion selects the orientation fusion algorithm applied by the IMU facade.
// It is a policy value only; no fusion runs during bring-up.
type Fusion string

// FusionRTQF is RTIMULib quaternion fusion, the board default.
const FusionRTQF Fusion = "rtqf"

func (f Fusion) String() string { return string(f) }

// DefaultIMUConfig is the LSM9DS1 setting used at bring-up.
func DefaultIMUConfig() lsm9ds1.Configuration {
	return lsm9ds1.Configuration{
		AccelRange:      lsm9ds1.ACCEL_2G,
		AccelSampleRate: lsm9ds1.ACCEL_SR_119,
		GyroRange:       lsm9ds1.GYRO_250DPS,
		GyroSampleRate:  lsm9ds1.GYRO_SR_119,
		MagRange:        lsm9ds1.MAG_4G,
		MagSampleRate:   lsm9ds1.MAG_SR_40,
	}
}

type IMU struct {
	sensor
	dev    *lsm9ds1.Device
	cfg    lsm9ds1.Configuration
	fusion Fusion
}

func newIMU(conns []types.BusConn) *IMU {
	s := &IMU{
		sensor: sensor{kind: types.SensorInertial, conns: conns},
		cfg:    DefaultIMUConfig(),
		fusion: FusionRTQF,
	}
	s.dev = lsm9ds1.New(s.bus())
	s.dev.AccelAddress = uint8(types.AddrIMUAccelGyro)
	s.dev.MagAddress = uint8(types.AddrIMUMagnetometer)
	return s
}

func (s *IMU) initialise() error {
	if !s.dev.Connected() {
		return errNotConnected
	}
	return s.dev.Configure(s.cfg)
}

func (s *IMU) Driver() *lsm9ds1.Device { return s.dev }
func (s *IMU) Fusion() Fusion          { return s.fusion }

// ---- Pressure (LPS25H) ----

type Pressure struct {
	sensor
	dev *lps25h.Device
}

func newPressure(conns []types.BusConn) *Pressure {
	s := &Pressure{sensor: sensor{kind: types.SensorPressure, conns: conns}}
	d := lps25h.New(s.bus())
	d.Address = uint16(types.AddrPressure)
	s.dev = &d
	return s
}

func (s *Pressure) initialise() error {
	return s.dev.Configure(lps25h.Config{DataRate: lps25h.Rate1Hz})
}

func (s *Pressure) Driver() *lps25h.Device { return s.dev }

// ---- Humidity (HTS221) ----

type Humidity struct {
	sensor
	dev   *hts221.Device
	latch *drvshim.Latch
}

func newHumidity(conns []types.BusConn) *Humidity {
	s := &Humidity{sensor: sensor{kind: types.SensorHumidity, conns: conns}}
	s.latch = drvshim.NewLatch(drvshim.New(conns...))
	d := hts221.New(s.latch)
	d.Address = uint8(types.AddrHumidity)
	s.dev = &d
	return s
}

// initialise checks WHO_AM_I, then reads calibration and powers up. The driver
// drops bus errors during Configure, so the latch reports them instead.
func (s *Humidity) initialise() error {
	if !s.dev.Connected() {
		return errNotConnected
	}
	_ = s.latch.Take()
	s.dev.Configure()
	return s.latch.Take()
}

func (s *Humidity) Driver() *hts221.Device { return s.dev }

// ---- Shared bring-up ----

var errNotConnected = &errcode.E{C: errcode.NotReady, Op: "who_am_i", Msg: "identity mismatch or no ack"}

// handshaker is a constructed sensor awaiting its single initialisation.
type handshaker interface {
	initialise() error
	markReady()
	close() error
}

func (s *sensor) markReady() { s.ready = true }

// sensorConnectionConfig: sensors share the bus with each other at standard speed.
func sensorConnectionConfig(addr types.DeviceAddress) types.BusConnectionConfig {
	return types.BusConnectionConfig{Address: addr, Speed: types.SpeedStandard, Sharing: types.SharingShared}
}

// bringUp opens one connection per address on ctrl, constructs the driver and
// runs its handshake exactly once. Any failure closes what was opened and is
// reported as InitializationError carrying kind.
func bringUp[S handshaker](t types.BusOpener, ctrl types.ControllerID, kind types.SensorKind,
	construct func([]types.BusConn) S, addrs ...types.DeviceAddress) (S, error) {
	var zero S
	conns := make([]types.BusConn, 0, len(addrs))
	for _, a := range addrs {
		c, err := t.Open(ctrl, sensorConnectionConfig(a))
		if err != nil {
			for _, open := range conns {
				_ = open.Close()
			}
			return zero, initErr(kind, "open "+a.String(), err)
		}
		conns = append(conns, c)
	}
	s := construct(conns)
	if err := s.initialise(); err != nil {
		_ = s.close()
		return zero, initErr(kind, "handshake", err)
	}
	s.markReady()
	return s, nil
}

func initErr(kind types.SensorKind, op string, err error) error {
	return &errcode.E{C: errcode.InitializationError, Op: op, Kind: kind.String(), Err: err}
}

// BringUpIMU brings up the LSM9DS1 on its accel/gyro and magnetometer addresses.
func BringUpIMU(t types.BusOpener, ctrl types.ControllerID) (*IMU, error) {
	return bringUp(t, ctrl, types.SensorInertial, newIMU, types.AddrIMUAccelGyro, types.AddrIMUMagnetometer)
}

// BringUpPressure brings up the LPS25H.
func BringUpPressure(t types.BusOpener, ctrl types.ControllerID) (*Pressure, error) {
	return bringUp(t, ctrl, types.SensorPressure, newPressure, types.AddrPressure)
}

// BringUpHumidity brings up the HTS221.
func BringUpHumidity(t types.BusOpener, ctrl types.ControllerID) (*Humidity, error) {
	return bringUp(t, ctrl, types.SensorHumidity, newHumidity, types.AddrHumidity)
}
