package board

import (
	"errors"
	"testing"

	"sensehat-go/errcode"
	"sensehat-go/types"
)

func TestAssembleRejectsIncompleteInputs(t *testing.T) {
	ft, _ := newBoardFake()
	display, err := Locate(ft, types.SelectorI2C, nil)
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	imu, err := BringUpIMU(ft, "I2C1")
	if err != nil {
		t.Fatalf("imu: %v", err)
	}
	humidity, err := BringUpHumidity(ft, "I2C1")
	if err != nil {
		t.Fatalf("humidity: %v", err)
	}

	if _, err := Assemble(nil, imu, nil, humidity); !errors.Is(err, errcode.NotReady) {
		t.Fatalf("nil display: %v", err)
	}
	if _, err := Assemble(display, nil, nil, humidity); errcode.KindOf(err) != "inertial" {
		t.Fatalf("nil imu: %v", err)
	}
	constructed := newPressure(nil)
	if _, err := Assemble(display, imu, constructed, humidity); !errors.Is(err, errcode.NotReady) || errcode.KindOf(err) != "pressure" {
		t.Fatalf("unready pressure: %v", err)
	}
	if ft.Txs(types.AddrDisplayJoystick) != 0 {
		t.Fatal("assemble must not touch the bus")
	}
}

func TestAssembleComposes(t *testing.T) {
	ft, _ := newBoardFake()
	display, _ := Locate(ft, types.SelectorI2C, nil)
	set, err := bringUpSensors(ft, "I2C1", Sequential, testLogger(t))
	if err != nil {
		t.Fatalf("sensors: %v", err)
	}
	b, err := Assemble(display, set.imu, set.pressure, set.humidity)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if b.Display() != display || b.IMU() != set.imu || b.Pressure() != set.pressure || b.Humidity() != set.humidity {
		t.Fatal("accessors do not return the assembled parts")
	}
	want := "board{controller=I2C1 display=0x46 imu=[0x6a 0x1c] pressure=[0x5c] humidity=[0x5f]}"
	if b.String() != want {
		t.Fatalf("String() = %q (want %q)", b.String(), want)
	}
}
