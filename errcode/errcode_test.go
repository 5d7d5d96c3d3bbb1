package errcode

import (
	"errors"
	"fmt"
	"testing"
)

func TestCodesAreStableStrings(t *testing.T) {
	cases := map[string]Code{
		"device_not_found":     DeviceNotFound,
		"bus_access_denied":    BusAccessDenied,
		"transport_error":      TransportError,
		"initialization_error": InitializationError,
		"bus_in_use":           BusInUse,
		"invalid_params":       InvalidParams,
		"not_ready":            NotReady,
	}
	for want, c := range cases {
		if c.Error() != want {
			t.Fatalf("code %q mismatch: got %q", want, c.Error())
		}
	}
}

func TestOfAndIsThroughWrapping(t *testing.T) {
	cause := errors.New("nack")
	e := &E{C: InitializationError, Op: "bringup", Kind: "humidity", Err: cause}
	wrapped := fmt.Errorf("acquire: %w", e)

	if Of(wrapped) != InitializationError {
		t.Fatalf("Of = %q", Of(wrapped))
	}
	if !errors.Is(wrapped, InitializationError) {
		t.Fatal("errors.Is should match the code")
	}
	if errors.Is(wrapped, DeviceNotFound) {
		t.Fatal("errors.Is matched the wrong code")
	}
	if !errors.Is(wrapped, cause) {
		t.Fatal("cause lost")
	}
	if KindOf(wrapped) != "humidity" {
		t.Fatalf("KindOf = %q", KindOf(wrapped))
	}
}

func TestOfDefaults(t *testing.T) {
	if Of(nil) != OK {
		t.Fatal("nil should map to OK")
	}
	if Of(errors.New("x")) != Error {
		t.Fatal("plain error should map to Error")
	}
	if Of(fmt.Errorf("w: %w", BusInUse)) != BusInUse {
		t.Fatal("bare code should survive wrapping")
	}
	if Wrap(TransportError, "open", nil) != nil {
		t.Fatal("Wrap(nil) should be nil")
	}
}

func TestErrorText(t *testing.T) {
	e := &E{C: InitializationError, Op: "bringup", Kind: "pressure", Msg: "who_am_i", Err: errors.New("nack")}
	if got, want := e.Error(), "initialization_error[pressure] bringup: who_am_i: nack"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}
