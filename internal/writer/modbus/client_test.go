// internal/writer/modbus/client_test.go
package modbus

import (
	"bytes"
	"testing"
)

func TestPackRegisters(t *testing.T) {
	got := PackRegisters([]uint16{0x0102, 0xA0FF})
	want := []byte{0x01, 0x02, 0xA0, 0xFF}
	if !bytes.Equal(got, want) {
		t.Fatalf("got=%x want=%x", got, want)
	}
}

func TestNewEndpointClient_EndpointRequired(t *testing.T) {
	if _, err := NewEndpointClient(Config{}); err == nil {
		t.Fatalf("expected error for empty endpoint")
	}
}
