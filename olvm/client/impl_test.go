package client

import (
	"net"
	"strings"
	"testing"
	"time"

	"github.com/Cloud-Foundations/olvm/lib/errors"
)

// serve answers each request with the next response and records requests.
func serve(t *testing.T, responses ...string) (string, <-chan string) {
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	requests := make(chan string, len(responses))
	go func() {
		buffer := make([]byte, MaxDatagramSize)
		for _, response := range responses {
			length, address, err := conn.ReadFrom(buffer)
			if err != nil {
				return
			}
			requests <- string(buffer[:length])
			conn.WriteTo([]byte(response), address)
		}
	}()
	return conn.LocalAddr().String(), requests
}

func TestCommand(t *testing.T) {
	address, requests := serve(t, `{"node":2,"cpu":1.5}`+"\n")
	result, err := New(time.Second).Command(address, "status", "")
	if err != nil {
		t.Fatal(err)
	}
	if string(result) != `{"node":2,"cpu":1.5}` {
		t.Errorf("unexpected result: %s", string(result))
	}
	if request := <-requests; request != "status " {
		t.Errorf("expected: \"status \", got: %q", request)
	}
}

func TestCommandPayload(t *testing.T) {
	address, requests := serve(t, "\n")
	result, err := New(time.Second).Command(address, "createvm",
		`{"name":"vm1"}`)
	if err != nil {
		t.Fatal(err)
	}
	if string(result) != "null" {
		t.Errorf("expected: null, got: %s", string(result))
	}
	if request := <-requests; request != `createvm {"name":"vm1"}` {
		t.Errorf("unexpected request: %s", request)
	}
}

func TestCommandError(t *testing.T) {
	address, _ := serve(t, `{"error": "VM: vm1 is not available"}`+"\n")
	_, err := New(time.Second).Command(address, "createvm", "{}")
	var remoteError *errors.RemoteError
	if !errors.As(err, &remoteError) {
		t.Fatalf("expected RemoteError, got: %v", err)
	}
	if remoteError.Message != "VM: vm1 is not available" {
		t.Errorf("unexpected message: %s", remoteError.Message)
	}
	if remoteError.Address != address {
		t.Errorf("expected address: %s, got: %s", address, remoteError.Address)
	}
}

func TestCommandTimeout(t *testing.T) {
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	_, err = New(50*time.Millisecond).Command(conn.LocalAddr().String(),
		"status", "")
	var remoteError *errors.RemoteError
	if !errors.As(err, &remoteError) {
		t.Errorf("expected RemoteError, got: %v", err)
	}
}

func TestDecodeResponse(t *testing.T) {
	tests := map[string]string{
		"":                                 "null",
		"{}":                               "null",
		"[]\n":                             "null",
		`[{"name":"vm1"}]`:                 `[{"name":"vm1"}]`,
		`{"parameters":{"error":"x"}}`:     `{"parameters":{"error":"x"}}`,
		`{"error":"x","name":"vm1"}`:       `{"error":"x","name":"vm1"}`,
		"  {\"running\":true}\n":           `{"running":true}`,
	}
	for input, expected := range tests {
		result, err := decodeResponse("peer", []byte(input))
		if err != nil {
			t.Errorf("%q: %s", input, err)
			continue
		}
		if string(result) != expected {
			t.Errorf("%q: expected: %s, got: %s", input, expected,
				string(result))
		}
	}
	for _, input := range []string{`{"error": 3}`, "not json", `{"error":"x"}`} {
		_, err := decodeResponse("peer", []byte(input))
		if err == nil {
			t.Errorf("%q: expected error", input)
		} else if !strings.Contains(err.Error(), "peer") {
			t.Errorf("%q: address missing from: %s", input, err)
		}
	}
}
