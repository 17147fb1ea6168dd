package client

import (
	"encoding/json"
	"time"
)

// MaxDatagramSize is the largest command or response carried by the control
// protocol.
const MaxDatagramSize = 65535

// Client sends commands to olvm daemons over the UDP control protocol.
type Client struct {
	timeout time.Duration
}

// New returns a Client. If timeout is zero, requests wait forever for a
// response.
func New(timeout time.Duration) *Client {
	return &Client{timeout: timeout}
}

// Command sends "<command> <payload>" to the daemon at address and returns
// the JSON result. A response of two bytes or less is returned as null. An
// {"error": ...} response or any transport failure is returned as a
// *errors.RemoteError.
func (c *Client) Command(address, command, payload string) (json.RawMessage,
	error) {
	return c.command(address, command, payload)
}
