package client

import (
	"bytes"
	"encoding/json"
	"net"
	"time"

	"github.com/Cloud-Foundations/olvm/lib/errors"
)

var null = json.RawMessage("null")

func (c *Client) command(address, command, payload string) (json.RawMessage,
	error) {
	conn, err := net.Dial("udp", address)
	if err != nil {
		return nil, errors.NewRemoteError(address, err.Error())
	}
	defer conn.Close()
	if c.timeout > 0 {
		if err := conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
			return nil, errors.NewRemoteError(address, err.Error())
		}
	}
	if _, err := conn.Write([]byte(command + " " + payload)); err != nil {
		return nil, errors.NewRemoteError(address, err.Error())
	}
	buffer := make([]byte, MaxDatagramSize)
	length, err := conn.Read(buffer)
	if err != nil {
		return nil, errors.NewRemoteError(address, err.Error())
	}
	return decodeResponse(address, buffer[:length])
}

func decodeResponse(address string, data []byte) (json.RawMessage, error) {
	data = bytes.TrimSpace(data)
	if len(data) <= 2 {
		return null, nil
	}
	if data[0] == '{' {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(data, &fields); err == nil {
			if rawMessage, ok := fields["error"]; ok && len(fields) == 1 {
				var message string
				if err := json.Unmarshal(rawMessage, &message); err != nil {
					return nil, errors.NewRemoteError(address,
						"invalid error response: "+string(data))
				}
				return nil, errors.NewRemoteError(address, message)
			}
		}
	}
	if !json.Valid(data) {
		return nil, errors.NewRemoteError(address,
			"invalid response: "+string(data))
	}
	return json.RawMessage(data), nil
}
