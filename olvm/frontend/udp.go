package frontend

import (
	"net"

	"github.com/Cloud-Foundations/olvm/lib/log"
	"github.com/Cloud-Foundations/olvm/lib/log/prefixlogger"
)

func serveUDP(conn net.PacketConn, dispatcher Dispatcher,
	logger log.DebugLogger) error {
	logger = prefixlogger.New("udp: ", logger)
	logger.Printf("listening on: %s\n", conn.LocalAddr())
	buffer := make([]byte, maxDatagramSize)
	for {
		length, address, err := conn.ReadFrom(buffer)
		if err != nil {
			return err
		}
		client := address.String()
		command, payload := parse(string(buffer[:length]))
		var reply []byte
		if command == "" {
			logger.Debugf(0, "%s: empty request\n", client)
			reply = []byte(`{"error": "no command"}`)
		} else if result, err := dispatcher.Dispatch(client, command,
			payload); err != nil {
			reply = errorResponse(err)
		} else {
			reply = []byte(result)
		}
		reply = append(reply, '\n')
		if _, err := conn.WriteTo(reply, address); err != nil {
			logger.Printf("%s: error replying: %s\n", client, err)
		}
	}
}
