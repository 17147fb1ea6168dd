// Package frontend implements the console, UDP and HTTP adapters which parse
// "<command> <payload>" requests and pass them to a Dispatcher.
package frontend

import (
	"io"
	"net"
	"net/http"

	"github.com/Cloud-Foundations/olvm/lib/log"
)

const maxDatagramSize = 65535

type Dispatcher interface {
	Dispatch(client, command, payload string) (string, error)
}

// Parse splits a request line into a command and a payload at the first
// space, after trimming surrounding whitespace.
func Parse(line string) (string, string) {
	return parse(line)
}

// ErrorResponse returns the JSON object used to report err to remote clients.
func ErrorResponse(err error) []byte {
	return errorResponse(err)
}

// ServeConsole reads commands from reader one line at a time and writes the
// results to writer, until reader is exhausted.
func ServeConsole(reader io.Reader, writer io.Writer, dispatcher Dispatcher,
	logger log.DebugLogger) error {
	return serveConsole(reader, writer, dispatcher, logger)
}

// ServeUDP processes one datagram at a time from conn until conn is closed.
func ServeUDP(conn net.PacketConn, dispatcher Dispatcher,
	logger log.DebugLogger) error {
	return serveUDP(conn, dispatcher, logger)
}

// ListenAndServeUDP binds to addr and calls ServeUDP.
func ListenAndServeUDP(addr string, dispatcher Dispatcher,
	logger log.DebugLogger) error {
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()
	return serveUDP(conn, dispatcher, logger)
}

// NewHttpHandler returns a handler which dispatches /<command> requests with
// the request body as the payload. The tricorder metrics pages registered on
// http.DefaultServeMux are served under /metrics.
func NewHttpHandler(dispatcher Dispatcher,
	logger log.DebugLogger) http.Handler {
	return newHttpHandler(dispatcher, logger)
}

// ListenAndServeHttp serves the handler from NewHttpHandler on addr.
func ListenAndServeHttp(addr string, dispatcher Dispatcher,
	logger log.DebugLogger) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return http.Serve(listener, newHttpHandler(dispatcher, logger))
}
