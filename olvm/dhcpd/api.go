package dhcpd

import (
	"net"

	"github.com/Cloud-Foundations/olvm/lib/log"
	"github.com/Cloud-Foundations/olvm/olvm/config"
	proto "github.com/Cloud-Foundations/olvm/proto/olvm"
	dhcp "github.com/krolaw/dhcp4"
)

// LeaseFinder resolves a MAC address to the VM interface which owns it and
// the network that interface is attached to.
type LeaseFinder interface {
	GetLease(mac string) (proto.Interface, proto.Network, error)
}

// DhcpServer answers DHCP requests from the VMs of this node. Requests from
// unknown MAC addresses are ignored.
type DhcpServer struct {
	conn     *broadcastConn
	finder   LeaseFinder
	logger   log.DebugLogger
	serverIP net.IP
}

// New creates a DhcpServer listening on UDP port 67 and starts serving
// requests in the background.
func New(dhcpConfig config.Dhcp, finder LeaseFinder,
	logger log.DebugLogger) (*DhcpServer, error) {
	return newServer(dhcpConfig, finder, logger)
}

// Close stops the server.
func (s *DhcpServer) Close() error {
	return s.conn.Close()
}

// ServeDHCP builds the reply to a single DHCP request. It returns nil if no
// reply should be sent.
func (s *DhcpServer) ServeDHCP(req dhcp.Packet, msgType dhcp.MessageType,
	options dhcp.Options) dhcp.Packet {
	return s.serveDHCP(req, msgType, options)
}
