package dhcpd

import (
	"net"
	"time"

	"github.com/Cloud-Foundations/olvm/lib/errors"
	"github.com/Cloud-Foundations/olvm/lib/log"
	"github.com/Cloud-Foundations/olvm/lib/log/prefixlogger"
	"github.com/Cloud-Foundations/olvm/olvm/config"
	proto "github.com/Cloud-Foundations/olvm/proto/olvm"
	dhcp "github.com/krolaw/dhcp4"
	"golang.org/x/net/ipv4"
)

const leaseTime = time.Hour * 24

var (
	broadcastAddress = &net.UDPAddr{IP: net.IPv4bcast, Port: 68}
	subnetMask       = []byte{255, 255, 255, 0}
)

// packetConn is the subset of *ipv4.PacketConn used by the server.
type packetConn interface {
	Close() error
	ReadFrom(b []byte) (int, *ipv4.ControlMessage, net.Addr, error)
	WriteTo(b []byte, cm *ipv4.ControlMessage, dst net.Addr) (int, error)
}

// broadcastConn sends every reply to replyAddress, since the client has no
// address yet. Replies leave through the interface the request arrived on,
// which for a limited broadcast is not decided by the routing table.
type broadcastConn struct {
	cm           *ipv4.ControlMessage
	conn         packetConn
	logger       log.DebugLogger
	replyAddress net.Addr
}

func newServer(dhcpConfig config.Dhcp, finder LeaseFinder,
	logger log.DebugLogger) (*DhcpServer, error) {
	listener, err := net.ListenPacket("udp4", ":67")
	if err != nil {
		return nil, err
	}
	server, err := newServerWithListener(listener, broadcastAddress,
		dhcpConfig, finder, logger)
	if err != nil {
		listener.Close()
		return nil, err
	}
	return server, nil
}

func newServerWithListener(listener net.PacketConn, replyAddress net.Addr,
	dhcpConfig config.Dhcp, finder LeaseFinder,
	logger log.DebugLogger) (*DhcpServer, error) {
	logger = prefixlogger.New("dhcpd: ", logger)
	var serverIP net.IP
	if dhcpConfig.ServerIP != "" {
		serverIP = net.ParseIP(dhcpConfig.ServerIP).To4()
		if serverIP == nil {
			return nil, errors.NewValidationError("server_ip",
				"not an IPv4 address: "+dhcpConfig.ServerIP)
		}
	}
	pktConn := ipv4.NewPacketConn(listener)
	if err := pktConn.SetControlMessage(ipv4.FlagInterface, true); err != nil {
		logger.Debugf(0, "cannot get receiving interface: %s\n", err)
	}
	server := &DhcpServer{
		conn: &broadcastConn{
			conn:         pktConn,
			logger:       logger,
			replyAddress: replyAddress,
		},
		finder:   finder,
		logger:   logger,
		serverIP: serverIP,
	}
	go func() {
		err := dhcp.Serve(server.conn, server)
		if err != nil && !errors.Is(err, net.ErrClosed) {
			logger.Printf("stopped: %s\n", err)
		}
	}()
	logger.Printf("listening on: %s\n", listener.LocalAddr())
	return server, nil
}

func makeOptions(network proto.Network) dhcp.Options {
	options := dhcp.Options{dhcp.OptionSubnetMask: subnetMask}
	if router := net.ParseIP(network.Router).To4(); router != nil {
		options[dhcp.OptionRouter] = []byte(router)
	}
	if len(network.DNS) > 0 {
		if dnsServer := net.ParseIP(network.DNS[0]).To4(); dnsServer != nil {
			options[dhcp.OptionDomainNameServer] = []byte(dnsServer)
		}
	}
	return options
}

func (s *DhcpServer) getServerIP(network proto.Network) net.IP {
	if s.serverIP != nil {
		return s.serverIP
	}
	if router := net.ParseIP(network.Router).To4(); router != nil {
		return router
	}
	return net.IPv4zero.To4()
}

func (s *DhcpServer) serveDHCP(req dhcp.Packet, msgType dhcp.MessageType,
	options dhcp.Options) dhcp.Packet {
	var replyType dhcp.MessageType
	switch msgType {
	case dhcp.Discover:
		replyType = dhcp.Offer
	case dhcp.Request:
		replyType = dhcp.ACK
	default:
		s.logger.Debugf(0, "unsupported message type: %d from: %s\n",
			msgType, req.CHAddr())
		return nil
	}
	macAddr := req.CHAddr().String()
	iface, network, err := s.finder.GetLease(macAddr)
	if err != nil {
		var notFound *errors.NotFoundError
		if errors.As(err, &notFound) {
			s.logger.Debugf(1, "ignoring unknown MAC: %s\n", macAddr)
		} else {
			s.logger.Printf("error finding lease for: %s: %s\n", macAddr, err)
		}
		return nil
	}
	ipAddr := net.ParseIP(iface.IP).To4()
	if ipAddr == nil {
		s.logger.Printf("no IP address for: %s\n", macAddr)
		return nil
	}
	serverIP := s.getServerIP(network)
	if msgType == dhcp.Request {
		if server, ok := options[dhcp.OptionServerIdentifier]; ok {
			requestedServer := net.IP(server)
			if !requestedServer.IsUnspecified() &&
				!requestedServer.Equal(serverIP) {
				s.logger.Debugf(0, "request from: %s to: %s is not me\n",
					macAddr, requestedServer)
				return nil
			}
		}
	}
	if replyType == dhcp.Offer {
		s.logger.Debugf(0, "offer: %s for: %s, server: %s\n",
			ipAddr, macAddr, serverIP)
	} else {
		s.logger.Debugf(0, "ACK: %s for: %s, server: %s\n",
			ipAddr, macAddr, serverIP)
	}
	return dhcp.ReplyPacket(req, replyType, serverIP, ipAddr, leaseTime,
		makeOptions(network).SelectOrderOrAll(
			options[dhcp.OptionParameterRequestList]))
}

func (c *broadcastConn) Close() error {
	return c.conn.Close()
}

func (c *broadcastConn) ReadFrom(b []byte) (int, net.Addr, error) {
	n, cm, addr, err := c.conn.ReadFrom(b)
	c.cm = cm
	if err == nil && cm != nil {
		c.logger.Debugf(2, "received %d bytes on interface: %d\n",
			n, cm.IfIndex)
	}
	return n, addr, err
}

// WriteTo ignores addr. The destination address of the request is not a
// valid source for the reply, so only the interface is kept.
func (c *broadcastConn) WriteTo(b []byte, addr net.Addr) (int, error) {
	var cm *ipv4.ControlMessage
	if c.cm != nil {
		cm = &ipv4.ControlMessage{IfIndex: c.cm.IfIndex}
	}
	return c.conn.WriteTo(b, cm, c.replyAddress)
}
