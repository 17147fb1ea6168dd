package netdev

import (
	"github.com/Cloud-Foundations/olvm/lib/log"
	"github.com/vishvananda/netlink"
)

const (
	// MacPrefix is the fixed prefix of generated MAC addresses. The low bit of
	// the first octet is clear (unicast).
	MacPrefix = "52:54:01"

	bridgePrefix       = "net"
	tapPrefix          = "vm"
	maxTapVmNameLength = 10
)

type linkOperator interface {
	LinkAdd(link netlink.Link) error
	LinkByName(name string) (netlink.Link, error)
	LinkDel(link netlink.Link) error
	LinkSetMaster(link netlink.Link, master netlink.Link) error
	LinkSetUp(link netlink.Link) error
}

// Provisioner creates and removes the bridge and TAP devices used by
// networks and VM interfaces. Every method is safe to call again after
// success.
type Provisioner struct {
	logger   log.DebugLogger
	operator linkOperator
}

func New(logger log.DebugLogger) *Provisioner {
	return &Provisioner{logger: logger, operator: netlinkOperator{}}
}

// DeviceNameForNetwork returns the name of the bridge device for a network.
func DeviceNameForNetwork(network string) string {
	return bridgePrefix + network
}

// DeviceNameForInterface returns the name of the TAP device for the VM
// interface at index. Only the first 10 characters of the VM name are used.
func DeviceNameForInterface(vmName string, index int) string {
	return deviceNameForInterface(vmName, index)
}

// GenerateMAC returns a random MAC address with the MacPrefix prefix. The
// caller must check it is not already in use.
func GenerateMAC() string {
	return generateMAC()
}

// ValidateCIDR checks that cidr is an IPv4 address followed by a prefix
// length. No range checking is performed.
func ValidateCIDR(cidr string) bool {
	return validateCIDR(cidr)
}

// ValidateIP checks that ip is a dotted-quad IPv4 address.
func ValidateIP(ip string) bool {
	return validateIP(ip)
}

// BridgeAddInterface attaches an existing interface to a bridge.
func (p *Provisioner) BridgeAddInterface(iface, bridge string) error {
	return p.bridgeAddInterface(iface, bridge)
}

// BridgeCreate creates the bridge if it does not exist and brings it up.
func (p *Provisioner) BridgeCreate(name string) error {
	return p.bridgeCreate(name)
}

func (p *Provisioner) BridgeDelete(name string) error {
	return p.deleteLink("delete bridge", name)
}

// TapCreate creates the TAP device if it does not exist and brings it up.
func (p *Provisioner) TapCreate(name string) error {
	return p.tapCreate(name)
}

func (p *Provisioner) TapDelete(name string) error {
	return p.deleteLink("delete tap", name)
}
