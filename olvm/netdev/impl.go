package netdev

import (
	"fmt"
	"math/rand"
	"net"
	"strconv"
	"strings"

	"github.com/Cloud-Foundations/olvm/lib/errors"
	"github.com/vishvananda/netlink"
)

type netlinkOperator struct{}

func (netlinkOperator) LinkAdd(link netlink.Link) error {
	return netlink.LinkAdd(link)
}

func (netlinkOperator) LinkByName(name string) (netlink.Link, error) {
	return netlink.LinkByName(name)
}

func (netlinkOperator) LinkDel(link netlink.Link) error {
	return netlink.LinkDel(link)
}

func (netlinkOperator) LinkSetMaster(link, master netlink.Link) error {
	return netlink.LinkSetMaster(link, master)
}

func (netlinkOperator) LinkSetUp(link netlink.Link) error {
	return netlink.LinkSetUp(link)
}

func deviceNameForInterface(vmName string, index int) string {
	if len(vmName) > maxTapVmNameLength {
		vmName = vmName[:maxTapVmNameLength]
	}
	return tapPrefix + vmName + strconv.Itoa(index)
}

func generateMAC() string {
	return fmt.Sprintf("%s:%02x:%02x:%02x", MacPrefix,
		rand.Intn(256), rand.Intn(256), rand.Intn(256))
}

func validateCIDR(cidr string) bool {
	ip, prefix, ok := strings.Cut(cidr, "/")
	if !ok || !validateIP(ip) {
		return false
	}
	length, err := strconv.ParseUint(prefix, 10, 8)
	if err != nil {
		return false
	}
	return length <= 32
}

func validateIP(ip string) bool {
	if strings.Count(ip, ".") != 3 {
		return false
	}
	parsed := net.ParseIP(ip)
	return parsed != nil && parsed.To4() != nil
}

func isNotFound(err error) bool {
	var notFound netlink.LinkNotFoundError
	return errors.As(err, &notFound)
}

// lookup returns the named link, or nil if it does not exist.
func (p *Provisioner) lookup(operation, name string) (netlink.Link, error) {
	link, err := p.operator.LinkByName(name)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, errors.NewNetworkDeviceError(operation, name, err)
	}
	return link, nil
}

func (p *Provisioner) bridgeAddInterface(iface, bridge string) error {
	const operation = "attach to bridge"
	link, err := p.operator.LinkByName(iface)
	if err != nil {
		return errors.NewNetworkDeviceError(operation, iface, err)
	}
	master, err := p.operator.LinkByName(bridge)
	if err != nil {
		return errors.NewNetworkDeviceError(operation, bridge, err)
	}
	if err := p.operator.LinkSetMaster(link, master); err != nil {
		return errors.NewNetworkDeviceError(operation, iface, err)
	}
	p.logger.Debugf(1, "attached: %s to bridge: %s\n", iface, bridge)
	return nil
}

func (p *Provisioner) bridgeCreate(name string) error {
	const operation = "create bridge"
	link, err := p.lookup(operation, name)
	if err != nil {
		return err
	}
	if link == nil {
		bridge := &netlink.Bridge{LinkAttrs: netlink.LinkAttrs{Name: name}}
		if err := p.operator.LinkAdd(bridge); err != nil {
			return errors.NewNetworkDeviceError(operation, name, err)
		}
		p.logger.Printf("created bridge: %s\n", name)
		link = bridge
	}
	if err := p.operator.LinkSetUp(link); err != nil {
		return errors.NewNetworkDeviceError("bring up bridge", name, err)
	}
	return nil
}

func (p *Provisioner) deleteLink(operation, name string) error {
	link, err := p.lookup(operation, name)
	if err != nil {
		return err
	}
	if link == nil {
		p.logger.Debugf(1, "%s: %s: not present\n", operation, name)
		return nil
	}
	if err := p.operator.LinkDel(link); err != nil {
		return errors.NewNetworkDeviceError(operation, name, err)
	}
	p.logger.Debugf(0, "%s: %s\n", operation, name)
	return nil
}

func (p *Provisioner) tapCreate(name string) error {
	const operation = "create tap"
	link, err := p.lookup(operation, name)
	if err != nil {
		return err
	}
	if link != nil {
		if tap, ok := link.(*netlink.Tuntap); !ok ||
			tap.Mode != netlink.TUNTAP_MODE_TAP {
			return errors.NewNetworkDeviceError(operation, name,
				fmt.Errorf("existing device is not a TAP device"))
		}
	} else {
		tap := &netlink.Tuntap{
			LinkAttrs: netlink.LinkAttrs{Name: name},
			Mode:      netlink.TUNTAP_MODE_TAP,
		}
		if err := p.operator.LinkAdd(tap); err != nil {
			return errors.NewNetworkDeviceError(operation, name, err)
		}
		// The device is persistent, so the queue file descriptors opened on
		// creation are not needed.
		for _, file := range tap.Fds {
			file.Close()
		}
		p.logger.Debugf(0, "created tap: %s\n", name)
		link = tap
	}
	if err := p.operator.LinkSetUp(link); err != nil {
		return errors.NewNetworkDeviceError("bring up tap", name, err)
	}
	return nil
}
