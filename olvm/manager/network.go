package manager

import (
	"fmt"

	"github.com/Cloud-Foundations/olvm/lib/errors"
	"github.com/Cloud-Foundations/olvm/olvm/netdev"
	proto "github.com/Cloud-Foundations/olvm/proto/olvm"
)

const maxDeviceNameLength = 15

func validateNetwork(network *proto.Network) error {
	if err := validateName("name", network.Name); err != nil {
		return err
	}
	if network.Bridge == "" {
		network.Bridge = netdev.DeviceNameForNetwork(network.Name)
	}
	if len(network.Bridge) > maxDeviceNameLength {
		return errors.NewValidationError("bridge",
			fmt.Sprintf("%s is longer than %d characters", network.Bridge,
				maxDeviceNameLength))
	}
	if network.CIDR != "" && !netdev.ValidateCIDR(network.CIDR) {
		return errors.NewValidationError("cidr", "invalid CIDR: "+network.CIDR)
	}
	if network.Router != "" && !netdev.ValidateIP(network.Router) {
		return errors.NewValidationError("router",
			"invalid IP address: "+network.Router)
	}
	for index, dns := range network.DNS {
		if !netdev.ValidateIP(dns) {
			return errors.NewValidationError(fmt.Sprintf("dns[%d]", index),
				"invalid IP address: "+dns)
		}
	}
	return nil
}

func (m *Manager) setupBridge(network proto.Network) error {
	if err := m.provisioner.BridgeCreate(network.Bridge); err != nil {
		return err
	}
	if network.Interface != "" {
		err := m.provisioner.BridgeAddInterface(network.Interface,
			network.Bridge)
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) createNetwork(network proto.Network) (proto.Network, error) {
	if err := validateNetwork(&network); err != nil {
		return proto.Network{}, err
	}
	network.Node = m.node
	if err := m.store.CreateNetwork(network); err != nil {
		return proto.Network{}, err
	}
	if err := m.setupBridge(network); err != nil {
		m.logger.Printf("error creating network: %s, rolling back: %s\n",
			network.Name, err)
		if err := m.provisioner.BridgeDelete(network.Bridge); err != nil {
			m.logger.Println(err)
		}
		if err := m.store.DeleteNetwork(network.Name, m.node); err != nil {
			m.logger.Println(err)
		}
		return proto.Network{}, err
	}
	m.logger.Printf("created network: %s on bridge: %s\n",
		network.Name, network.Bridge)
	return network, nil
}

func (m *Manager) deleteNetwork(name string) error {
	network, err := m.store.GetNetwork(name, m.node)
	if err != nil {
		return err
	}
	if err := m.store.DeleteNetwork(name, m.node); err != nil {
		return err
	}
	bridge := network.Bridge
	if bridge == "" {
		bridge = netdev.DeviceNameForNetwork(name)
	}
	if err := m.provisioner.BridgeDelete(bridge); err != nil {
		return err
	}
	m.logger.Printf("deleted network: %s\n", name)
	return nil
}

// updateNetwork persists the network and makes sure its bridge exists.
func (m *Manager) updateNetwork(network proto.Network) (proto.Network, error) {
	if err := validateNetwork(&network); err != nil {
		return proto.Network{}, err
	}
	network.Node = m.node
	if err := m.store.UpdateNetwork(network); err != nil {
		return proto.Network{}, err
	}
	if err := m.setupBridge(network); err != nil {
		return proto.Network{}, err
	}
	return network, nil
}
