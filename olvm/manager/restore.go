package manager

import (
	"github.com/Cloud-Foundations/olvm/olvm/netdev"
)

func (m *Manager) restoreDevices() {
	networks, err := m.store.ListNetworks(m.node)
	if err != nil {
		m.logger.Printf("error listing networks: %s\n", err)
		return
	}
	bridges := make(map[string]string, len(networks))
	for _, network := range networks {
		if network.Bridge == "" {
			network.Bridge = netdev.DeviceNameForNetwork(network.Name)
		}
		bridges[network.Name] = network.Bridge
		if err := m.setupBridge(network); err != nil {
			m.logger.Printf("error restoring network: %s: %s\n",
				network.Name, err)
		}
	}
	vms, err := m.store.ListVMs(m.node)
	if err != nil {
		m.logger.Printf("error listing VMs: %s\n", err)
		return
	}
	var numTaps uint
	for _, vm := range vms {
		for index, iface := range vm.Interfaces {
			bridge, ok := bridges[iface.Network]
			if !ok {
				m.logger.Printf("VM: %s interface: %d: network: %s missing\n",
					vm.Name, index, iface.Network)
				continue
			}
			tap := netdev.DeviceNameForInterface(vm.Name, index)
			err := m.provisioner.TapCreate(tap)
			if err == nil {
				err = m.provisioner.BridgeAddInterface(tap, bridge)
			}
			if err != nil {
				m.logger.Printf("error restoring tap: %s: %s\n", tap, err)
				continue
			}
			numTaps++
		}
	}
	m.logger.Printf("restored %d networks and %d taps for %d VMs\n",
		len(networks), numTaps, len(vms))
}
