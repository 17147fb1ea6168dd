package manager

import (
	"fmt"
	"net"

	"github.com/Cloud-Foundations/olvm/lib/errors"
	"github.com/Cloud-Foundations/olvm/olvm/netdev"
	proto "github.com/Cloud-Foundations/olvm/proto/olvm"
)

const maxMacAttempts = 16

func isNotFound(err error) bool {
	var notFoundError *errors.NotFoundError
	return errors.As(err, &notFoundError)
}

func (m *Manager) removeVmRow(name string) {
	if err := m.store.DeleteVm(name, m.node); err != nil {
		m.logger.Printf("error deleting VM: %s: %s\n", name, err)
	}
}

// checkMacAvailable returns a ConflictError if a VM other than owner has an
// interface using mac.
func (m *Manager) checkMacAvailable(mac, owner string) error {
	vm, _, err := m.store.GetVmByMac(mac, m.node)
	if err == nil {
		if owner != "" && vm.Name == owner {
			return nil
		}
		return errors.NewConflictError("MAC address", mac)
	}
	if isNotFound(err) {
		return nil
	}
	return err
}

func (m *Manager) generateMac(used map[string]struct{}, owner string) (
	string, error) {
	for attempt := 0; attempt < maxMacAttempts; attempt++ {
		mac := netdev.GenerateMAC()
		if _, ok := used[mac]; ok {
			continue
		}
		if err := m.checkMacAvailable(mac, owner); err != nil {
			var conflictError *errors.ConflictError
			if errors.As(err, &conflictError) {
				continue
			}
			return "", err
		}
		return mac, nil
	}
	return "", fmt.Errorf("unable to generate a free MAC address after %d attempts",
		maxMacAttempts)
}

// validateVm checks the VM, resolves the networks of its interfaces and
// assigns MAC addresses to interfaces which have none. It returns the bridge
// device for each interface. owner is the name of the VM being updated, or
// empty for a new VM. No devices are touched.
func (m *Manager) validateVm(vm *proto.VM, owner string) ([]string, error) {
	if err := validateName("name", vm.Name); err != nil {
		return nil, err
	}
	if len(vm.Name) > proto.MaxVmNameLength {
		return nil, errors.NewValidationError("name",
			fmt.Sprintf("longer than %d characters", proto.MaxVmNameLength))
	}
	if vm.Backend == "" {
		return nil, errors.NewValidationError("backend", "required")
	}
	if m.config.GetBackend(vm.Backend) == nil {
		return nil, errors.NewUnknownBackendError(vm.Backend)
	}
	if vm.Image != "" {
		if _, err := m.store.GetImage(vm.Image, m.node); err != nil {
			return nil, err
		}
	}
	bridges := make([]string, 0, len(vm.Interfaces))
	used := make(map[string]struct{}, len(vm.Interfaces))
	for index := range vm.Interfaces {
		iface := &vm.Interfaces[index]
		field := fmt.Sprintf("interfaces[%d]", index)
		if iface.Network == "" {
			return nil, errors.NewValidationError(field+".network", "required")
		}
		network, err := m.store.GetNetwork(iface.Network, m.node)
		if err != nil {
			return nil, err
		}
		bridge := network.Bridge
		if bridge == "" {
			bridge = netdev.DeviceNameForNetwork(network.Name)
		}
		bridges = append(bridges, bridge)
		if iface.IP != "" && !netdev.ValidateIP(iface.IP) {
			return nil, errors.NewValidationError(field+".ip",
				"invalid IP address: "+iface.IP)
		}
		if iface.MAC == "" {
			continue
		}
		hwAddr, err := net.ParseMAC(iface.MAC)
		if err != nil || len(hwAddr) != 6 {
			return nil, errors.NewValidationError(field+".mac",
				"invalid MAC address: "+iface.MAC)
		}
		iface.MAC = hwAddr.String()
		if _, ok := used[iface.MAC]; ok {
			return nil, errors.NewConflictError("MAC address", iface.MAC)
		}
		used[iface.MAC] = struct{}{}
		if err := m.checkMacAvailable(iface.MAC, owner); err != nil {
			return nil, err
		}
	}
	for index := range vm.Interfaces {
		iface := &vm.Interfaces[index]
		if iface.MAC != "" {
			continue
		}
		mac, err := m.generateMac(used, owner)
		if err != nil {
			return nil, err
		}
		iface.MAC = mac
		used[mac] = struct{}{}
	}
	return bridges, nil
}

// provisionInterfaces creates the TAP device for each interface and attaches
// it to its bridge. If rollback is true, TAP devices created so far are
// removed on failure.
func (m *Manager) provisionInterfaces(vm proto.VM, bridges []string,
	rollback bool) error {
	for index := range vm.Interfaces {
		tap := netdev.DeviceNameForInterface(vm.Name, index)
		err := m.provisioner.TapCreate(tap)
		if err == nil {
			err = m.provisioner.BridgeAddInterface(tap, bridges[index])
		}
		if err != nil {
			if rollback {
				m.teardownInterfaces(vm.Name, 0, index+1)
			}
			return err
		}
	}
	return nil
}

// teardownInterfaces removes the TAP devices for interfaces [first, end).
// Errors are logged.
func (m *Manager) teardownInterfaces(vmName string, first, end int) {
	for index := first; index < end; index++ {
		tap := netdev.DeviceNameForInterface(vmName, index)
		if err := m.provisioner.TapDelete(tap); err != nil {
			m.logger.Printf("error deleting tap: %s: %s\n", tap, err)
		}
	}
}

func (m *Manager) createVm(vm proto.VM) (proto.VM, error) {
	vm.Node = m.node
	bridges, err := m.validateVm(&vm, "")
	if err != nil {
		return proto.VM{}, err
	}
	// The row reserves the name before any device is touched, since TAP
	// names are derived from it.
	if err := m.store.CreateVm(vm); err != nil {
		return proto.VM{}, err
	}
	if err := m.provisionInterfaces(vm, bridges, true); err != nil {
		m.removeVmRow(vm.Name)
		return proto.VM{}, err
	}
	if err := m.backend.CreateVm(&vm); err != nil {
		m.logger.Printf("error creating VM: %s, rolling back: %s\n",
			vm.Name, err)
		m.teardownInterfaces(vm.Name, 0, len(vm.Interfaces))
		m.removeVmRow(vm.Name)
		return proto.VM{}, err
	}
	m.logger.Printf("created VM: %s with %d interfaces\n",
		vm.Name, len(vm.Interfaces))
	return vm, nil
}

// deleteVm runs the backend delete first, so that a failure leaves the VM
// in place for a retry.
func (m *Manager) deleteVm(name string) error {
	vm, err := m.store.GetVm(name, m.node)
	if err != nil {
		return err
	}
	if err := m.backend.DeleteVm(&vm); err != nil {
		return err
	}
	if err := m.store.DeleteVm(name, m.node); err != nil {
		return err
	}
	if snapshots, err := m.store.ListSnapshots(name, m.node); err != nil {
		m.logger.Println(err)
	} else {
		for _, snapshot := range snapshots {
			err := m.store.DeleteSnapshot(name, snapshot.Name, m.node)
			if err != nil {
				m.logger.Println(err)
			}
		}
	}
	m.teardownInterfaces(name, 0, len(vm.Interfaces))
	m.logger.Printf("deleted VM: %s\n", name)
	return nil
}

func (m *Manager) getLease(mac string) (proto.Interface, proto.Network,
	error) {
	vm, index, err := m.store.GetVmByMac(mac, m.node)
	if err != nil {
		return proto.Interface{}, proto.Network{}, err
	}
	iface := vm.Interfaces[index]
	network, err := m.store.GetNetwork(iface.Network, m.node)
	if err != nil {
		return proto.Interface{}, proto.Network{}, err
	}
	return iface, network, nil
}

func (m *Manager) getVmStatus(name string) (map[string]interface{}, error) {
	vm, err := m.store.GetVm(name, m.node)
	if err != nil {
		return nil, err
	}
	return m.backend.StatusVm(&vm)
}

func (m *Manager) startVm(name string) error {
	vm, err := m.store.GetVm(name, m.node)
	if err != nil {
		return err
	}
	return m.backend.StartVm(&vm)
}

func (m *Manager) stopVm(name string) error {
	vm, err := m.store.GetVm(name, m.node)
	if err != nil {
		return err
	}
	return m.backend.StopVm(&vm)
}

// updateVm validates and re-provisions the interfaces of an existing VM and
// persists it. Parameters in the request are merged over the stored ones.
// Backend scripts are not run.
func (m *Manager) updateVm(vm proto.VM) (proto.VM, error) {
	if vm.Name == "" {
		return proto.VM{}, errors.NewValidationError("name", "required")
	}
	oldVm, err := m.store.GetVm(vm.Name, m.node)
	if err != nil {
		return proto.VM{}, err
	}
	vm.Node = m.node
	bridges, err := m.validateVm(&vm, vm.Name)
	if err != nil {
		return proto.VM{}, err
	}
	parameters := vm.Parameters
	vm.Parameters = nil
	vm.MergeParameters(oldVm.Parameters)
	vm.MergeParameters(parameters)
	if err := m.provisionInterfaces(vm, bridges, false); err != nil {
		return proto.VM{}, err
	}
	if err := m.store.UpdateVm(vm); err != nil {
		return proto.VM{}, err
	}
	m.teardownInterfaces(vm.Name, len(vm.Interfaces), len(oldVm.Interfaces))
	return vm, nil
}
