package manager

import (
	"github.com/Cloud-Foundations/olvm/lib/errors"
	proto "github.com/Cloud-Foundations/olvm/proto/olvm"
)

func validateSnapshot(snapshot proto.Snapshot) error {
	if err := validateName("name", snapshot.Name); err != nil {
		return err
	}
	return validateName("vm", snapshot.VM)
}

// getSnapshotAndVm resolves an existing snapshot and the VM it belongs to.
func (m *Manager) getSnapshotAndVm(request proto.Snapshot) (proto.Snapshot,
	proto.VM, error) {
	if err := validateSnapshot(request); err != nil {
		return proto.Snapshot{}, proto.VM{}, err
	}
	snapshot, err := m.store.GetSnapshot(request.VM, request.Name, m.node)
	if err != nil {
		return proto.Snapshot{}, proto.VM{}, err
	}
	vm, err := m.store.GetVm(snapshot.VM, m.node)
	if err != nil {
		return proto.Snapshot{}, proto.VM{}, err
	}
	return snapshot, vm, nil
}

func (m *Manager) createSnapshot(snapshot proto.Snapshot) (proto.Snapshot,
	error) {
	if err := validateSnapshot(snapshot); err != nil {
		return proto.Snapshot{}, err
	}
	vm, err := m.store.GetVm(snapshot.VM, m.node)
	if err != nil {
		return proto.Snapshot{}, err
	}
	snapshot.Node = m.node
	if err := m.store.CreateSnapshot(snapshot); err != nil {
		return proto.Snapshot{}, err
	}
	if err := m.backend.CreateSnapshot(snapshot, &vm); err != nil {
		err2 := m.store.DeleteSnapshot(snapshot.VM, snapshot.Name, m.node)
		if err2 != nil {
			m.logger.Println(err2)
		}
		return proto.Snapshot{}, err
	}
	m.logger.Printf("created snapshot: %s of VM: %s\n",
		snapshot.Name, snapshot.VM)
	return snapshot, nil
}

func (m *Manager) deleteSnapshot(request proto.Snapshot) error {
	snapshot, vm, err := m.getSnapshotAndVm(request)
	if err != nil {
		return err
	}
	if err := m.backend.DeleteSnapshot(snapshot, &vm); err != nil {
		return err
	}
	return m.store.DeleteSnapshot(snapshot.VM, snapshot.Name, m.node)
}

func (m *Manager) listSnapshots(vmName string) ([]proto.Snapshot, error) {
	if vmName == "" {
		return nil, errors.NewValidationError("vm", "required")
	}
	if _, err := m.store.GetVm(vmName, m.node); err != nil {
		return nil, err
	}
	return m.store.ListSnapshots(vmName, m.node)
}

func (m *Manager) restoreSnapshot(request proto.Snapshot) error {
	snapshot, vm, err := m.getSnapshotAndVm(request)
	if err != nil {
		return err
	}
	return m.backend.RestoreSnapshot(snapshot, &vm)
}
