package store

import (
	"time"

	proto "github.com/Cloud-Foundations/olvm/proto/olvm"
	bolt "go.etcd.io/bbolt"
)

const openTimeout = 30 * time.Second

// Store is the persisted inventory. Every entity is scoped by the node which
// owns it. Store is safe for concurrent use.
type Store struct {
	db *bolt.DB
}

// Open will open (creating if needed) the inventory database at filename.
func Open(filename string) (*Store, error) {
	return openStore(filename)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) CreateImage(image proto.Image) error {
	return s.create(imagesBucket, "image", image.Name,
		makeKey(image.Node, image.Name), image)
}

func (s *Store) DeleteImage(name string, node uint) error {
	return s.delete(imagesBucket, makeKey(node, name))
}

func (s *Store) GetImage(name string, node uint) (proto.Image, error) {
	var image proto.Image
	err := s.get(imagesBucket, "image", name, makeKey(node, name), &image)
	return image, err
}

func (s *Store) ListImages(node uint) ([]proto.Image, error) {
	images := make([]proto.Image, 0)
	err := s.list(imagesBucket, makeKey(node, ""), func(data []byte) error {
		var image proto.Image
		if err := decode(data, &image); err != nil {
			return err
		}
		images = append(images, image)
		return nil
	})
	return images, err
}

func (s *Store) UpdateImage(image proto.Image) error {
	return s.update(imagesBucket, "image", image.Name,
		makeKey(image.Node, image.Name), image)
}

func (s *Store) CreateNetwork(network proto.Network) error {
	return s.create(networksBucket, "network", network.Name,
		makeKey(network.Node, network.Name), network)
}

func (s *Store) DeleteNetwork(name string, node uint) error {
	return s.delete(networksBucket, makeKey(node, name))
}

func (s *Store) GetNetwork(name string, node uint) (proto.Network, error) {
	var network proto.Network
	err := s.get(networksBucket, "network", name, makeKey(node, name),
		&network)
	return network, err
}

func (s *Store) ListNetworks(node uint) ([]proto.Network, error) {
	networks := make([]proto.Network, 0)
	err := s.list(networksBucket, makeKey(node, ""), func(data []byte) error {
		var network proto.Network
		if err := decode(data, &network); err != nil {
			return err
		}
		networks = append(networks, network)
		return nil
	})
	return networks, err
}

func (s *Store) UpdateNetwork(network proto.Network) error {
	return s.update(networksBucket, "network", network.Name,
		makeKey(network.Node, network.Name), network)
}

func (s *Store) CreateSnapshot(snapshot proto.Snapshot) error {
	return s.create(snapshotsBucket, "snapshot", snapshot.Name,
		makeSnapshotKey(snapshot.Node, snapshot.VM, snapshot.Name), snapshot)
}

func (s *Store) DeleteSnapshot(vmName, name string, node uint) error {
	return s.delete(snapshotsBucket, makeSnapshotKey(node, vmName, name))
}

func (s *Store) GetSnapshot(vmName, name string, node uint) (
	proto.Snapshot, error) {
	var snapshot proto.Snapshot
	err := s.get(snapshotsBucket, "snapshot", name,
		makeSnapshotKey(node, vmName, name), &snapshot)
	return snapshot, err
}

// ListSnapshots returns the snapshots of the specified VM.
func (s *Store) ListSnapshots(vmName string, node uint) (
	[]proto.Snapshot, error) {
	snapshots := make([]proto.Snapshot, 0)
	err := s.list(snapshotsBucket, makeSnapshotKey(node, vmName, ""),
		func(data []byte) error {
			var snapshot proto.Snapshot
			if err := decode(data, &snapshot); err != nil {
				return err
			}
			snapshots = append(snapshots, snapshot)
			return nil
		})
	return snapshots, err
}

func (s *Store) CreateVm(vm proto.VM) error {
	return s.create(vmsBucket, "VM", vm.Name, makeKey(vm.Node, vm.Name), vm)
}

func (s *Store) DeleteVm(name string, node uint) error {
	return s.delete(vmsBucket, makeKey(node, name))
}

func (s *Store) GetVm(name string, node uint) (proto.VM, error) {
	var vm proto.VM
	err := s.get(vmsBucket, "VM", name, makeKey(node, name), &vm)
	return vm, err
}

// GetVmByMac returns the VM which has an interface with the specified MAC
// address, along with the index of that interface.
func (s *Store) GetVmByMac(mac string, node uint) (proto.VM, int, error) {
	return s.getVmByMac(mac, node)
}

func (s *Store) ListVMs(node uint) ([]proto.VM, error) {
	vms := make([]proto.VM, 0)
	err := s.list(vmsBucket, makeKey(node, ""), func(data []byte) error {
		var vm proto.VM
		if err := decode(data, &vm); err != nil {
			return err
		}
		vms = append(vms, vm)
		return nil
	})
	return vms, err
}

func (s *Store) UpdateVm(vm proto.VM) error {
	return s.update(vmsBucket, "VM", vm.Name, makeKey(vm.Node, vm.Name), vm)
}
