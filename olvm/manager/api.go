package manager

import (
	"encoding/json"

	"github.com/Cloud-Foundations/olvm/lib/log"
	"github.com/Cloud-Foundations/olvm/lib/meminfo"
	"github.com/Cloud-Foundations/olvm/olvm/config"
	"github.com/Cloud-Foundations/olvm/olvm/store"
	proto "github.com/Cloud-Foundations/olvm/proto/olvm"
)

// Backend runs the backend scripts for lifecycle verbs.
type Backend interface {
	CreateImage(image *proto.Image) error
	DeleteImage(image *proto.Image) error
	CreateVm(vm *proto.VM) error
	StartVm(vm *proto.VM) error
	StopVm(vm *proto.VM) error
	DeleteVm(vm *proto.VM) error
	StatusVm(vm *proto.VM) (map[string]interface{}, error)
	CreateSnapshot(snapshot proto.Snapshot, vm *proto.VM) error
	RestoreSnapshot(snapshot proto.Snapshot, vm *proto.VM) error
	DeleteSnapshot(snapshot proto.Snapshot, vm *proto.VM) error
}

// ControlClient sends a command to a peer daemon and returns the result.
type ControlClient interface {
	Command(address, command, payload string) (json.RawMessage, error)
}

// FileCopier copies a local file to the same path on a remote host.
type FileCopier interface {
	CopyFile(host, filename string) error
}

// Provisioner manages bridge and TAP devices.
type Provisioner interface {
	BridgeAddInterface(iface, bridge string) error
	BridgeCreate(name string) error
	BridgeDelete(name string) error
	TapCreate(name string) error
	TapDelete(name string) error
}

// Manager implements the lifecycle of images, VMs, networks and snapshots
// owned by this node. It holds no entity state of its own; the store is the
// only source of truth. Manager is not modified after New returns.
type Manager struct {
	backend       Backend
	config        *config.Config
	controlClient ControlClient
	fileCopier    FileCopier
	logger        log.DebugLogger
	node          uint
	provisioner   Provisioner
	readCpuStats  func() (cpuStats, error)
	readMemInfo   func() (*meminfo.MemInfo, error)
	store         *store.Store
}

type StartOptions struct {
	Backend       Backend
	Config        *config.Config
	ControlClient ControlClient
	FileCopier    FileCopier
	Logger        log.DebugLogger
	Provisioner   Provisioner
	Store         *store.Store
}

func New(startOptions StartOptions) (*Manager, error) {
	return newManager(startOptions)
}

// Dispatch runs command with payload on behalf of client and returns the
// JSON encoded result. Errors are returned, never panicked.
func (m *Manager) Dispatch(client, command, payload string) (string, error) {
	return m.dispatch(client, command, payload)
}

func (m *Manager) CreateImage(image proto.Image) (proto.Image, error) {
	return m.createImage(image)
}

func (m *Manager) DeleteImage(name string) error {
	return m.deleteImage(name)
}

func (m *Manager) GetImage(name string) (proto.Image, error) {
	return m.store.GetImage(name, m.node)
}

func (m *Manager) ListImages() ([]proto.Image, error) {
	return m.store.ListImages(m.node)
}

func (m *Manager) UpdateImage(image proto.Image) (proto.Image, error) {
	return m.updateImage(image)
}

// GetLease returns the interface with the specified MAC address and the
// network it is attached to.
func (m *Manager) GetLease(mac string) (proto.Interface, proto.Network,
	error) {
	return m.getLease(mac)
}

// GetStatus returns the node ID and its CPU and memory usage.
func (m *Manager) GetStatus() (proto.Status, error) {
	return m.getStatus()
}

func (m *Manager) CreateNetwork(network proto.Network) (proto.Network, error) {
	return m.createNetwork(network)
}

func (m *Manager) DeleteNetwork(name string) error {
	return m.deleteNetwork(name)
}

func (m *Manager) GetNetwork(name string) (proto.Network, error) {
	return m.store.GetNetwork(name, m.node)
}

func (m *Manager) ListNetworks() ([]proto.Network, error) {
	return m.store.ListNetworks(m.node)
}

func (m *Manager) UpdateNetwork(network proto.Network) (proto.Network, error) {
	return m.updateNetwork(network)
}

// RestoreDevices recreates the bridges of all networks and the TAP devices
// of all VMs of this node. Failures are logged and do not stop the pass.
func (m *Manager) RestoreDevices() {
	m.restoreDevices()
}

func (m *Manager) CreateSnapshot(snapshot proto.Snapshot) (proto.Snapshot,
	error) {
	return m.createSnapshot(snapshot)
}

func (m *Manager) DeleteSnapshot(snapshot proto.Snapshot) error {
	return m.deleteSnapshot(snapshot)
}

func (m *Manager) ListSnapshots(vmName string) ([]proto.Snapshot, error) {
	return m.listSnapshots(vmName)
}

func (m *Manager) RestoreSnapshot(snapshot proto.Snapshot) error {
	return m.restoreSnapshot(snapshot)
}

func (m *Manager) CreateVm(vm proto.VM) (proto.VM, error) {
	return m.createVm(vm)
}

func (m *Manager) DeleteVm(name string) error {
	return m.deleteVm(name)
}

func (m *Manager) GetVm(name string) (proto.VM, error) {
	return m.store.GetVm(name, m.node)
}

func (m *Manager) GetVmStatus(name string) (map[string]interface{}, error) {
	return m.getVmStatus(name)
}

func (m *Manager) ListVMs() ([]proto.VM, error) {
	return m.store.ListVMs(m.node)
}

// MigrateVm moves a VM to the daemon at destination. The steps are not
// atomic: if a step after the remote create fails, the VM is left registered
// on both nodes.
func (m *Manager) MigrateVm(request proto.MigrateRequest) error {
	return m.migrateVm(request)
}

func (m *Manager) StartVm(name string) error {
	return m.startVm(name)
}

func (m *Manager) StopVm(name string) error {
	return m.stopVm(name)
}

func (m *Manager) UpdateVm(vm proto.VM) (proto.VM, error) {
	return m.updateVm(vm)
}

// RegisterMetrics registers inventory metrics. It must be called at most
// once per process.
func (m *Manager) RegisterMetrics() error {
	return m.registerMetrics()
}
