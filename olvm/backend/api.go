package backend

import (
	"time"

	"github.com/Cloud-Foundations/olvm/lib/log"
	"github.com/Cloud-Foundations/olvm/olvm/config"
	proto "github.com/Cloud-Foundations/olvm/proto/olvm"
)

// Store is the subset of the inventory the Adapter needs to resolve images
// and to persist parameters reported by scripts.
type Store interface {
	GetImage(name string, node uint) (proto.Image, error)
	UpdateImage(image proto.Image) error
	UpdateVm(vm proto.VM) error
}

// Adapter maps lifecycle verbs for images and VMs onto the scripts
// configured for their backend.
type Adapter struct {
	backends map[string]*config.Backend
	logger   log.DebugLogger
	store    Store
}

// RunScript will run the script at path with argument as its only argument,
// wait for it to exit and return the key/value pairs it wrote to stdout.
func RunScript(path, argument string) (map[string]string, error) {
	return runScript(path, argument, 0)
}

// RunScriptWithTimeout is like RunScript, but kills the script if it has not
// exited within timeout. A zero timeout means no limit.
func RunScriptWithTimeout(path, argument string,
	timeout time.Duration) (map[string]string, error) {
	return runScript(path, argument, timeout)
}

func NewAdapter(backends []config.Backend, store Store,
	logger log.DebugLogger) *Adapter {
	return newAdapter(backends, store, logger)
}

func (a *Adapter) CreateImage(image *proto.Image) error {
	return a.imageVerb(image, "image create",
		func(b *config.Backend) string { return b.Image.Create })
}

func (a *Adapter) DeleteImage(image *proto.Image) error {
	return a.imageVerb(image, "image delete",
		func(b *config.Backend) string { return b.Image.Delete })
}

func (a *Adapter) CreateVm(vm *proto.VM) error {
	return a.vmVerb(vm, "create",
		func(b *config.Backend) string { return b.VM.Create })
}

func (a *Adapter) StartVm(vm *proto.VM) error {
	return a.vmVerb(vm, "start",
		func(b *config.Backend) string { return b.VM.Start })
}

func (a *Adapter) StopVm(vm *proto.VM) error {
	return a.vmVerb(vm, "stop",
		func(b *config.Backend) string { return b.VM.Stop })
}

func (a *Adapter) DeleteVm(vm *proto.VM) error {
	return a.vmVerb(vm, "delete",
		func(b *config.Backend) string { return b.VM.Delete })
}

// StatusVm runs the status script and returns what it reported. The values
// "true" and "false" are converted to booleans. Nothing is persisted.
func (a *Adapter) StatusVm(vm *proto.VM) (map[string]interface{}, error) {
	return a.statusVm(vm)
}

// CreateSnapshot runs the snapshot create script. Parameters reported by the
// script are merged into the VM.
func (a *Adapter) CreateSnapshot(snapshot proto.Snapshot, vm *proto.VM) error {
	return a.snapshotVerb(snapshot, vm, "snapshot create",
		func(b *config.Backend) string { return b.VM.SnapshotCreate })
}

func (a *Adapter) RestoreSnapshot(snapshot proto.Snapshot,
	vm *proto.VM) error {
	return a.snapshotVerb(snapshot, vm, "snapshot restore",
		func(b *config.Backend) string { return b.VM.SnapshotRestore })
}

func (a *Adapter) DeleteSnapshot(snapshot proto.Snapshot, vm *proto.VM) error {
	return a.snapshotVerb(snapshot, vm, "snapshot delete",
		func(b *config.Backend) string { return b.VM.SnapshotDelete })
}
