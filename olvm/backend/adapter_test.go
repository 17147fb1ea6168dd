package backend

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/Cloud-Foundations/olvm/lib/errors"
	"github.com/Cloud-Foundations/olvm/lib/log/testlogger"
	"github.com/Cloud-Foundations/olvm/olvm/config"
	proto "github.com/Cloud-Foundations/olvm/proto/olvm"
)

type fakeStore struct {
	images      map[string]proto.Image
	imageWrites int
	vmWrites    int
	vms         map[string]proto.VM
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		images: make(map[string]proto.Image),
		vms:    make(map[string]proto.VM),
	}
}

func (s *fakeStore) GetImage(name string, node uint) (proto.Image, error) {
	if image, ok := s.images[name]; ok && image.Node == node {
		return image, nil
	}
	return proto.Image{}, errors.NewNotFoundError("image", name)
}

func (s *fakeStore) UpdateImage(image proto.Image) error {
	s.imageWrites++
	s.images[image.Name] = image
	return nil
}

func (s *fakeStore) UpdateVm(vm proto.VM) error {
	s.vmWrites++
	s.vms[vm.Name] = vm
	return nil
}

func makeAdapter(t *testing.T, backend config.Backend) (*Adapter,
	*fakeStore) {
	store := newFakeStore()
	return NewAdapter([]config.Backend{backend}, store, testlogger.New(t)),
		store
}

func TestUnknownBackend(t *testing.T) {
	adapter, _ := makeAdapter(t, config.Backend{Name: "kvm"})
	err := adapter.StartVm(&proto.VM{Name: "vm1", Backend: "xen"})
	var backendError *errors.UnknownBackendError
	if !errors.As(err, &backendError) {
		t.Errorf("expected UnknownBackendError, got: %v", err)
	}
}

func TestMissingScriptIsNoop(t *testing.T) {
	adapter, store := makeAdapter(t, config.Backend{Name: "kvm"})
	vm := &proto.VM{Name: "vm1", Backend: "kvm", Image: "missing"}
	if err := adapter.CreateVm(vm); err != nil {
		t.Fatal(err)
	}
	if status, err := adapter.StatusVm(vm); err != nil {
		t.Fatal(err)
	} else if len(status) != 0 {
		t.Errorf("expected empty status, got: %v", status)
	}
	if store.vmWrites != 0 {
		t.Errorf("expected no writes, got: %d", store.vmWrites)
	}
}

func TestEmptyOutputDoesNotWrite(t *testing.T) {
	script := writeScript(t, t.TempDir(), "start", "exit 0")
	adapter, store := makeAdapter(t, config.Backend{
		Name: "kvm",
		VM:   config.BackendVM{Start: script},
	})
	vm := &proto.VM{
		Name:       "vm1",
		Backend:    "kvm",
		Parameters: map[string]string{"disk": "/a"},
	}
	if err := adapter.StartVm(vm); err != nil {
		t.Fatal(err)
	}
	if store.vmWrites != 0 {
		t.Errorf("expected no writes, got: %d", store.vmWrites)
	}
	if len(vm.Parameters) != 1 || vm.Parameters["disk"] != "/a" {
		t.Errorf("parameters changed: %v", vm.Parameters)
	}
}

func TestCreateVmMergesAndPersists(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "document")
	script := writeScript(t, dir, "create",
		`printf '%s' "$1" > `+output+`
echo disk /var/lib/olvm/vm1.qcow2
echo memory 1024`)
	adapter, store := makeAdapter(t, config.Backend{
		Name: "kvm",
		VM:   config.BackendVM{Create: script},
	})
	store.images["debian"] = proto.Image{
		Name:    "debian",
		Backend: "kvm",
		Node:    1,
		File:    "/var/lib/olvm/images/kvm/debian.image",
	}
	vm := &proto.VM{
		Name:       "vm1",
		Node:       1,
		Backend:    "kvm",
		Image:      "debian",
		Parameters: map[string]string{"memory": "512", "cpus": "2"},
	}
	if err := adapter.CreateVm(vm); err != nil {
		t.Fatal(err)
	}
	if store.vmWrites != 1 {
		t.Errorf("expected 1 write, got: %d", store.vmWrites)
	}
	stored := store.vms["vm1"]
	if stored.Parameters["memory"] != "1024" {
		t.Errorf("memory: expected: 1024, got: %s", stored.Parameters["memory"])
	}
	if stored.Parameters["cpus"] != "2" {
		t.Errorf("cpus: expected: 2, got: %s", stored.Parameters["cpus"])
	}
	if stored.Image != "debian" {
		t.Errorf("image reference changed to: %s", stored.Image)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	var document struct {
		Name  string      `json:"name"`
		Image proto.Image `json:"image"`
	}
	if err := json.Unmarshal(data, &document); err != nil {
		t.Fatalf("script argument: %s: %s", string(data), err)
	}
	if document.Name != "vm1" {
		t.Errorf("expected name: vm1, got: %s", document.Name)
	}
	if document.Image.File != "/var/lib/olvm/images/kvm/debian.image" {
		t.Errorf("image not embedded: %s", string(data))
	}
}

func TestCreateVmMissingImage(t *testing.T) {
	script := writeScript(t, t.TempDir(), "create", "exit 0")
	adapter, _ := makeAdapter(t, config.Backend{
		Name: "kvm",
		VM:   config.BackendVM{Create: script},
	})
	err := adapter.CreateVm(&proto.VM{Name: "vm1", Backend: "kvm",
		Image: "nope"})
	var notFoundError *errors.NotFoundError
	if !errors.As(err, &notFoundError) {
		t.Errorf("expected NotFoundError, got: %v", err)
	}
}

func TestCreateImage(t *testing.T) {
	script := writeScript(t, t.TempDir(), "create", "echo format qcow2")
	adapter, store := makeAdapter(t, config.Backend{
		Name:  "kvm",
		Image: config.BackendImage{Create: script},
	})
	image := &proto.Image{Name: "debian", Backend: "kvm", Node: 1}
	if err := adapter.CreateImage(image); err != nil {
		t.Fatal(err)
	}
	if store.imageWrites != 1 {
		t.Errorf("expected 1 write, got: %d", store.imageWrites)
	}
	if store.images["debian"].Parameters["format"] != "qcow2" {
		t.Errorf("parameters not persisted: %v", store.images["debian"])
	}
}

func TestStatusVmCoercion(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "status",
		"echo running true\necho paused false\necho pid 1234")
	adapter, store := makeAdapter(t, config.Backend{
		Name: "kvm",
		VM:   config.BackendVM{Status: script},
	})
	status, err := adapter.StatusVm(&proto.VM{Name: "vm1", Backend: "kvm"})
	if err != nil {
		t.Fatal(err)
	}
	if status["running"] != true {
		t.Errorf("running: expected: true, got: %v", status["running"])
	}
	if status["paused"] != false {
		t.Errorf("paused: expected: false, got: %v", status["paused"])
	}
	if status["pid"] != "1234" {
		t.Errorf("pid: expected: \"1234\", got: %v", status["pid"])
	}
	if store.vmWrites != 0 {
		t.Errorf("status persisted")
	}
	data, err := json.Marshal(status)
	if err != nil {
		t.Fatal(err)
	}
	expected := `{"paused":false,"pid":"1234","running":true}`
	if string(data) != expected {
		t.Errorf("expected: %s, got: %s", expected, string(data))
	}
}

func TestSnapshotDocument(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "document")
	script := writeScript(t, dir, "snapshot_create",
		`printf '%s' "$1" > `+output)
	adapter, _ := makeAdapter(t, config.Backend{
		Name: "kvm",
		VM:   config.BackendVM{SnapshotCreate: script},
	})
	vm := &proto.VM{Name: "vm1", Node: 1, Backend: "kvm"}
	err := adapter.CreateSnapshot(
		proto.Snapshot{Name: "before-upgrade", VM: "vm1", Node: 1}, vm)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	var document struct {
		Name string   `json:"name"`
		VM   proto.VM `json:"vm"`
	}
	if err := json.Unmarshal(data, &document); err != nil {
		t.Fatal(err)
	}
	if document.Name != "before-upgrade" || document.VM.Name != "vm1" {
		t.Errorf("unexpected snapshot document: %s", string(data))
	}
}
