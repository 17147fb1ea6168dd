package backend

import (
	"encoding/json"

	"github.com/Cloud-Foundations/olvm/lib/errors"
	"github.com/Cloud-Foundations/olvm/lib/log"
	"github.com/Cloud-Foundations/olvm/olvm/config"
	proto "github.com/Cloud-Foundations/olvm/proto/olvm"
)

// vmDocument is what VM scripts receive: the VM with its image resolved.
type vmDocument struct {
	proto.VM
	Image *proto.Image `json:"image,omitempty"`
}

type snapshotDocument struct {
	Name string     `json:"name"`
	VM   vmDocument `json:"vm"`
}

func newAdapter(backends []config.Backend, store Store,
	logger log.DebugLogger) *Adapter {
	a := &Adapter{
		backends: make(map[string]*config.Backend, len(backends)),
		logger:   logger,
		store:    store,
	}
	for index := range backends {
		backend := &backends[index]
		a.backends[backend.Name] = backend
	}
	return a
}

func (a *Adapter) getBackend(name string) (*config.Backend, error) {
	if backend, ok := a.backends[name]; ok {
		return backend, nil
	}
	return nil, errors.NewUnknownBackendError(name)
}

func (a *Adapter) run(backend *config.Backend, verb, name, script string,
	document interface{}) (map[string]string, error) {
	argument, err := json.Marshal(document)
	if err != nil {
		return nil, err
	}
	a.logger.Debugf(1, "running %s script: %s for: %s\n", verb, script, name)
	params, err := runScript(script, string(argument), backend.ScriptTimeout())
	if err != nil {
		return nil, err
	}
	a.logger.Debugf(2, "%s script for: %s returned %d parameters\n",
		verb, name, len(params))
	return params, nil
}

func (a *Adapter) imageVerb(image *proto.Image, verb string,
	getScript func(*config.Backend) string) error {
	backend, err := a.getBackend(image.Backend)
	if err != nil {
		return err
	}
	script := getScript(backend)
	if script == "" {
		return nil
	}
	params, err := a.run(backend, verb, image.Name, script, image)
	if err != nil {
		return err
	}
	if len(params) < 1 {
		return nil
	}
	image.MergeParameters(params)
	return a.store.UpdateImage(*image)
}

func (a *Adapter) makeVmDocument(vm *proto.VM) (vmDocument, error) {
	document := vmDocument{VM: *vm}
	if vm.Image != "" {
		image, err := a.store.GetImage(vm.Image, vm.Node)
		if err != nil {
			return vmDocument{}, err
		}
		document.Image = &image
	}
	return document, nil
}

func (a *Adapter) runVm(vm *proto.VM, verb string,
	getScript func(*config.Backend) string,
	makeDocument func(vmDocument) interface{}) (map[string]string, error) {
	backend, err := a.getBackend(vm.Backend)
	if err != nil {
		return nil, err
	}
	script := getScript(backend)
	if script == "" {
		return nil, nil
	}
	document, err := a.makeVmDocument(vm)
	if err != nil {
		return nil, err
	}
	return a.run(backend, verb, vm.Name, script, makeDocument(document))
}

func (a *Adapter) mergeVm(vm *proto.VM, params map[string]string) error {
	if len(params) < 1 {
		return nil
	}
	vm.MergeParameters(params)
	return a.store.UpdateVm(*vm)
}

func (a *Adapter) vmVerb(vm *proto.VM, verb string,
	getScript func(*config.Backend) string) error {
	params, err := a.runVm(vm, verb, getScript,
		func(document vmDocument) interface{} { return document })
	if err != nil {
		return err
	}
	return a.mergeVm(vm, params)
}

func (a *Adapter) snapshotVerb(snapshot proto.Snapshot, vm *proto.VM,
	verb string, getScript func(*config.Backend) string) error {
	params, err := a.runVm(vm, verb, getScript,
		func(document vmDocument) interface{} {
			return snapshotDocument{Name: snapshot.Name, VM: document}
		})
	if err != nil {
		return err
	}
	return a.mergeVm(vm, params)
}

func (a *Adapter) statusVm(vm *proto.VM) (map[string]interface{}, error) {
	params, err := a.runVm(vm, "status",
		func(b *config.Backend) string { return b.VM.Status },
		func(document vmDocument) interface{} { return document })
	if err != nil {
		return nil, err
	}
	status := make(map[string]interface{}, len(params))
	for key, value := range params {
		switch value {
		case "true":
			status[key] = true
		case "false":
			status[key] = false
		default:
			status[key] = value
		}
	}
	return status, nil
}
