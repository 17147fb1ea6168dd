package manager

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/Cloud-Foundations/olvm/lib/errors"
	proto "github.com/Cloud-Foundations/olvm/proto/olvm"
)

type commandFunc func(m *Manager, payload string) (interface{}, error)

var commands = map[string]commandFunc{
	"status": func(m *Manager, payload string) (interface{}, error) {
		return m.getStatus()
	},

	"createimg": jsonCommand(func(m *Manager, image proto.Image) (
		interface{}, error) {
		return m.createImage(image)
	}),
	"delimg": nameCommand(func(m *Manager, name string) (interface{}, error) {
		return nil, m.deleteImage(name)
	}),
	"getimg": nameCommand(func(m *Manager, name string) (interface{}, error) {
		return m.GetImage(name)
	}),
	"listimg": func(m *Manager, payload string) (interface{}, error) {
		return m.ListImages()
	},
	"updateimg": jsonCommand(func(m *Manager, image proto.Image) (
		interface{}, error) {
		return m.updateImage(image)
	}),

	"createvm": jsonCommand(func(m *Manager, vm proto.VM) (interface{},
		error) {
		return m.createVm(vm)
	}),
	"delvm": nameCommand(func(m *Manager, name string) (interface{}, error) {
		return nil, m.deleteVm(name)
	}),
	"getvm": nameCommand(func(m *Manager, name string) (interface{}, error) {
		return m.GetVm(name)
	}),
	"listvm": func(m *Manager, payload string) (interface{}, error) {
		return m.ListVMs()
	},
	"migratevm": jsonCommand(func(m *Manager,
		request proto.MigrateRequest) (interface{}, error) {
		return nil, m.migrateVm(request)
	}),
	"startvm": nameCommand(func(m *Manager, name string) (interface{}, error) {
		return nil, m.startVm(name)
	}),
	"statusvm": nameCommand(func(m *Manager, name string) (interface{},
		error) {
		return m.getVmStatus(name)
	}),
	"stopvm": nameCommand(func(m *Manager, name string) (interface{}, error) {
		return nil, m.stopVm(name)
	}),
	"updatevm": jsonCommand(func(m *Manager, vm proto.VM) (interface{},
		error) {
		return m.updateVm(vm)
	}),

	"createnet": jsonCommand(func(m *Manager, network proto.Network) (
		interface{}, error) {
		return m.createNetwork(network)
	}),
	"delnet": nameCommand(func(m *Manager, name string) (interface{}, error) {
		return nil, m.deleteNetwork(name)
	}),
	"getnet": nameCommand(func(m *Manager, name string) (interface{}, error) {
		return m.GetNetwork(name)
	}),
	"listnet": func(m *Manager, payload string) (interface{}, error) {
		return m.ListNetworks()
	},
	"updatenet": jsonCommand(func(m *Manager, network proto.Network) (
		interface{}, error) {
		return m.updateNetwork(network)
	}),

	"createsnap": jsonCommand(func(m *Manager, snapshot proto.Snapshot) (
		interface{}, error) {
		return m.createSnapshot(snapshot)
	}),
	"delsnap": jsonCommand(func(m *Manager, snapshot proto.Snapshot) (
		interface{}, error) {
		return nil, m.deleteSnapshot(snapshot)
	}),
	"listsnap": nameCommand(func(m *Manager, vmName string) (interface{},
		error) {
		return m.listSnapshots(vmName)
	}),
	"restoresnap": jsonCommand(func(m *Manager, snapshot proto.Snapshot) (
		interface{}, error) {
		return nil, m.restoreSnapshot(snapshot)
	}),
}

// decodePayload decodes a JSON object, rejecting trailing data. Unknown fields
// are ignored.
func decodePayload(payload string, value interface{}) error {
	if strings.TrimSpace(payload) == "" {
		return errors.NewValidationError("payload", "JSON object required")
	}
	decoder := json.NewDecoder(strings.NewReader(payload))
	if err := decoder.Decode(value); err != nil {
		return errors.NewValidationError("payload", err.Error())
	}
	if decoder.More() {
		return errors.NewValidationError("payload", "trailing data")
	}
	return nil
}

func jsonCommand[T any](fn func(m *Manager, value T) (interface{},
	error)) commandFunc {
	return func(m *Manager, payload string) (interface{}, error) {
		var value T
		if err := decodePayload(payload, &value); err != nil {
			return nil, err
		}
		return fn(m, value)
	}
}

// nameCommand accepts a bare name or a JSON string.
func nameCommand(fn func(m *Manager, name string) (interface{},
	error)) commandFunc {
	return func(m *Manager, payload string) (interface{}, error) {
		name := strings.TrimSpace(payload)
		if strings.HasPrefix(name, `"`) {
			if err := json.Unmarshal([]byte(name), &name); err != nil {
				return nil, errors.NewValidationError("name", err.Error())
			}
		}
		if name == "" {
			return nil, errors.NewValidationError("name", "required")
		}
		return fn(m, name)
	}
}

func encodeResult(result interface{}) (string, error) {
	if result == nil {
		return "", nil
	}
	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(result); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buffer.String(), "\n"), nil
}

func (m *Manager) dispatch(client, command, payload string) (string, error) {
	fn, ok := commands[command]
	if !ok {
		numDispatchErrors.Add(1)
		m.logger.Printf("%s: unknown command: %q\n", client, command)
		return "", errors.NewUnknownCommandError(command)
	}
	m.logger.Debugf(1, "%s: %s %s\n", client, command, payload)
	startTime := time.Now()
	result, err := fn(m, payload)
	if err == nil {
		var encoded string
		encoded, err = encodeResult(result)
		if err == nil {
			dispatchDistributions[command].Add(time.Since(startTime))
			return encoded, nil
		}
	}
	dispatchDistributions[command].Add(time.Since(startTime))
	numDispatchErrors.Add(1)
	m.logger.Printf("%s: %s: %s\n", client, command, err)
	return "", err
}
