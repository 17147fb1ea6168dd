package olvm

const (
	// MaxVmNameLength bounds VM names so that derived TAP device names fit
	// within the kernel interface name limit.
	MaxVmNameLength = 11
)

type Image struct {
	Name       string            `json:"name"`
	Backend    string            `json:"backend"`
	Node       uint              `json:"node"`
	File       string            `json:"file"`
	Parameters map[string]string `json:"parameters,omitempty"`
}

// Interface is a VM network interface. The position of an Interface within
// VM.Interfaces determines the name of its TAP device.
type Interface struct {
	Network string `json:"network"`
	MAC     string `json:"mac,omitempty"`
	IP      string `json:"ip,omitempty"`
}

type VM struct {
	Name       string            `json:"name"`
	Node       uint              `json:"node"`
	Backend    string            `json:"backend"`
	Image      string            `json:"image,omitempty"`
	Interfaces []Interface       `json:"interfaces,omitempty"`
	Parameters map[string]string `json:"parameters,omitempty"`
}

type Network struct {
	Name      string   `json:"name"`
	Node      uint     `json:"node"`
	CIDR      string   `json:"cidr,omitempty"`
	Bridge    string   `json:"bridge,omitempty"`
	Router    string   `json:"router,omitempty"`
	DNS       []string `json:"dns,omitempty"`
	Interface string   `json:"interface,omitempty"`
}

// Snapshot records that a backend snapshot artifact Name exists for VM.
type Snapshot struct {
	Name string `json:"name"`
	VM   string `json:"vm"`
	Node uint   `json:"node"`
}

type MemoryStatus struct {
	Used  float64 `json:"used"`
	Total float64 `json:"total"`
}

// Status is the reply to the status command.
type Status struct {
	Node   uint         `json:"node"`
	CPU    float64      `json:"cpu"`
	Memory MemoryStatus `json:"memory"`
}

type MigrateRequest struct {
	Name        string `json:"name"`
	Destination string `json:"destination"`
}

// MergeParameters copies params into the VM parameters, overwriting existing
// keys.
func (vm *VM) MergeParameters(params map[string]string) {
	vm.Parameters = mergeParameters(vm.Parameters, params)
}

func (image *Image) MergeParameters(params map[string]string) {
	image.Parameters = mergeParameters(image.Parameters, params)
}

func mergeParameters(dest, source map[string]string) map[string]string {
	if len(source) < 1 {
		return dest
	}
	if dest == nil {
		dest = make(map[string]string, len(source))
	}
	for key, value := range source {
		dest[key] = value
	}
	return dest
}
