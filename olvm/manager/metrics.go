package manager

import (
	"sync/atomic"

	"github.com/Cloud-Foundations/tricorder/go/tricorder"
	"github.com/Cloud-Foundations/tricorder/go/tricorder/units"
)

var (
	dispatchDistributions = make(map[string]*tricorder.CumulativeDistribution)
	numDispatchErrors     atomic.Uint64
)

func init() {
	dir, err := tricorder.RegisterDirectory("/dispatch")
	if err != nil {
		panic(err)
	}
	latencyBucketer := tricorder.NewGeometricBucketer(0.1, 1e6)
	for command := range commands {
		distribution := latencyBucketer.NewCumulativeDistribution()
		if err := dir.RegisterMetric(command+"/latency", distribution,
			units.Millisecond, "time to run "+command); err != nil {
			panic(err)
		}
		dispatchDistributions[command] = distribution
	}
	if err := dir.RegisterMetric("num-errors", numDispatchErrors.Load,
		units.None, "number of commands which failed"); err != nil {
		panic(err)
	}
}

func (m *Manager) registerMetrics() error {
	dir, err := tricorder.RegisterDirectory("/inventory")
	if err != nil {
		return err
	}
	countImages := func() uint {
		images, err := m.store.ListImages(m.node)
		if err != nil {
			return 0
		}
		return uint(len(images))
	}
	if err := dir.RegisterMetric("num-images", countImages, units.None,
		"number of images"); err != nil {
		return err
	}
	countVMs := func() uint {
		vms, err := m.store.ListVMs(m.node)
		if err != nil {
			return 0
		}
		return uint(len(vms))
	}
	return dir.RegisterMetric("num-vms", countVMs, units.None,
		"number of VMs")
}
