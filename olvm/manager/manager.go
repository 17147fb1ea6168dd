package manager

import (
	"errors"

	"github.com/Cloud-Foundations/olvm/lib/log/prefixlogger"
	"github.com/Cloud-Foundations/olvm/lib/meminfo"
)

func newManager(startOptions StartOptions) (*Manager, error) {
	if startOptions.Config == nil {
		return nil, errors.New("no configuration")
	}
	if startOptions.Store == nil {
		return nil, errors.New("no store")
	}
	if startOptions.Backend == nil {
		return nil, errors.New("no backend")
	}
	if startOptions.Provisioner == nil {
		return nil, errors.New("no network provisioner")
	}
	m := &Manager{
		backend:       startOptions.Backend,
		config:        startOptions.Config,
		controlClient: startOptions.ControlClient,
		fileCopier:    startOptions.FileCopier,
		logger:        startOptions.Logger,
		node:          startOptions.Config.Global.Node,
		provisioner:   startOptions.Provisioner,
		readCpuStats:  readProcStat,
		readMemInfo:   meminfo.GetMemInfo,
		store:         startOptions.Store,
	}
	return m, nil
}

// migrationLogger returns a logger for migration messages.
func (m *Manager) migrationLogger() *prefixlogger.Logger {
	return prefixlogger.New("migrate: ", m.logger)
}
