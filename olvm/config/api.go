package config

import (
	"time"
)

const DefaultConfigFile = "/etc/olvm/olvm.toml"

type Global struct {
	Node uint `toml:"node"`
}

type Database struct {
	Path string `toml:"path"`
}

type Listener struct {
	Addr string `toml:"addr"`
}

type Console struct {
	Enabled bool `toml:"enabled"`
}

type Dhcp struct {
	Enabled  bool   `toml:"enabled"`
	ServerIP string `toml:"server_ip"`
}

type Migration struct {
	ControlTimeoutText string `toml:"control_timeout"`
	KnownHosts         string `toml:"known_hosts"`
	SshUser            string `toml:"ssh_user"`
	SshKey             string `toml:"ssh_key"`
	SshPort            uint   `toml:"ssh_port"`
	Timeout            string `toml:"timeout"`
	controlTimeout     time.Duration
	timeout            time.Duration
}

// BackendImage holds the optional script paths for image verbs. An empty path
// means the verb is a no-op.
type BackendImage struct {
	Create string `toml:"create"`
	Delete string `toml:"delete"`
}

// BackendVM holds the optional script paths for VM verbs. An empty path means
// the verb is a no-op.
type BackendVM struct {
	Create          string `toml:"create"`
	Start           string `toml:"start"`
	Stop            string `toml:"stop"`
	Delete          string `toml:"delete"`
	Status          string `toml:"status"`
	SnapshotCreate  string `toml:"snapshot_create"`
	SnapshotRestore string `toml:"snapshot_restore"`
	SnapshotDelete  string `toml:"snapshot_delete"`
}

type Backend struct {
	Name      string       `toml:"name"`
	ImagePath string       `toml:"image_path"`
	Timeout   string       `toml:"timeout"`
	Image     BackendImage `toml:"image"`
	VM        BackendVM    `toml:"vm"`
	timeout   time.Duration
}

type Config struct {
	Global    Global    `toml:"global"`
	Database  Database  `toml:"database"`
	UDP       *Listener `toml:"udp"`
	HTTP      *Listener `toml:"http"`
	Console   Console   `toml:"console"`
	Dhcp      Dhcp      `toml:"dhcp"`
	Migration Migration `toml:"migration"`
	Backends  []Backend `toml:"backend"`
}

// Load will read and validate the TOML configuration file.
func Load(filename string) (*Config, error) {
	return load(filename)
}

// Parse will decode and validate TOML configuration data.
func Parse(data string) (*Config, error) {
	return parse(data)
}

// GetBackend returns the backend configuration with the specified name, or
// nil if there is none.
func (c *Config) GetBackend(name string) *Backend {
	for index := range c.Backends {
		if c.Backends[index].Name == name {
			return &c.Backends[index]
		}
	}
	return nil
}

// ScriptTimeout returns the maximum run time for scripts of this backend. Zero
// means no limit.
func (b *Backend) ScriptTimeout() time.Duration {
	return b.timeout
}

// CopyTimeout returns the maximum time for a migration step. Zero means no
// limit.
func (m *Migration) CopyTimeout() time.Duration {
	return m.timeout
}

// ControlTimeout returns the time to wait for a reply from a peer node. It is
// never zero.
func (m *Migration) ControlTimeout() time.Duration {
	return m.controlTimeout
}
