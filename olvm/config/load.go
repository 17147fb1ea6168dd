package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const defaultControlTimeout = time.Minute

func load(filename string) (*Config, error) {
	var config Config
	meta, err := toml.DecodeFile(filename, &config)
	if err != nil {
		return nil, fmt.Errorf("error loading: %s: %w", filename, err)
	}
	if err := config.finish(meta); err != nil {
		return nil, fmt.Errorf("error validating: %s: %w", filename, err)
	}
	return &config, nil
}

func parse(data string) (*Config, error) {
	var config Config
	meta, err := toml.Decode(data, &config)
	if err != nil {
		return nil, err
	}
	if err := config.finish(meta); err != nil {
		return nil, err
	}
	return &config, nil
}

func parseDuration(name, value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if duration < 0 {
		return 0, fmt.Errorf("%s: negative duration: %s", name, value)
	}
	return duration, nil
}

func (c *Config) finish(meta toml.MetaData) error {
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown configuration key: %s", undecoded[0])
	}
	if c.Global.Node < 1 {
		return fmt.Errorf("global.node must be a positive integer")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if !meta.IsDefined("console", "enabled") {
		c.Console.Enabled = true
	}
	if c.Migration.SshPort == 0 {
		c.Migration.SshPort = 22
	}
	if c.Migration.SshUser == "" {
		c.Migration.SshUser = "root"
	}
	timeout, err := parseDuration("migration.timeout", c.Migration.Timeout)
	if err != nil {
		return err
	}
	c.Migration.timeout = timeout
	if c.Migration.ControlTimeoutText == "" {
		c.Migration.controlTimeout = defaultControlTimeout
	} else {
		timeout, err := parseDuration("migration.control_timeout",
			c.Migration.ControlTimeoutText)
		if err != nil {
			return err
		}
		if timeout == 0 {
			return fmt.Errorf("migration.control_timeout must be positive")
		}
		c.Migration.controlTimeout = timeout
	}
	names := make(map[string]struct{}, len(c.Backends))
	for index := range c.Backends {
		backend := &c.Backends[index]
		if backend.Name == "" {
			return fmt.Errorf("backend %d has no name", index)
		}
		if _, ok := names[backend.Name]; ok {
			return fmt.Errorf("duplicate backend: %s", backend.Name)
		}
		names[backend.Name] = struct{}{}
		if backend.ImagePath == "" {
			backend.ImagePath = filepath.Join("/var/lib/olvm/images",
				backend.Name)
		}
		timeout, err := parseDuration("backend."+backend.Name+".timeout",
			backend.Timeout)
		if err != nil {
			return err
		}
		backend.timeout = timeout
	}
	return nil
}
