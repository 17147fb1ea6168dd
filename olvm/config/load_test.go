package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const goodConfig = `
[global]
node = 2

[database]
path = "/var/lib/olvm/olvm.db"

[udp]
addr = "0.0.0.0:1997"

[dhcp]
enabled = true

[migration]
known_hosts = "/etc/olvm/known_hosts"
ssh_key = "/etc/olvm/id_ed25519"
timeout = "10m"

[[backend]]
name = "kvm"
timeout = "30s"

[backend.image]
create = "/usr/lib/olvm/kvm/image/create"

[backend.vm]
create = "/usr/lib/olvm/kvm/vm/create"
status = "/usr/lib/olvm/kvm/vm/status"

[[backend]]
name = "lxc"
image_path = "/srv/lxc"
`

func TestParseGood(t *testing.T) {
	config, err := Parse(goodConfig)
	if err != nil {
		t.Fatal(err)
	}
	if config.Global.Node != 2 {
		t.Errorf("node: expected: 2, got: %d", config.Global.Node)
	}
	if config.UDP == nil || config.UDP.Addr != "0.0.0.0:1997" {
		t.Errorf("unexpected UDP config: %+v", config.UDP)
	}
	if config.HTTP != nil {
		t.Errorf("expected no HTTP config, got: %+v", config.HTTP)
	}
	if !config.Console.Enabled {
		t.Error("console should default to enabled")
	}
	if config.Migration.SshPort != 22 || config.Migration.SshUser != "root" {
		t.Errorf("unexpected migration defaults: %+v", config.Migration)
	}
	if config.Migration.KnownHosts != "/etc/olvm/known_hosts" {
		t.Errorf("known_hosts: %s", config.Migration.KnownHosts)
	}
	if config.Migration.CopyTimeout() != 10*time.Minute {
		t.Errorf("migration timeout: %s", config.Migration.CopyTimeout())
	}
	if config.Migration.ControlTimeout() != time.Minute {
		t.Errorf("control timeout: expected: 1m0s, got: %s",
			config.Migration.ControlTimeout())
	}
	kvm := config.GetBackend("kvm")
	if kvm == nil {
		t.Fatal("kvm backend not found")
	}
	if kvm.VM.Create != "/usr/lib/olvm/kvm/vm/create" {
		t.Errorf("unexpected create script: %s", kvm.VM.Create)
	}
	if kvm.VM.Start != "" {
		t.Errorf("expected no start script, got: %s", kvm.VM.Start)
	}
	if kvm.ImagePath != "/var/lib/olvm/images/kvm" {
		t.Errorf("unexpected default image path: %s", kvm.ImagePath)
	}
	if kvm.ScriptTimeout() != 30*time.Second {
		t.Errorf("script timeout: %s", kvm.ScriptTimeout())
	}
	lxc := config.GetBackend("lxc")
	if lxc == nil || lxc.ImagePath != "/srv/lxc" {
		t.Errorf("unexpected lxc backend: %+v", lxc)
	}
	if lxc.ScriptTimeout() != 0 {
		t.Errorf("expected no lxc timeout, got: %s", lxc.ScriptTimeout())
	}
	if config.GetBackend("xen") != nil {
		t.Error("unexpected xen backend")
	}
}

func TestParseBad(t *testing.T) {
	badConfigs := map[string]string{
		"no node":      "[database]\npath = \"/x\"\n",
		"no database":  "[global]\nnode = 1\n",
		"unknown key":  "[global]\nnode = 1\nbogus = 2\n[database]\npath = \"/x\"\n",
		"dup backend":  "[global]\nnode = 1\n[database]\npath = \"/x\"\n[[backend]]\nname = \"a\"\n[[backend]]\nname = \"a\"\n",
		"bad timeout":  "[global]\nnode = 1\n[database]\npath = \"/x\"\n[[backend]]\nname = \"a\"\ntimeout = \"soon\"\n",
		"unnamed":      "[global]\nnode = 1\n[database]\npath = \"/x\"\n[[backend]]\nimage_path = \"/y\"\n",
		"syntax error": "[global\n",
		"zero control": "[global]\nnode = 1\n[database]\npath = \"/x\"\n[migration]\ncontrol_timeout = \"0s\"\n",
	}
	for name, data := range badConfigs {
		if _, err := Parse(data); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestParseControlTimeout(t *testing.T) {
	config, err := Parse("[global]\nnode = 1\n[database]\npath = \"/x\"\n" +
		"[migration]\ncontrol_timeout = \"5s\"\n")
	if err != nil {
		t.Fatal(err)
	}
	if got := config.Migration.ControlTimeout(); got != 5*time.Second {
		t.Errorf("expected: 5s, got: %s", got)
	}
	if got := config.Migration.CopyTimeout(); got != 0 {
		t.Errorf("expected no copy timeout, got: %s", got)
	}
}

func TestLoadFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "olvm.toml")
	if err := os.WriteFile(filename, []byte(goodConfig), 0644); err != nil {
		t.Fatal(err)
	}
	config, err := Load(filename)
	if err != nil {
		t.Fatal(err)
	}
	if len(config.Backends) != 2 {
		t.Errorf("expected 2 backends, got: %d", len(config.Backends))
	}
	if _, err := Load(filename + ".missing"); err == nil {
		t.Error("expected error loading missing file")
	}
}
