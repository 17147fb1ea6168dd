package backend

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Cloud-Foundations/olvm/lib/errors"
)

func writeScript(t *testing.T, dir, name, body string) string {
	filename := filepath.Join(dir, name)
	err := os.WriteFile(filename, []byte("#!/bin/sh\n"+body+"\n"), 0755)
	if err != nil {
		t.Fatal(err)
	}
	return filename
}

func TestRunScriptOutput(t *testing.T) {
	script := writeScript(t, t.TempDir(), "create",
		`echo "disk /var/lib/olvm/vm1.qcow2"
echo
echo "id	42"
echo "id 43"`)
	params, err := RunScript(script, "{}")
	if err != nil {
		t.Fatal(err)
	}
	if len(params) != 2 {
		t.Errorf("expected 2 parameters, got: %v", params)
	}
	if params["disk"] != "/var/lib/olvm/vm1.qcow2" {
		t.Errorf("disk: expected: /var/lib/olvm/vm1.qcow2, got: %s",
			params["disk"])
	}
	if params["id"] != "43" {
		t.Errorf("id: expected: 43, got: %s", params["id"])
	}
}

func TestRunScriptArgument(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "argument")
	script := writeScript(t, dir, "start", `printf '%s' "$1" > `+output)
	if _, err := RunScript(script, `{"name": "vm1"}`); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"name": "vm1"}` {
		t.Errorf("expected: {\"name\": \"vm1\"}, got: %s", string(data))
	}
}

func TestRunScriptEmptyOutput(t *testing.T) {
	script := writeScript(t, t.TempDir(), "stop", "exit 0")
	params, err := RunScript(script, "{}")
	if err != nil {
		t.Fatal(err)
	}
	if params == nil || len(params) != 0 {
		t.Errorf("expected empty map, got: %v", params)
	}
}

func TestRunScriptFailure(t *testing.T) {
	script := writeScript(t, t.TempDir(), "create",
		"echo ignored\necho 'disk full' >&2\nexit 1")
	_, err := RunScript(script, "{}")
	var scriptError *errors.BackendScriptFailedError
	if !errors.As(err, &scriptError) {
		t.Fatalf("expected BackendScriptFailedError, got: %v", err)
	}
	if scriptError.Stderr != "disk full" {
		t.Errorf("expected: \"disk full\", got: %q", scriptError.Stderr)
	}
	if !strings.Contains(err.Error(), "disk full") {
		t.Errorf("error does not mention stderr: %s", err)
	}
}

func TestRunScriptBadOutput(t *testing.T) {
	for _, line := range []string{"lonely", "disk"} {
		script := writeScript(t, t.TempDir(), "create", "echo "+line)
		_, err := RunScript(script, "{}")
		var protocolError *errors.BackendProtocolError
		if !errors.As(err, &protocolError) {
			t.Errorf("%s: expected BackendProtocolError, got: %v", line, err)
		} else if protocolError.Line != line {
			t.Errorf("expected line: %s, got: %s", line, protocolError.Line)
		}
	}
}

func TestRunScriptExtraTokens(t *testing.T) {
	script := writeScript(t, t.TempDir(), "create",
		"echo 'disk /var/lib/olvm/vm1.qcow2 extra tokens'\necho 'state running'")
	params, err := RunScript(script, "{}")
	if err != nil {
		t.Fatal(err)
	}
	if params["disk"] != "/var/lib/olvm/vm1.qcow2" {
		t.Errorf("expected: /var/lib/olvm/vm1.qcow2, got: %s", params["disk"])
	}
	if params["state"] != "running" {
		t.Errorf("expected: running, got: %s", params["state"])
	}
	if len(params) != 2 {
		t.Errorf("expected: 2 parameters, got: %v", params)
	}
}

func TestRunScriptMissing(t *testing.T) {
	_, err := RunScript(filepath.Join(t.TempDir(), "missing"), "{}")
	var scriptError *errors.BackendScriptFailedError
	if !errors.As(err, &scriptError) {
		t.Errorf("expected BackendScriptFailedError, got: %v", err)
	}
}

func TestRunScriptTimeout(t *testing.T) {
	script := writeScript(t, t.TempDir(), "status", "exec sleep 10")
	startTime := time.Now()
	_, err := RunScriptWithTimeout(script, "{}", 100*time.Millisecond)
	var scriptError *errors.BackendScriptFailedError
	if !errors.As(err, &scriptError) {
		t.Fatalf("expected BackendScriptFailedError, got: %v", err)
	}
	if !strings.Contains(scriptError.Stderr, "timed out") {
		t.Errorf("expected timeout message, got: %s", scriptError.Stderr)
	}
	if elapsed := time.Since(startTime); elapsed > 5*time.Second {
		t.Errorf("script not killed, took: %s", elapsed)
	}
}
