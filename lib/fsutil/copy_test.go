package fsutil

import (
	"os"
	"path/filepath"
	"testing"
)

type fakeReader struct{}

func TestCopyFileExclusiveContents(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "disk.qcow2")
	dest := filepath.Join(dir, "copy.qcow2")
	if err := os.WriteFile(source, []byte("qcow2 bytes"), 0640); err != nil {
		t.Fatal(err)
	}
	if err := CopyFileExclusive(dest, source, 0); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "qcow2 bytes" {
		t.Errorf("expected: \"qcow2 bytes\", got: %q", string(data))
	}
	if fi, err := os.Stat(dest); err != nil {
		t.Fatal(err)
	} else if fi.Mode().Perm() != 0640 {
		t.Errorf("expected mode: 0640, got: %o", fi.Mode().Perm())
	}
	if _, err := os.Stat(dest + "~"); !os.IsNotExist(err) {
		t.Errorf("temporary file left behind")
	}
}

func TestCopyFileMissingSource(t *testing.T) {
	dir := t.TempDir()
	err := CopyFileExclusive(filepath.Join(dir, "dest"),
		filepath.Join(dir, "nope"), 0)
	if err == nil {
		t.Fatal("copy of missing file did not fail")
	}
	if _, err := os.Stat(filepath.Join(dir, "dest")); !os.IsNotExist(err) {
		t.Errorf("destination created for missing source")
	}
}

func TestCopyFileExclusive(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "source")
	dest := filepath.Join(dir, "dest")
	if err := os.WriteFile(source, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := CopyFileExclusive(dest, source, 0); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(source, []byte("y"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := CopyFileExclusive(dest, source, 0); !os.IsExist(err) {
		t.Errorf("expected exists error, got: %v", err)
	}
	if data, err := os.ReadFile(dest); err != nil {
		t.Fatal(err)
	} else if string(data) != "x" {
		t.Errorf("destination overwritten with: %q", string(data))
	}
}

func TestCopyToFileExclusive(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "testfile")
	numConcurrent := 100
	errorChannel := make(chan error, numConcurrent)
	for index := 0; index < numConcurrent; index++ {
		go func() {
			errorChannel <- copyToFileExclusive(filename, PublicFilePerms,
				&fakeReader{}, 3900)
		}()
	}
	var numCreated, numAlreadyExists int
	for index := 0; index < numConcurrent; index++ {
		if err := <-errorChannel; err == nil {
			numCreated++
		} else if os.IsExist(err) {
			numAlreadyExists++
		} else {
			t.Error(err)
		}
	}
	if numCreated != 1 {
		t.Errorf("numCreated: %d != 1", numCreated)
	}
	if numAlreadyExists != numConcurrent-1 {
		t.Errorf("numAlreadyExists: %d != %d",
			numAlreadyExists, numConcurrent-1)
	}
}

func TestForceRemove(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "file")
	if err := ForceRemove(filename); err != nil {
		t.Errorf("removing missing file: %s", err)
	}
	if err := os.WriteFile(filename, nil, 0600); err != nil {
		t.Fatal(err)
	}
	if err := ForceRemove(filename); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filename); !os.IsNotExist(err) {
		t.Errorf("file not removed")
	}
}

func (r *fakeReader) Read(p []byte) (int, error) {
	return len(p), nil
}
