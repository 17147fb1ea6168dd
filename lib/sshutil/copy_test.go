package sshutil

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/Cloud-Foundations/olvm/lib/log/testlogger"
	"golang.org/x/crypto/ssh"
)

type execRequest struct {
	Command string
}

type received struct {
	command string
	data    []byte
	user    string
}

func TestShellQuote(t *testing.T) {
	for input, expected := range map[string]string{
		"/var/lib/olvm/vm1.qcow2": "'/var/lib/olvm/vm1.qcow2'",
		"it's":                    `'it'\''s'`,
		"":                        "''",
	} {
		if got := shellQuote(input); got != expected {
			t.Errorf("%q: expected: %s, got: %s", input, expected, got)
		}
	}
}

func TestMakeCopyCommand(t *testing.T) {
	expected := "mkdir -p '/srv/disks' && cat > '/srv/disks/vm1.qcow2~' && " +
		"mv '/srv/disks/vm1.qcow2~' '/srv/disks/vm1.qcow2'"
	if got := makeCopyCommand("/srv/disks/vm1.qcow2"); got != expected {
		t.Errorf("expected: %s, got: %s", expected, got)
	}
}

func TestNewFileCopierErrors(t *testing.T) {
	if _, err := NewFileCopier(FileCopierParams{KeyFile: "/x"}); err == nil {
		t.Error("missing user not detected")
	}
	if _, err := NewFileCopier(FileCopierParams{User: "root"}); err == nil {
		t.Error("missing key not detected")
	}
	keyFile := filepath.Join(t.TempDir(), "id")
	if err := os.WriteFile(keyFile, []byte("garbage"), 0600); err != nil {
		t.Fatal(err)
	}
	_, err := NewFileCopier(FileCopierParams{User: "root", KeyFile: keyFile})
	if err == nil {
		t.Error("bad key not detected")
	}
}

func writeKey(t *testing.T) (string, ssh.PublicKey) {
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	block, err := ssh.MarshalPrivateKey(privateKey, "")
	if err != nil {
		t.Fatal(err)
	}
	filename := filepath.Join(t.TempDir(), "id_ed25519")
	if err := os.WriteFile(filename, pem.EncodeToMemory(block), 0600); err != nil {
		t.Fatal(err)
	}
	sshPublicKey, err := ssh.NewPublicKey(publicKey)
	if err != nil {
		t.Fatal(err)
	}
	return filename, sshPublicKey
}

// serveOne accepts a single SSH connection and records the first command
// run on it along with its stdin.
func serveOne(t *testing.T, listener net.Listener, clientKey ssh.PublicKey,
	result chan<- received) {
	_, hostKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Error(err)
		return
	}
	hostSigner, err := ssh.NewSignerFromKey(hostKey)
	if err != nil {
		t.Error(err)
		return
	}
	config := &ssh.ServerConfig{
		PublicKeyCallback: func(conn ssh.ConnMetadata,
			key ssh.PublicKey) (*ssh.Permissions, error) {
			if string(key.Marshal()) != string(clientKey.Marshal()) {
				return nil, io.EOF
			}
			return nil, nil
		},
	}
	config.AddHostKey(hostSigner)
	conn, err := listener.Accept()
	if err != nil {
		t.Error(err)
		return
	}
	defer conn.Close()
	serverConn, channels, requests, err := ssh.NewServerConn(conn, config)
	if err != nil {
		t.Error(err)
		return
	}
	defer serverConn.Close()
	go ssh.DiscardRequests(requests)
	for newChannel := range channels {
		if newChannel.ChannelType() != "session" {
			newChannel.Reject(ssh.UnknownChannelType, "unsupported")
			continue
		}
		channel, channelRequests, err := newChannel.Accept()
		if err != nil {
			t.Error(err)
			return
		}
		for request := range channelRequests {
			if request.Type != "exec" {
				request.Reply(false, nil)
				continue
			}
			var exec execRequest
			if err := ssh.Unmarshal(request.Payload, &exec); err != nil {
				t.Error(err)
				return
			}
			request.Reply(true, nil)
			data, err := io.ReadAll(channel)
			if err != nil {
				t.Error(err)
			}
			channel.SendRequest("exit-status", false,
				ssh.Marshal(struct{ Status uint32 }{0}))
			channel.Close()
			result <- received{
				command: exec.Command,
				data:    data,
				user:    serverConn.User(),
			}
			return
		}
	}
}

func TestCopyFile(t *testing.T) {
	keyFile, publicKey := writeKey(t)
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer listener.Close()
	result := make(chan received, 1)
	go serveOne(t, listener, publicKey, result)
	port := listener.Addr().(*net.TCPAddr).Port
	copier, err := NewFileCopier(FileCopierParams{
		KeyFile: keyFile,
		Logger:  testlogger.New(t),
		Port:    uint(port),
		User:    "olvm",
	})
	if err != nil {
		t.Fatal(err)
	}
	disk := filepath.Join(t.TempDir(), "vm1.qcow2")
	if err := os.WriteFile(disk, []byte("disk contents"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := copier.CopyFile("127.0.0.1", disk); err != nil {
		t.Fatal(err)
	}
	got := <-result
	if got.user != "olvm" {
		t.Errorf("expected user: olvm, got: %s", got.user)
	}
	if got.command != makeCopyCommand(disk) {
		t.Errorf("expected command: %s, got: %s",
			makeCopyCommand(disk), got.command)
	}
	if string(got.data) != "disk contents" {
		t.Errorf("expected: \"disk contents\", got: %q", string(got.data))
	}
}

func TestCopyRelativePath(t *testing.T) {
	keyFile, _ := writeKey(t)
	copier, err := NewFileCopier(FileCopierParams{
		KeyFile: keyFile,
		Logger:  testlogger.New(t),
		User:    "root",
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := copier.CopyFile("127.0.0.1", "disk.qcow2"); err == nil {
		t.Error("relative path accepted")
	}
}
