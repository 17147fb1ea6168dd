package sshutil

import (
	"time"

	"github.com/Cloud-Foundations/olvm/lib/log"
	"golang.org/x/crypto/ssh"
)

// FileCopier copies local files to the same path on remote hosts over SSH.
type FileCopier struct {
	config  *ssh.ClientConfig
	logger  log.DebugLogger
	port    uint
	timeout time.Duration
}

type FileCopierParams struct {
	KeyFile        string // Private key used to authenticate.
	KnownHostsFile string // If empty, host keys are not checked.
	Logger         log.DebugLogger
	Port           uint
	Timeout        time.Duration // Zero means no limit on the copy.
	User           string
}

func NewFileCopier(params FileCopierParams) (*FileCopier, error) {
	return newFileCopier(params)
}

// CopyFile copies filename to the same path on host. Missing parent
// directories are created. The remote file is written to a temporary name and
// then renamed into place.
func (c *FileCopier) CopyFile(host, filename string) error {
	return c.copyFile(host, filename)
}
