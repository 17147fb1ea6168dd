package sshutil

import (
	"bytes"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

const dialTimeout = 10 * time.Second

func newFileCopier(params FileCopierParams) (*FileCopier, error) {
	if params.User == "" {
		return nil, fmt.Errorf("no SSH user specified")
	}
	if params.KeyFile == "" {
		return nil, fmt.Errorf("no SSH key file specified")
	}
	privateKey, err := os.ReadFile(params.KeyFile)
	if err != nil {
		return nil, err
	}
	signer, err := ssh.ParsePrivateKey(privateKey)
	if err != nil {
		return nil, fmt.Errorf("error parsing: %s: %s", params.KeyFile, err)
	}
	hostKeyCallback := ssh.InsecureIgnoreHostKey()
	if params.KnownHostsFile != "" {
		hostKeyCallback, err = knownhosts.New(params.KnownHostsFile)
		if err != nil {
			return nil, err
		}
	}
	port := params.Port
	if port < 1 {
		port = 22
	}
	return &FileCopier{
		config: &ssh.ClientConfig{
			User:            params.User,
			Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
			HostKeyCallback: hostKeyCallback,
			Timeout:         dialTimeout,
		},
		logger:  params.Logger,
		port:    port,
		timeout: params.Timeout,
	}, nil
}

// shellQuote quotes s for use as a single word in a POSIX shell command.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func makeCopyCommand(filename string) string {
	tmpFilename := shellQuote(filename + "~")
	return fmt.Sprintf("mkdir -p %s && cat > %s && mv %s %s",
		shellQuote(filepath.Dir(filename)), tmpFilename, tmpFilename,
		shellQuote(filename))
}

func (c *FileCopier) copyFile(host, filename string) error {
	if !filepath.IsAbs(filename) {
		return fmt.Errorf("%s: not an absolute path", filename)
	}
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()
	address := net.JoinHostPort(host, strconv.FormatUint(uint64(c.port), 10))
	client, err := ssh.Dial("tcp", address, c.config)
	if err != nil {
		return fmt.Errorf("error connecting to: %s: %s", address, err)
	}
	defer client.Close()
	if c.timeout > 0 {
		timer := time.AfterFunc(c.timeout, func() { client.Close() })
		defer timer.Stop()
	}
	session, err := client.NewSession()
	if err != nil {
		return err
	}
	defer session.Close()
	var stderr bytes.Buffer
	session.Stdin = file
	session.Stderr = &stderr
	startTime := time.Now()
	if err := session.Run(makeCopyCommand(filename)); err != nil {
		if message := strings.TrimSpace(stderr.String()); message != "" {
			return fmt.Errorf("error copying: %s to: %s: %s: %s",
				filename, host, err, message)
		}
		return fmt.Errorf("error copying: %s to: %s: %s", filename, host, err)
	}
	c.logger.Debugf(0, "copied: %s to: %s in %s\n",
		filename, host, time.Since(startTime).Round(time.Millisecond))
	return nil
}
