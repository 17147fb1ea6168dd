package backend

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/Cloud-Foundations/olvm/lib/errors"
)

func runScript(path, argument string,
	timeout time.Duration) (map[string]string, error) {
	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	startTime := time.Now()
	cmd := exec.CommandContext(ctx, path, argument)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	scriptTimeDistribution.Add(time.Since(startTime))
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.NewBackendScriptFailedError(path,
				fmt.Sprintf("timed out after %s", timeout))
		}
		if _, ok := err.(*exec.ExitError); ok {
			return nil, errors.NewBackendScriptFailedError(path,
				stderr.String())
		}
		return nil, errors.NewBackendScriptFailedError(path, err.Error())
	}
	return parseOutput(path, &stdout)
}

func parseOutput(path string, stdout *bytes.Buffer) (map[string]string,
	error) {
	params := make(map[string]string)
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		// Tokens after the value are ignored.
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, errors.NewBackendProtocolError(path, line)
		}
		params[fields[0]] = fields[1]
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.NewBackendProtocolError(path, err.Error())
	}
	return params, nil
}
