package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Cloud-Foundations/olvm/lib/log"
	proto "github.com/Cloud-Foundations/olvm/proto/olvm"
)

func sendSubcommand(args []string, logger log.DebugLogger) error {
	var payload string
	if len(args) > 1 {
		payload = args[1]
	}
	if err := send(os.Stdout, args[0], payload, logger); err != nil {
		return fmt.Errorf("error sending: %s: %s", args[0], err)
	}
	return nil
}

func listVmsSubcommand(args []string, logger log.DebugLogger) error {
	if err := send(os.Stdout, "listvm", "", logger); err != nil {
		return fmt.Errorf("error listing VMs: %s", err)
	}
	return nil
}

func migrateVmSubcommand(args []string, logger log.DebugLogger) error {
	payload, err := json.Marshal(proto.MigrateRequest{
		Name:        args[0],
		Destination: args[1],
	})
	if err != nil {
		return err
	}
	if err := send(os.Stdout, "migratevm", string(payload), logger); err != nil {
		return fmt.Errorf("error migrating VM: %s", err)
	}
	return nil
}

func statusSubcommand(args []string, logger log.DebugLogger) error {
	if err := send(os.Stdout, "status", "", logger); err != nil {
		return fmt.Errorf("error getting status: %s", err)
	}
	return nil
}

func send(writer io.Writer, command, payload string,
	logger log.DebugLogger) error {
	logger.Debugf(0, "sending: %s to: %s\n", command, *daemonAddress)
	result, err := getClient().Command(*daemonAddress, command, payload)
	if err != nil {
		return err
	}
	if string(result) == "null" {
		return nil
	}
	var buffer bytes.Buffer
	if err := json.Indent(&buffer, result, "", "    "); err != nil {
		return err
	}
	buffer.WriteByte('\n')
	_, err = buffer.WriteTo(writer)
	return err
}
