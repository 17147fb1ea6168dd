package manager

import (
	"encoding/json"
	"net"
	"strconv"

	"github.com/Cloud-Foundations/olvm/lib/errors"
	"github.com/Cloud-Foundations/olvm/olvm/netdev"
	proto "github.com/Cloud-Foundations/olvm/proto/olvm"
)

const diskParameter = "disk"

// parseDestination checks that destination has the form ip:port and returns
// the IP.
func parseDestination(destination string) (string, error) {
	host, port, err := net.SplitHostPort(destination)
	if err != nil {
		return "", errors.NewValidationError("destination", err.Error())
	}
	if !netdev.ValidateIP(host) {
		return "", errors.NewValidationError("destination",
			"invalid IP address: "+host)
	}
	if portNum, err := strconv.ParseUint(port, 10, 16); err != nil ||
		portNum < 1 {
		return "", errors.NewValidationError("destination",
			"invalid port: "+port)
	}
	return host, nil
}

var interfaceAddrs = net.InterfaceAddrs

// isListenAddress reports whether destination reaches the UDP listener at
// listenAddress, which is busy serving the migration request.
func isListenAddress(destination, listenAddress string) bool {
	host, port, err := net.SplitHostPort(destination)
	if err != nil {
		return false
	}
	listenHost, listenPort, err := net.SplitHostPort(listenAddress)
	if err != nil || !samePort(port, listenPort) {
		return false
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	if listenHost != "" {
		listenIP := net.ParseIP(listenHost)
		if listenIP == nil {
			return host == listenHost
		}
		if !listenIP.IsUnspecified() {
			return ip.Equal(listenIP)
		}
	}
	if ip.IsLoopback() || ip.IsUnspecified() {
		return true
	}
	addrs, err := interfaceAddrs()
	if err != nil {
		return false
	}
	for _, addr := range addrs {
		if ipNet, ok := addr.(*net.IPNet); ok && ipNet.IP.Equal(ip) {
			return true
		}
	}
	return false
}

func samePort(left, right string) bool {
	leftNum, err := strconv.ParseUint(left, 10, 16)
	if err != nil {
		return left == right
	}
	rightNum, err := strconv.ParseUint(right, 10, 16)
	if err != nil {
		return false
	}
	return leftNum == rightNum
}

func (m *Manager) getPeerNode(destination string) (uint, error) {
	reply, err := m.controlClient.Command(destination, "status", "")
	if err != nil {
		return 0, err
	}
	var status proto.Status
	if err := json.Unmarshal(reply, &status); err != nil {
		return 0, errors.NewRemoteError(destination,
			"bad status reply: "+err.Error())
	}
	if status.Node < 1 {
		return 0, errors.NewRemoteError(destination, "status reply has no node")
	}
	return status.Node, nil
}

func (m *Manager) migrateVm(request proto.MigrateRequest) error {
	if m.controlClient == nil {
		return errors.New("migration is not configured")
	}
	logger := m.migrationLogger()
	vm, err := m.store.GetVm(request.Name, m.node)
	if err != nil {
		return err
	}
	host, err := parseDestination(request.Destination)
	if err != nil {
		return err
	}
	if m.config.UDP != nil &&
		isListenAddress(request.Destination, m.config.UDP.Addr) {
		return errors.NewSameNodeError(m.node)
	}
	peerNode, err := m.getPeerNode(request.Destination)
	if err != nil {
		return err
	}
	if peerNode == m.node {
		return errors.NewSameNodeError(peerNode)
	}
	vm.Node = 0
	payload, err := json.Marshal(vm)
	if err != nil {
		return err
	}
	logger.Printf("creating VM: %s on node: %d at: %s\n",
		vm.Name, peerNode, request.Destination)
	if _, err := m.controlClient.Command(request.Destination, "createvm",
		string(payload)); err != nil {
		return err
	}
	if disk := vm.Parameters[diskParameter]; disk != "" {
		if m.fileCopier == nil {
			logger.Printf("VM: %s registered on nodes: %d and %d, no copier\n",
				vm.Name, m.node, peerNode)
			return errors.New("no file copier for disk: " + disk)
		}
		logger.Debugf(0, "copying: %s to: %s\n", disk, host)
		if err := m.fileCopier.CopyFile(host, disk); err != nil {
			logger.Printf("VM: %s registered on nodes: %d and %d, copy failed: %s\n",
				vm.Name, m.node, peerNode, err)
			return err
		}
	}
	if err := m.deleteVm(vm.Name); err != nil {
		logger.Printf("VM: %s registered on nodes: %d and %d, local delete failed: %s\n",
			vm.Name, m.node, peerNode, err)
		return err
	}
	logger.Printf("migrated VM: %s to node: %d\n", vm.Name, peerNode)
	return nil
}
