package errors

import (
	"strings"
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return "invalid " + e.Field + ": " + e.Reason
	}
	return "invalid " + e.Field
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return e.Resource + " " + e.ID + " not found"
	}
	return e.Resource + " not found"
}

func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ConflictError is returned when a name or address is already in use.
type ConflictError struct {
	Resource string
	ID       string
}

func (e *ConflictError) Error() string {
	return e.Resource + " " + e.ID + " is not available"
}

func NewConflictError(resource, id string) *ConflictError {
	return &ConflictError{Resource: resource, ID: id}
}

type UnknownBackendError struct {
	Backend string
}

func (e *UnknownBackendError) Error() string {
	return "invalid or unknown backend: " + e.Backend
}

func NewUnknownBackendError(backend string) *UnknownBackendError {
	return &UnknownBackendError{Backend: backend}
}

// BackendScriptFailedError is returned when a backend script exits with a
// non-zero status. Stderr holds whatever the script wrote to stderr.
type BackendScriptFailedError struct {
	Script string
	Stderr string
}

func (e *BackendScriptFailedError) Error() string {
	if e.Stderr == "" {
		return "script: " + e.Script + " failed"
	}
	return "script: " + e.Script + " failed: " + e.Stderr
}

func NewBackendScriptFailedError(script, stderr string) *BackendScriptFailedError {
	return &BackendScriptFailedError{
		Script: script,
		Stderr: strings.TrimSpace(stderr),
	}
}

// BackendProtocolError is returned when a backend script writes a line to
// stdout that is not a key/value pair.
type BackendProtocolError struct {
	Script string
	Line   string
}

func (e *BackendProtocolError) Error() string {
	return "script: " + e.Script + ": invalid output: \"" + e.Line + "\""
}

func NewBackendProtocolError(script, line string) *BackendProtocolError {
	return &BackendProtocolError{Script: script, Line: line}
}

type NetworkDeviceError struct {
	Operation string
	Device    string
	Err       error
}

func (e *NetworkDeviceError) Error() string {
	return "failed to " + e.Operation + " " + e.Device + ": " + e.Err.Error()
}

func (e *NetworkDeviceError) Unwrap() error { return e.Err }

func NewNetworkDeviceError(operation, device string,
	err error) *NetworkDeviceError {
	return &NetworkDeviceError{Operation: operation, Device: device, Err: err}
}

// RemoteError wraps an error reported by a peer node, or a failure to talk to
// it.
type RemoteError struct {
	Address string
	Message string
}

func (e *RemoteError) Error() string {
	return "remote " + e.Address + ": " + e.Message
}

func NewRemoteError(address, message string) *RemoteError {
	return &RemoteError{Address: address, Message: message}
}

type StoreError struct {
	Operation string
	Err       error
}

func (e *StoreError) Error() string {
	return "database error: " + e.Operation + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error { return e.Err }

func NewStoreError(operation string, err error) *StoreError {
	return &StoreError{Operation: operation, Err: err}
}

type SameNodeError struct {
	Node uint
}

func (e *SameNodeError) Error() string {
	return "cannot migrate to the same node"
}

func NewSameNodeError(node uint) *SameNodeError {
	return &SameNodeError{Node: node}
}

type UnknownCommandError struct {
	Command string
}

func (e *UnknownCommandError) Error() string {
	return "unknown command: " + e.Command
}

func NewUnknownCommandError(command string) *UnknownCommandError {
	return &UnknownCommandError{Command: command}
}
