// Package loadflags sets command-line flags from flags.default and flags.extra
// files, so that daemons can be configured without editing service units.
package loadflags

import (
	"flag"
	"path/filepath"
)

// LoadForCli loads flags for a command-line tool from /etc/olvm/<progName>
// and then from $HOME/.config/<progName>.
func LoadForCli(progName string) error {
	return loadForCli(progName)
}

// LoadForDaemon loads flags for a daemon from /etc/<progName>.
func LoadForDaemon(progName string) error {
	return loadFlags(flag.CommandLine, filepath.Join("/etc", progName))
}

// LoadFromDirectory sets flags in flagSet from the flags.default and
// flags.extra files in dirname. Missing files are ignored.
func LoadFromDirectory(flagSet *flag.FlagSet, dirname string) error {
	return loadFlags(flagSet, dirname)
}
