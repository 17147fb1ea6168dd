// Package commands runs the subcommand named by the first command-line
// argument.
package commands

import (
	"flag"
	"io"

	"github.com/Cloud-Foundations/olvm/lib/log"
)

type CommandFunc func([]string, log.DebugLogger) error

type Command struct {
	Command string
	Args    string
	MinArgs int
	MaxArgs int // Negative means unlimited.
	CmdFunc CommandFunc
}

var (
	cpuProfileFilename = flag.String("cpuProfileFilename", "",
		"Save a CPU profile of the subcommand to the specified file")
)

func PrintCommands(writer io.Writer, commands []Command) {
	printCommands(writer, commands)
}

// RunCommands runs the command named by flag.Arg(0) and returns the process
// exit code: 0 on success, 1 if the command failed and 2 for a usage error.
func RunCommands(commands []Command, printUsage func(),
	logger log.DebugLogger) int {
	return runCommands(flag.Args(), flag.CommandLine.Output(), commands,
		printUsage, logger)
}
