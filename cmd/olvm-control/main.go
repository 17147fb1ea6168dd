package main

import (
	"flag"
	"fmt"
	stdlog "log"
	"os"
	"time"

	"github.com/Cloud-Foundations/olvm/lib/flags/commands"
	"github.com/Cloud-Foundations/olvm/lib/flags/loadflags"
	"github.com/Cloud-Foundations/olvm/lib/log/debuglogger"
	"github.com/Cloud-Foundations/olvm/olvm/client"
)

var (
	daemonAddress = flag.String("daemonAddress", "localhost:1997",
		"Address of the UDP control socket of olvmd")
	logDebugLevel = flag.Int("logDebugLevel", -1, "Debug log level")
	timeout       = flag.Duration("timeout", time.Minute,
		"Maximum time to wait for a response")
)

func printUsage() {
	w := flag.CommandLine.Output()
	fmt.Fprintln(w, "Usage: olvm-control [flags...] command")
	fmt.Fprintln(w, "Common flags:")
	flag.PrintDefaults()
	fmt.Fprintln(w, "Commands:")
	commands.PrintCommands(w, subcommands)
}

var subcommands = []commands.Command{
	{Command: "list-vms", Args: "", MinArgs: 0, MaxArgs: 0,
		CmdFunc: listVmsSubcommand},
	{Command: "migrate-vm", Args: "name destination", MinArgs: 2, MaxArgs: 2,
		CmdFunc: migrateVmSubcommand},
	{Command: "send", Args: "command [payload]", MinArgs: 1, MaxArgs: 2,
		CmdFunc: sendSubcommand},
	{Command: "status", Args: "", MinArgs: 0, MaxArgs: 0,
		CmdFunc: statusSubcommand},
}

func getClient() *client.Client {
	return client.New(*timeout)
}

func doMain() int {
	if err := loadflags.LoadForCli("olvm-control"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	flag.Usage = printUsage
	flag.Parse()
	if flag.NArg() < 1 {
		printUsage()
		return 2
	}
	logger := debuglogger.New(stdlog.New(os.Stderr, "", 0))
	logger.SetLevel(int16(*logDebugLevel))
	return commands.RunCommands(subcommands, printUsage, logger)
}

func main() {
	os.Exit(doMain())
}
