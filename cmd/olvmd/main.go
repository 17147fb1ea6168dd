package main

import (
	"flag"
	"fmt"
	stdlog "log"
	"os"

	"github.com/Cloud-Foundations/olvm/lib/flags/loadflags"
	"github.com/Cloud-Foundations/olvm/lib/log"
	"github.com/Cloud-Foundations/olvm/lib/log/debuglogger"
	"github.com/Cloud-Foundations/olvm/lib/sshutil"
	"github.com/Cloud-Foundations/olvm/olvm/backend"
	"github.com/Cloud-Foundations/olvm/olvm/client"
	"github.com/Cloud-Foundations/olvm/olvm/config"
	"github.com/Cloud-Foundations/olvm/olvm/dhcpd"
	"github.com/Cloud-Foundations/olvm/olvm/frontend"
	"github.com/Cloud-Foundations/olvm/olvm/manager"
	"github.com/Cloud-Foundations/olvm/olvm/netdev"
	"github.com/Cloud-Foundations/olvm/olvm/store"
	"github.com/Cloud-Foundations/tricorder/go/tricorder"
)

var (
	configFile = flag.String("configFile", config.DefaultConfigFile,
		"Name of configuration file")
	logDebugLevel = flag.Int("logDebugLevel", -1, "Debug log level")
)

func printUsage() {
	w := flag.CommandLine.Output()
	fmt.Fprintln(w, "Usage: olvmd [flags...]")
	fmt.Fprintln(w, "Common flags:")
	flag.PrintDefaults()
}

func makeFileCopier(migration config.Migration,
	logger log.DebugLogger) (manager.FileCopier, error) {
	if migration.SshKey == "" {
		logger.Println("no migration.ssh_key: disk images will not be copied")
		return nil, nil
	}
	return sshutil.NewFileCopier(sshutil.FileCopierParams{
		KeyFile:        migration.SshKey,
		KnownHostsFile: migration.KnownHosts,
		Logger:         logger,
		Port:           migration.SshPort,
		Timeout:        migration.CopyTimeout(),
		User:           migration.SshUser,
	})
}

func startFrontends(cfg *config.Config, managerObj *manager.Manager,
	logger log.DebugLogger) {
	if cfg.Dhcp.Enabled {
		if _, err := dhcpd.New(cfg.Dhcp, managerObj, logger); err != nil {
			logger.Fatalf("Cannot start DHCP server: %s\n", err)
		}
	}
	if cfg.UDP != nil {
		go func() {
			err := frontend.ListenAndServeUDP(cfg.UDP.Addr, managerObj, logger)
			logger.Fatalf("UDP server stopped: %s\n", err)
		}()
	}
	if cfg.HTTP != nil {
		go func() {
			err := frontend.ListenAndServeHttp(cfg.HTTP.Addr, managerObj,
				logger)
			logger.Fatalf("HTTP server stopped: %s\n", err)
		}()
	}
}

func run(logger log.DebugLogger) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Fatalf("Cannot load configuration: %s\n", err)
	}
	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("Cannot open database: %s\n", err)
	}
	defer db.Close()
	fileCopier, err := makeFileCopier(cfg.Migration, logger)
	if err != nil {
		logger.Fatalf("Cannot set up migration: %s\n", err)
	}
	managerObj, err := manager.New(manager.StartOptions{
		Backend:       backend.NewAdapter(cfg.Backends, db, logger),
		Config:        cfg,
		ControlClient: client.New(cfg.Migration.ControlTimeout()),
		FileCopier:    fileCopier,
		Logger:        logger,
		Provisioner:   netdev.New(logger),
		Store:         db,
	})
	if err != nil {
		logger.Fatalf("Cannot start manager: %s\n", err)
	}
	if err := managerObj.RegisterMetrics(); err != nil {
		logger.Fatalf("Cannot register metrics: %s\n", err)
	}
	logger.Printf("olvmd starting, node: %d\n", cfg.Global.Node)
	go managerObj.RestoreDevices()
	startFrontends(cfg, managerObj, logger)
	if cfg.Console.Enabled {
		err := frontend.ServeConsole(os.Stdin, os.Stdout, managerObj, logger)
		if err != nil {
			logger.Printf("console: %s\n", err)
		}
	}
	select {}
}

func main() {
	if err := loadflags.LoadForDaemon("olvmd"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	flag.Usage = printUsage
	flag.Parse()
	tricorder.RegisterFlags()
	if os.Geteuid() != 0 {
		fmt.Fprintln(os.Stderr, "Must run olvmd as root")
		os.Exit(1)
	}
	logger := debuglogger.New(stdlog.New(os.Stderr, "", stdlog.LstdFlags))
	logger.SetLevel(int16(*logDebugLevel))
	run(logger)
}
