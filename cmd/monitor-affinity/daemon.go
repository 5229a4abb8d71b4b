package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/davidmreed/monitor-affinity/internal/daemon"
)

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", "", "Config file path (default: ~/.config/monitor-affinity/config.yaml)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: monitor-affinity daemon [--config FILE]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Dispatch every configured command, then watch for monitor topology")
		fmt.Fprintln(os.Stderr, "changes and restart commands whose preferred monitors changed.")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	specs, err := cfg.Specs()
	if err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
	if len(specs) == 0 {
		log.Fatalf("No commands configured; nothing to do")
	}

	conn, err := connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to display: %v", err)
	}
	defer conn.Close()

	changes, err := conn.WatchScreenChanges()
	if err != nil {
		log.Fatalf("Failed to watch for screen changes: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	logger.Info("daemon started", "commands", len(specs))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := daemon.New(conn, specs, logger).Run(ctx, changes); err != nil {
		logger.Error("daemon exited", "error", err)
		return 1
	}
	return 0
}
