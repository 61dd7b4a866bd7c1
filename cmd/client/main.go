package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"DriveX/internal/cli/commands"
	"DriveX/internal/config"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	// env + .env + flags
	cfg := config.NewConfig()

	if cfg.Version {
		printVersion()
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	exitCode := commands.Dispatch(ctx, cfg, flag.Args())
	if exitCode == commands.ExitOK {
		return
	}
	// defer не выполнится после os.Exit
	cancel()
	os.Exit(exitCode)
}

func printVersion() {
	fmt.Printf("DriveX CLI (dxcli)\nVersion: %s\nBuild date: %s\n", version, buildDate)
}
