// Package main starts the lottery service process lifecycle.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	lotterycmd "github.com/louisbranch/lottery/internal/cmd/lottery"
	"github.com/louisbranch/lottery/internal/platform/config"
)

func main() {
	cfg, err := lotterycmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.ConfigExitf("parse config: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := lotterycmd.Run(ctx, cfg); err != nil {
		config.Exitf("failed to serve: %v", err)
	}
}
