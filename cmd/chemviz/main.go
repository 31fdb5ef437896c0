// Package main runs the chemviz command-line client.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	chemvizcmd "github.com/louisbranch/chemviz/internal/cmd/chemviz"
	"github.com/louisbranch/chemviz/internal/platform/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := chemvizcmd.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		config.Exitf("chemviz: %v", err)
	}
}
