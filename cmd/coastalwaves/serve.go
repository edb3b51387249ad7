package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/subcommands"

	"github.com/trevorjharder/Coastal-Waves/internal/web"
)

type serveCmd struct {
	env  *env
	addr string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the inventory HTTP API" }
func (*serveCmd) Usage() string {
	return `coastalwaves serve [-addr <host:port>]

  Serves the JSON API until interrupted. The listen address defaults to
  LISTEN_ADDR.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "Listen address. Overrides LISTEN_ADDR.")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	logger := c.env.logger
	svc, closeDB, err := c.env.openService()
	if err != nil {
		logger.Error("failed to start", "error", err)
		return subcommands.ExitFailure
	}
	defer closeDB()

	addr := c.addr
	if addr == "" {
		addr = c.env.cfg.ListenAddr
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := web.NewServer(svc, c.env.cfg.MaxUploadBytes, logger)
	if err := server.ListenAndServe(ctx, addr); err != nil {
		logger.Error("server error", "error", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
