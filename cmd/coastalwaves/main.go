package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path"

	"github.com/google/subcommands"

	"github.com/trevorjharder/Coastal-Waves/internal/config"
	"github.com/trevorjharder/Coastal-Waves/internal/db"
	"github.com/trevorjharder/Coastal-Waves/internal/logging"
	"github.com/trevorjharder/Coastal-Waves/internal/service"
	"github.com/trevorjharder/Coastal-Waves/internal/store"
)

// env is what every subcommand needs: configuration and the process logger.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
}

// openService opens the configured database and builds the inventory
// service on it. The returned close function releases the database.
func (e *env) openService() (*service.InventoryService, func(), error) {
	database, err := db.Open(e.cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	closeDB := func() {
		if err := database.Close(); err != nil {
			e.logger.Error("failed to close database", "error", err)
		}
	}
	svc := service.NewInventoryService(store.New(database), service.Options{ImportSheet: e.cfg.ImportSheet}, e.logger)
	return svc, closeDB, nil
}

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return int(subcommands.ExitFailure)
	}

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		return int(subcommands.ExitFailure)
	}
	defer cleanup()

	e := &env{cfg: cfg, logger: logger}
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	commander.Register(&serveCmd{env: e}, "")
	commander.Register(&importCmd{env: e, out: os.Stdout}, "")
	commander.Register(&reportCmd{env: e, out: os.Stdout}, "")
	commander.Register(&serialCmd{env: e, out: os.Stdout}, "")

	flag.Parse()
	return int(commander.Execute(context.Background()))
}
