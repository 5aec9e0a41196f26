package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mantonx/reelbase/internal/config"
	"github.com/mantonx/reelbase/internal/database"
	"github.com/mantonx/reelbase/internal/logger"
	"github.com/mantonx/reelbase/internal/modules/catalogmodule"
	"github.com/mantonx/reelbase/internal/modules/databasemodule"
	"github.com/mantonx/reelbase/internal/modules/modulemanager"
	"github.com/mantonx/reelbase/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "reelbase: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", os.Getenv("REELBASE_CONFIG_PATH"), "path to a YAML or JSON config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	log := logger.Configure(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
	if *configPath != "" {
		log.Info("configuration loaded", "path", *configPath)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}

	dbModule := databasemodule.NewModule(db)
	modules := modulemanager.New()
	for _, m := range []modulemanager.Module{
		dbModule,
		catalogmodule.NewModule(dbModule.TransactionManager(), cfg.Catalog),
	} {
		if err := modules.Register(m); err != nil {
			return err
		}
	}
	if err := modules.LoadAll(db); err != nil {
		return err
	}
	log.Info("module system initialized", "modules", len(modules.Modules()))

	srv, err := server.New(cfg.Server, modules)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx, 10*time.Second)
}
