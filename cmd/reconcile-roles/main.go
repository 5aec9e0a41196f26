// Command reconcile-roles brings every person's role tags in line with the
// credits stored in the crew and cast tables.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/mantonx/reelbase/internal/config"
	"github.com/mantonx/reelbase/internal/database"
	"github.com/mantonx/reelbase/internal/logger"
	"github.com/mantonx/reelbase/internal/modules/catalogmodule/core/aggregate"
	"github.com/mantonx/reelbase/internal/modules/catalogmodule/types"
	"github.com/mantonx/reelbase/internal/modules/databasemodule"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "reconcile-roles: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("reconcile-roles", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.String("config", os.Getenv("REELBASE_CONFIG_PATH"), "path to a YAML or JSON config file")
	prune := flags.Bool("prune", false, "also remove tags for roles the person no longer holds a credit in")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	logger.Configure(cfg.Logging.Level, cfg.Logging.Format, stderr)

	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	result, err := aggregate.NewReconciler(databasemodule.NewTransactionManager(db)).Reconcile(ctx, *prune)
	if err != nil {
		return err
	}

	var tags []types.RoleType
	for rt := range result.Added {
		tags = append(tags, rt)
	}
	for rt := range result.Removed {
		if _, ok := result.Added[rt]; !ok {
			tags = append(tags, rt)
		}
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	for _, tag := range tags {
		fmt.Fprintf(stdout, "%-28s +%d -%d\n", tag, result.Added[tag], result.Removed[tag])
	}
	added, removed := result.Total()
	fmt.Fprintf(stdout, "%d tags added, %d removed\n", added, removed)
	return nil
}
