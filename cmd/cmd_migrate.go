package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"storeit/store"
)

type MigrateCmd struct {
	flags *Flags
}

func NewMigrateCmd(flags *Flags) *MigrateCmd {
	return &MigrateCmd{flags: flags}
}

func (cmd *MigrateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "migrate",
		Usage: "Create the analytics collection indexes",
		Description: `Creates the indexes for activity logs, search history, notifications,
the expiring cache and file tags in the analytics database.

Safe to run repeatedly.`,
		Action: cmd.run,
	})
	return app
}

func (cmd *MigrateCmd) run(ctx context.Context, _ *cli.Command) error {
	dbs, err := connectDatabases(ctx, cmd.flags.Config)
	if err != nil {
		return err
	}
	defer disconnectDatabases()

	if err := store.EnsureIndexes(ctx, dbs.analytics); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	log.Info().Msg("analytics indexes are up to date")
	return nil
}
