package main

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"storeit/jobs"
	"storeit/services"
	"storeit/store"
)

type DigestCmd struct {
	flags *Flags
}

func NewDigestCmd(flags *Flags) *DigestCmd {
	return &DigestCmd{flags: flags}
}

func (cmd *DigestCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:   "digest",
		Usage:  "Send activity digests and storage alerts once and exit",
		Action: cmd.run,
	})
	return app
}

func (cmd *DigestCmd) run(ctx context.Context, _ *cli.Command) error {
	cfg := cmd.flags.Config

	dbs, err := connectDatabases(ctx, cfg)
	if err != nil {
		return err
	}
	defer disconnectDatabases()

	// Jobs act on explicit users, never on a session.
	var anonymous services.SessionResolver

	activityStore := store.NewMongoActivityStore(dbs.analytics)
	users := services.NewMongoUserDirectory(dbs.app, cfg.MaxUserStorage)

	runner := jobs.NewNotificationJobs(
		services.NewAnalyticsService(activityStore, anonymous),
		services.NewNotificationService(store.NewMongoNotificationStore(dbs.analytics), users, anonymous),
		users,
		cfg.DigestInterval,
		cfg.StorageAlertThreshold,
	)

	digests, alerts := runner.RunOnce(ctx)
	log.Info().Int("digests", digests).Int("storage_alerts", alerts).Msg("digest run finished")
	return nil
}
