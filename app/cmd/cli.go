package cmd

import (
	"context"
	"os"

	"github.com/danuarta/go-marketplace/app/configs"
	"github.com/danuarta/go-marketplace/app/db/seeders"
	"github.com/danuarta/go-marketplace/app/models/migrations"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// RunCli dispatches the management subcommands. The HTTP server starts only
// when the binary runs without arguments.
func RunCli(env configs.ENV, log *zap.Logger) {
	cmd := &cli.Command{
		Name:  "marketplace",
		Usage: "catalog service management commands",
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "Run database migration",
				Action: func(ctx context.Context, c *cli.Command) error {
					db, err := configs.OpenConnection(env, log)
					if err != nil {
						return err
					}
					if err := migrations.AutoMigrate(db); err != nil {
						return err
					}
					log.Info("migration complete")
					return nil
				},
			},
			{
				Name:  "seed",
				Usage: "Populate the database with development data",
				Action: func(ctx context.Context, c *cli.Command) error {
					db, err := configs.OpenConnection(env, log)
					if err != nil {
						return err
					}
					if err := seeders.DBSeed(db); err != nil {
						return err
					}
					log.Info("seeding complete")
					return nil
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal("command failed", zap.Error(err))
	}
}
