package main

import (
	"context"

	"github.com/spf13/cobra"

	mongostore "github.com/99minutos/auth-api/internal/infrastructure/db/mongo"
	"github.com/99minutos/auth-api/internal/pkg/config"
	"github.com/99minutos/auth-api/pkg/logger"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create MongoDB indexes",
		Long:  `Create the unique email index on the users collection. Safe to run repeatedly.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			cfg, err := config.Load(ctx)
			if err != nil {
				return err
			}

			logger.Init(logger.Options{
				Level:   cfg.LogLevel,
				Pretty:  !cfg.IsProduction(),
				Output:  cmd.ErrOrStderr(),
				Service: "auth-api",
				Env:     cfg.Env,
			})

			client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
			if err != nil {
				return err
			}
			defer disconnectMongo(client)

			if err := mongostore.NewUserRepository(db).EnsureIndexes(ctx); err != nil {
				return err
			}
			log := logger.Get()
			log.Info().Str("collection", db.Name()+".users").Msg("indexes ensured")
			return nil
		},
	}
}
