package main

import (
	"context"
	"fmt"

	"github.com/dom/taskflow/internal/config"
	"github.com/dom/taskflow/internal/repository"
	"github.com/dom/taskflow/internal/repository/memory"
	repoMongo "github.com/dom/taskflow/internal/repository/mongo"
	repoPostgres "github.com/dom/taskflow/internal/repository/postgres"
	"github.com/dom/taskflow/internal/service"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// openStore connects the configured store driver. The postgres schema is
// migrated on connect; mongo indexes are ensured.
func openStore(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*repository.Repositories, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		db, err := repoPostgres.NewConnection(cfg.DatabaseURL, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return repoPostgres.NewRepositories(db), nil

	case config.StoreMongo:
		client, db, err := repoMongo.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		if err := repoMongo.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return repoMongo.NewRepositories(client, db), nil

	case config.StoreMemory:
		log.Warn("using in-memory store, data is lost on exit")
		return memory.NewRepositories(), nil
	}

	return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
}

func runMigrate(cmd *cobra.Command, configFile string) error {
	cfg, log, err := bootstrap(configFile)
	if err != nil {
		return err
	}

	repos, err := openStore(cmd.Context(), cfg, log)
	if err != nil {
		log.WithError(err).WithField("driver", cfg.StoreDriver).Error("migration failed")
		return err
	}
	defer repos.Close()

	log.WithField("driver", cfg.StoreDriver).Info("store schema is up to date")
	return nil
}

func runPromote(cmd *cobra.Command, configFile, email string) error {
	cfg, log, err := bootstrap(configFile)
	if err != nil {
		return err
	}

	repos, err := openStore(cmd.Context(), cfg, log)
	if err != nil {
		log.WithError(err).Error("failed to open store")
		return err
	}
	defer repos.Close()

	user, err := service.NewServices(repos, cfg).Users.Promote(cmd.Context(), email)
	if err != nil {
		log.WithError(err).WithField("email", email).Error("failed to promote user")
		return err
	}

	log.WithFields(logrus.Fields{"user_id": user.ID, "email": user.Email}).Info("user promoted to admin")
	return nil
}
