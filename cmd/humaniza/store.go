package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/RichardoC/humaniza/internal/config"
	"github.com/RichardoC/humaniza/internal/db"
	"github.com/RichardoC/humaniza/internal/history"
	"github.com/RichardoC/humaniza/internal/remote"
)

// openStore opens the local database and, when configured, the remote mirror.
// The remote client is nil when Supabase is not configured.
func openStore(cfg *config.Config, logger *zap.Logger) (*history.Store, *db.Database, *remote.Client, error) {
	database, err := db.New(cfg.DatabaseDriver, cfg.DatabasePath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize database at %s: %w", cfg.DatabasePath, err)
	}

	var opts []history.Option
	var client *remote.Client
	if cfg.RemoteConfigured() {
		client, err = remote.New(cfg.SupabaseURL, cfg.SupabaseAnonKey, remote.WithTable(cfg.SupabaseTable))
		if err != nil {
			_ = database.Close()
			return nil, nil, nil, err
		}
		opts = append(opts, history.WithRemote(client))
		logger.Info("Remote history mirror enabled", zap.String("table", cfg.SupabaseTable))
	} else {
		logger.Info("Remote history mirror not configured, using local history only")
	}

	return history.New(database, logger, opts...), database, client, nil
}
