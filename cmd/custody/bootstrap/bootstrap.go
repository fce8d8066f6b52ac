// Package bootstrap wires the shared resources for the custody CLI.
package bootstrap

import (
	"context"
	"encoding/json"
	"os"

	"github.com/vaultlane/custody/internal/platform/config"
	"github.com/vaultlane/custody/internal/platform/db"
	"github.com/vaultlane/custody/internal/platform/node"

	"github.com/tokenized/pkg/logger"
)

func NewContextWithDevelopmentLogger() context.Context {
	ctx := context.Background()
	return node.ContextWithDevelopmentLogger(ctx, os.Getenv("LOG_FORMAT"))
}

func NewConfigFromEnv(ctx context.Context) *config.Config {
	cfg, err := config.Environment()
	if err != nil {
		logger.Fatal(ctx, "Parsing Config : %s", err)
	}

	// Mask sensitive values
	cfgSafe := config.SafeConfig(*cfg)
	cfgJSON, err := json.MarshalIndent(cfgSafe, "", "    ")
	if err != nil {
		logger.Fatal(ctx, "Marshalling Config to JSON : %s", err)
	}
	logger.Info(ctx, "Config : %v", string(cfgJSON))

	return cfg
}

func NewMasterDB(ctx context.Context, cfg *config.Config) *db.DB {
	masterDB, err := db.New(&db.StorageConfig{
		Bucket: cfg.Storage.Bucket,
		Root:   cfg.Storage.Root,
	})
	if err != nil {
		logger.Fatal(ctx, "Register DB : %s", err)
	}

	return masterDB
}
