package common

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"

	"deposito-savings-go/internal/config"
	"deposito-savings-go/internal/database"
	"deposito-savings-go/internal/models"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// Environment variables can also be set via shell export, docker, etc.
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
	}
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

// InitializeDatabase opens the store and seeds the deposito tier registry
// from the configured tiers file when one is present.
func InitializeDatabase(ctx context.Context, cfg *models.Config) (*database.Service, error) {
	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	if cfg.Database.TiersFile != "" {
		tiers, err := config.LoadTiers(cfg.Database.TiersFile)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				zap.L().Info("No tiers file found, skipping tier seeding",
					zap.String("file", cfg.Database.TiersFile))
				return dbService, nil
			}
			dbService.Close()
			return nil, err
		}
		if err := dbService.SeedDepositoTypes(ctx, tiers); err != nil {
			dbService.Close()
			return nil, err
		}
	}

	return dbService, nil
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
