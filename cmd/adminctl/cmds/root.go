// Package cmds implements the adminctl command tree. adminctl manages the
// admin accounts that gate the private submission listing.
package cmds

import (
	"context"
	"fmt"

	sloggorm "github.com/orandin/slog-gorm"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/lumenworks/submission-api/internal/config"
	"github.com/lumenworks/submission-api/internal/logger"
	"github.com/lumenworks/submission-api/internal/migrations"
)

var rootCmd = &cobra.Command{
	Use:           "adminctl",
	Short:         "Manage admin accounts",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute(ctx context.Context) error {
	logger.InitSlog()
	return rootCmd.ExecuteContext(ctx)
}

// Opens the configured database and brings the schema current so the tool
// works against a fresh database too.
func openDB(ctx context.Context) (*gorm.DB, error) {
	cfg, err := config.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	sg := sloggorm.New(sloggorm.WithHandler(logger.Handler))

	db, err := gorm.Open(
		postgres.Open(cfg.PostgresDSN()),
		&gorm.Config{Logger: sg, TranslateError: true},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := migrations.Up(ctx, db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

func init() {
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(listCmd)
}
