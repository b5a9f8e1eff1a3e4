package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/gestor/internal/logger"
	postgresstore "github.com/wolfeidau/gestor/internal/store/postgres"
)

// MigrateCmd applies the embedded schema migrations.
type MigrateCmd struct {
	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`
}

func (c *MigrateCmd) Run(ctx context.Context, globals *Globals) error {
	log.Logger = logger.Setup(globals.Debug)

	if err := c.PostgresStore.validate(); err != nil {
		return fmt.Errorf("failed to validate postgres flags: %w", err)
	}

	cfg := c.PostgresStore.config()
	cfg.AutoMigrate = true

	pool, err := postgresstore.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	log.Info().Msg("Migrations applied")

	return nil
}
