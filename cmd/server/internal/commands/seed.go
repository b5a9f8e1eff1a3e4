package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/gestor/internal/admin"
	"github.com/wolfeidau/gestor/internal/export"
	"github.com/wolfeidau/gestor/internal/logger"
	"gopkg.in/yaml.v3"
)

// SeedCmd creates the support organization and its first support user.
type SeedCmd struct {
	File string `help:"YAML file describing the support account" required:"" type:"existingfile"`

	StoreType     string             `help:"store type (memory or postgres)" default:"postgres" env:"GESTOR_STORE_TYPE" enum:"memory,postgres"`
	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`
	Identity      IdentityFlags      `embed:"" prefix:"identity-"`
}

func (c *SeedCmd) Run(ctx context.Context, globals *Globals) error {
	log.Logger = logger.Setup(globals.Debug)
	ctx = log.Logger.WithContext(ctx)

	req, err := loadSeedFile(c.File)
	if err != nil {
		return err
	}

	st, err := openStores(ctx, c.StoreType, &c.PostgresStore)
	if err != nil {
		return err
	}
	defer st.close()

	provider, err := c.Identity.provider()
	if err != nil {
		return fmt.Errorf("failed to create identity provider: %w", err)
	}

	svc, err := st.service(provider, export.Config{})
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	res, err := svc.SeedSupportAccount(ctx, *req)
	if err != nil {
		return fmt.Errorf("failed to seed support account: %w", err)
	}

	log.Info().
		Str("org_id", res.OrganizationID.String()).
		Str("user_id", res.UserID.String()).
		Str("email", req.Email).
		Msg("Support account created")

	return nil
}

func loadSeedFile(path string) (*admin.SeedRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var req admin.SeedRequest
	if err := yaml.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}

	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid seed file %s: %w", path, err)
	}

	return &req, nil
}
