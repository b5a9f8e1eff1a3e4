package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/wolfeidau/gestor/cmd/server/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Debug   bool `help:"Enable debug mode."`
		Version kong.VersionFlag
		Serve   commands.ServeCmd   `cmd:"" help:"Start the API server"`
		Export  commands.ExportCmd  `cmd:"" help:"Export an organization as CSV or SQL"`
		Seed    commands.SeedCmd    `cmd:"" help:"Create the support organization and user"`
		Token   commands.TokenCmd   `cmd:"" help:"Generate a development JWT"`
		Migrate commands.MigrateCmd `cmd:"" help:"Apply database migrations"`
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("gestor"),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
