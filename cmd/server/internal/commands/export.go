package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/gestor/internal/export"
	"github.com/wolfeidau/gestor/internal/logger"
)

// ExportCmd exports an organization straight from the database, without
// going through the API.
type ExportCmd struct {
	Org    string `help:"organization id to export" required:""`
	Format string `help:"export format (csv or sql)" default:"sql" enum:"csv,sql"`
	Out    string `help:"output file, - for stdout" default:"-"`
	Split  bool   `help:"write one CSV file per table into the --out directory" default:"false"`

	StoreType     string             `help:"store type (memory or postgres)" default:"postgres" env:"GESTOR_STORE_TYPE" enum:"memory,postgres"`
	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`
	Export        ExportFlags        `embed:"" prefix:"export-"`
}

func (c *ExportCmd) Validate() error {
	if _, err := uuid.Parse(c.Org); err != nil {
		return fmt.Errorf("--org must be a UUID: %w", err)
	}
	if c.Split && c.Format != string(export.FormatCSV) {
		return errors.New("--split requires --format csv")
	}
	if c.Split && (c.Out == "" || c.Out == "-") {
		return errors.New("--split requires --out to name a directory")
	}
	return nil
}

func (c *ExportCmd) Run(ctx context.Context, globals *Globals) error {
	log.Logger = logger.Setup(globals.Debug)
	ctx = log.Logger.WithContext(ctx)

	st, err := openStores(ctx, c.StoreType, &c.PostgresStore)
	if err != nil {
		return err
	}
	defer st.close()

	orgID := uuid.MustParse(c.Org)
	if _, err := st.organizations.Get(ctx, orgID); err != nil {
		return fmt.Errorf("failed to load organization %s: %w", orgID, err)
	}

	format, err := export.ParseFormat(c.Format)
	if err != nil {
		return err
	}

	res, err := export.New(st.rows, c.Export.config()).Export(ctx, orgID.String(), format)
	if err != nil {
		return fmt.Errorf("failed to export organization: %w", err)
	}

	if err := writeExport(os.Stdout, res, c.Out, c.Split); err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().
		Str("org_id", orgID.String()).
		Strs("tables", res.Tables).
		Strs("failed_tables", res.FailedTables).
		Int("rows", res.RowCount).
		Msg("Export written")

	return nil
}

// writeExport writes res to stdout, to the file out, or with split to one
// <table>.csv file per table inside the directory out.
func writeExport(stdout io.Writer, res *export.Result, out string, split bool) error {
	if split {
		if err := os.MkdirAll(out, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		for _, t := range res.CSV {
			path := filepath.Join(out, t.Table+".csv")
			if err := os.WriteFile(path, []byte(t.Text+"\n"), 0o600); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
		}
		return nil
	}

	doc := res.Document()

	if out == "" || out == "-" {
		_, err := io.WriteString(stdout, doc)
		return err
	}

	if err := os.WriteFile(out, []byte(doc), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	return nil
}
