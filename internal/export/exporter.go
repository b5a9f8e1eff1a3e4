// Package export renders a tenant's rows as CSV or SQL INSERT statements.
package export

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/wolfeidau/gestor/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Format is the rendering of an export.
type Format string

const (
	FormatCSV Format = "csv"
	FormatSQL Format = "sql"
)

var (
	ErrInvalidFormat = errors.New("invalid export format")
	ErrMissingTenant = errors.New("organization_id required")
)

// ParseFormat parses "csv" or "sql", ignoring case and surrounding space.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatSQL:
		return FormatSQL, nil
	default:
		return "", fmt.Errorf("%w: %q (expected csv or sql)", ErrInvalidFormat, s)
	}
}

// RowFetcher loads every row of table that belongs to tenantID.
type RowFetcher interface {
	FetchRows(ctx context.Context, table Table, tenantID string) ([]Row, error)
}

// RowFetcherFunc adapts a function to RowFetcher.
type RowFetcherFunc func(ctx context.Context, table Table, tenantID string) ([]Row, error)

// FetchRows implements RowFetcher.
func (f RowFetcherFunc) FetchRows(ctx context.Context, table Table, tenantID string) ([]Row, error) {
	return f(ctx, table, tenantID)
}

// Config holds exporter settings.
type Config struct {
	// Tables is the ordered list of tables to export.
	// Default: DefaultTables
	Tables []Table

	// Concurrency is the maximum number of table fetches in flight.
	// Default: 4
	Concurrency int

	// FetchTimeout bounds each table fetch. A fetch that times out is
	// exported as an empty table.
	// Default: 30s
	FetchTimeout time.Duration

	// Now returns the generation timestamp.
	// Default: time.Now
	Now func() time.Time
}

// ApplyDefaults applies default values to unset configuration fields.
func (c *Config) ApplyDefaults() {
	if len(c.Tables) == 0 {
		c.Tables = DefaultTables
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 30 * time.Second
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

// Exporter assembles tenant exports.
type Exporter struct {
	fetcher RowFetcher
	cfg     Config
}

// New creates an exporter reading rows through fetcher.
func New(fetcher RowFetcher, cfg Config) *Exporter {
	cfg.ApplyDefaults()
	return &Exporter{
		fetcher: fetcher,
		cfg:     cfg,
	}
}

// Tables returns the tables this exporter reads, in order.
func (e *Exporter) Tables() []Table {
	return e.cfg.Tables
}

// Result is a fully rendered export.
type Result struct {
	TenantID    string
	Format      Format
	GeneratedAt time.Time

	// SQL is set for FormatSQL.
	SQL string

	// CSV is set for FormatCSV, one entry per non-empty table in order.
	CSV []CSVTable

	// Tables lists the tables that contributed rows, in order.
	Tables []string

	// RowCount is the number of rows rendered.
	RowCount int

	// FailedTables lists tables whose fetch failed and were exported empty.
	FailedTables []string
}

// CSVByTable returns the CSV text keyed by table name.
func (r *Result) CSVByTable() map[string]string {
	out := make(map[string]string, len(r.CSV))
	for _, t := range r.CSV {
		out[t.Table] = t.Text
	}
	return out
}

// Document returns the export as a single text document.
func (r *Result) Document() string {
	if r.Format == FormatSQL {
		return r.SQL
	}
	return CSVDocument(r.CSV)
}

// Data returns the payload sent to API callers: the SQL text, or a map of
// table name to CSV text.
func (r *Result) Data() any {
	if r.Format == FormatSQL {
		return r.SQL
	}
	return r.CSVByTable()
}

// Export fetches every table for tenantID and renders them in format.
// Individual table failures are logged and the table exported as empty;
// cancelling ctx aborts the whole export.
func (e *Exporter) Export(ctx context.Context, tenantID string, format Format) (*Result, error) {
	if tenantID == "" {
		return nil, ErrMissingTenant
	}
	if format != FormatCSV && format != FormatSQL {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, format)
	}

	ctx, span := telemetry.Tracer().Start(ctx, "export.Export", trace.WithAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("format", string(format)),
	))
	defer span.End()

	started := time.Now()
	metrics := telemetry.GetMetrics()
	formatAttr := metric.WithAttributes(attribute.String("format", string(format)))

	tables, failed, err := e.fetchAll(ctx, tenantID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.ExportErrorsTotal.Add(ctx, 1, formatAttr)
		return nil, err
	}

	res := &Result{
		TenantID:     tenantID,
		Format:       format,
		GeneratedAt:  e.cfg.Now(),
		FailedTables: failed,
	}

	for _, t := range tables {
		if len(t.Rows) == 0 {
			continue
		}
		res.Tables = append(res.Tables, t.Table)
		res.RowCount += len(t.Rows)
	}

	var size int
	switch format {
	case FormatSQL:
		res.SQL = RenderSQL(tenantID, res.GeneratedAt, tables)
		size = len(res.SQL)
	case FormatCSV:
		res.CSV = RenderCSV(tables)
		for _, t := range res.CSV {
			size += len(t.Text)
		}
	}

	metrics.ExportsTotal.Add(ctx, 1, formatAttr)
	metrics.ExportRowsTotal.Add(ctx, int64(res.RowCount), formatAttr)
	metrics.ExportedBytesTotal.Add(ctx, int64(size), formatAttr)
	metrics.ExportDuration.Record(ctx, float64(time.Since(started).Milliseconds()), formatAttr)

	span.SetAttributes(
		attribute.Int("rows", res.RowCount),
		attribute.Int("failed_tables", len(failed)),
	)

	zerolog.Ctx(ctx).Info().
		Str("tenant_id", tenantID).
		Str("format", string(format)).
		Int("rows", res.RowCount).
		Strs("tables", res.Tables).
		Strs("failed_tables", failed).
		Dur("duration", time.Since(started)).
		Msg("Export complete")

	return res, nil
}

// fetchAll loads every table concurrently and returns them in configured order.
func (e *Exporter) fetchAll(ctx context.Context, tenantID string) ([]TableRows, []string, error) {
	tables := make([]TableRows, len(e.cfg.Tables))
	failures := make([]error, len(e.cfg.Tables))

	var g errgroup.Group
	g.SetLimit(e.cfg.Concurrency)

	for i, table := range e.cfg.Tables {
		tables[i].Table = table.Name

		g.Go(func() error {
			if ctx.Err() != nil {
				failures[i] = ctx.Err()
				return nil
			}

			fetchCtx, cancel := context.WithTimeout(ctx, e.cfg.FetchTimeout)
			defer cancel()

			rows, err := e.fetcher.FetchRows(fetchCtx, table, tenantID)
			if err != nil {
				failures[i] = err
				return nil
			}
			tables[i].Rows = rows
			return nil
		})
	}

	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("export cancelled: %w", err)
	}

	var failed []string
	for i, err := range failures {
		if err == nil {
			continue
		}
		name := e.cfg.Tables[i].Name
		failed = append(failed, name)
		tables[i].Rows = nil

		telemetry.GetMetrics().TableFetchFailures.Add(ctx, 1,
			metric.WithAttributes(attribute.String("table", name)))
		zerolog.Ctx(ctx).Error().
			Err(err).
			Str("table", name).
			Str("tenant_id", tenantID).
			Msg("Error fetching table, exporting it as empty")
	}

	return tables, failed, nil
}
