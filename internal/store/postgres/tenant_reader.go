package postgres

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wolfeidau/gestor/internal/export"
)

// TenantReader implements export.RowFetcher by selecting every column of a
// tenant table.
type TenantReader struct {
	pool *pgxpool.Pool
}

// NewTenantReader creates a reader sharing pool.
func NewTenantReader(pool *pgxpool.Pool) *TenantReader {
	return &TenantReader{pool: pool}
}

// FetchRows returns the rows of table whose filter column equals tenantID, in
// the table's column order.
func (r *TenantReader) FetchRows(ctx context.Context, table export.Table, tenantID string) ([]export.Row, error) {
	id, err := uuid.Parse(tenantID)
	if err != nil {
		return nil, fmt.Errorf("invalid tenant id %q: %w", tenantID, err)
	}

	query := fmt.Sprintf(`SELECT * FROM %s WHERE %s = $1`,
		pgx.Identifier{"public", table.Name}.Sanitize(),
		pgx.Identifier{table.FilterColumn}.Sanitize(),
	)

	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table.Name, mapPostgresError(err))
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()

	var out []export.Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s row: %w", table.Name, err)
		}

		row := make(export.Row, len(fields))
		for i, fd := range fields {
			row[i] = export.Field{
				Column: fd.Name,
				Value:  normalizeValue(fd.DataTypeOID, values[i]),
			}
		}
		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", table.Name, mapPostgresError(err))
	}

	return out, nil
}

// normalizeValue converts the values pgx decodes into types the export
// renderers understand.
func normalizeValue(oid uint32, v any) any {
	if v == nil {
		return nil
	}

	switch oid {
	case pgtype.JSONOID, pgtype.JSONBOID:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	}

	switch val := v.(type) {
	case [16]byte:
		return uuid.UUID(val)
	case pgtype.Numeric:
		if !val.Valid {
			return nil
		}
		if val.NaN || val.InfinityModifier != pgtype.Finite {
			s, err := val.Value()
			if err != nil {
				return nil
			}
			return s
		}
		b, err := val.MarshalJSON()
		if err != nil {
			return nil
		}
		return json.Number(b)
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = normalizeValue(0, e)
		}
		return out
	case driver.Valuer:
		dv, err := val.Value()
		if err != nil {
			return fmt.Sprint(v)
		}
		return dv
	}

	return v
}
