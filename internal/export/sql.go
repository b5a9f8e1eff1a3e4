package export

import (
	"strings"
	"time"
)

// SQLLiteral renders v as a SQL literal.
func SQLLiteral(v any) string {
	switch classify(v) {
	case kindNull:
		return "NULL"
	case kindBool:
		if stringify(v) == "true" {
			return "TRUE"
		}
		return "FALSE"
	case kindNumber:
		return stringify(v)
	case kindSequence:
		elems := elements(v)
		parts := make([]string, len(elems))
		for i, e := range elems {
			if classify(e) == kindNull {
				parts[i] = "NULL"
				continue
			}
			parts[i] = quoteSQL(stringify(e))
		}
		return "ARRAY[" + strings.Join(parts, ",") + "]::text[]"
	default:
		return quoteSQL(stringify(v))
	}
}

func quoteSQL(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// RenderSQL writes a header followed by one INSERT per row. Tables without
// rows are left out.
func RenderSQL(tenantID string, generatedAt time.Time, tables []TableRows) string {
	var sb strings.Builder

	sb.WriteString("-- Export for organization: ")
	sb.WriteString(tenantID)
	sb.WriteString("\n-- Generated at: ")
	sb.WriteString(generatedAt.UTC().Format(headerTimeLayout))
	sb.WriteString("\n\n")

	for _, t := range tables {
		if len(t.Rows) == 0 {
			continue
		}

		sb.WriteString("-- Table: ")
		sb.WriteString(t.Table)
		sb.WriteString("\n")

		for _, row := range t.Rows {
			values := make([]string, len(row))
			for i, f := range row {
				values[i] = SQLLiteral(f.Value)
			}

			sb.WriteString("INSERT INTO public.")
			sb.WriteString(t.Table)
			sb.WriteString(" (")
			sb.WriteString(strings.Join(row.Columns(), ", "))
			sb.WriteString(") VALUES (")
			sb.WriteString(strings.Join(values, ", "))
			sb.WriteString(");\n")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// ISO 8601 with millisecond precision in UTC.
const headerTimeLayout = "2006-01-02T15:04:05.000Z07:00"
