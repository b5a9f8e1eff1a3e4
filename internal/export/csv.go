package export

import (
	"strings"
)

// CSVTable is the CSV text of one table.
type CSVTable struct {
	Table string
	Text  string
}

// CSVField renders v as a CSV cell. Values containing a comma, a double quote
// or a newline are quoted with inner quotes doubled.
func CSVField(v any) string {
	if classify(v) == kindNull {
		return ""
	}
	s := stringify(v)
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

// RenderCSV renders each non-empty table as a header line followed by one line
// per row. Lines are separated by "\n" with no trailing newline.
func RenderCSV(tables []TableRows) []CSVTable {
	var out []CSVTable

	for _, t := range tables {
		if len(t.Rows) == 0 {
			continue
		}

		// header comes from the first row, all rows of a table share columns
		cols := t.Rows[0].Columns()
		lines := make([]string, 0, len(t.Rows)+1)
		lines = append(lines, strings.Join(cols, ","))

		for _, row := range t.Rows {
			cells := make([]string, len(cols))
			for i, col := range cols {
				v, _ := row.Get(col)
				cells[i] = CSVField(v)
			}
			lines = append(lines, strings.Join(cells, ","))
		}

		out = append(out, CSVTable{Table: t.Table, Text: strings.Join(lines, "\n")})
	}

	return out
}

// CSVDocument concatenates the tables into one document, each preceded by a
// "--- TABLE: <name> ---" line.
func CSVDocument(tables []CSVTable) string {
	var sb strings.Builder
	for i, t := range tables {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString("--- TABLE: ")
		sb.WriteString(t.Table)
		sb.WriteString(" ---\n")
		sb.WriteString(t.Text)
	}
	if sb.Len() > 0 {
		sb.WriteString("\n")
	}
	return sb.String()
}
