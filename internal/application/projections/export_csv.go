package projections

import (
	"encoding/csv"
	"io"
	"strconv"

	"onda/internal/application/catalog"
	"onda/internal/application/listutil"
)

// ExportColumn is one CSV column: the record key and its display header.
type ExportColumn struct {
	Name   string
	Header string
}

// ExportColumns lists every form column of e headed by the view's labels.
func ExportColumns(e catalog.Entry) []ExportColumn {
	out := make([]ExportColumn, len(e.Form.Columns))
	for i, c := range e.Form.Columns {
		out[i] = ExportColumn{Name: c, Header: e.Config.ColumnLabel(c)}
	}
	return out
}

// WriteCSV writes rows as CSV under a header row, in column order.
// Nil values become empty cells. Text a spreadsheet would evaluate as a
// formula is prefixed with a single quote.
func WriteCSV(w io.Writer, columns []ExportColumn, rows []listutil.Record) error {
	cw := csv.NewWriter(w)
	line := make([]string, len(columns))
	for i, c := range columns {
		line[i] = c.Header
	}
	if err := cw.Write(line); err != nil {
		return err
	}
	for _, r := range rows {
		for i, c := range columns {
			line[i] = escapeFormula(r.String(c.Name))
		}
		if err := cw.Write(line); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// escapeFormula neutralises cells starting with = + - @ or a tab/CR.
// Plain numbers such as "-3" are left alone.
func escapeFormula(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		if _, err := strconv.ParseFloat(s, 64); err == nil {
			return s
		}
		return "'" + s
	}
	return s
}
