package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"chessql/internal/server/service"
	"chessql/internal/server/storage"
)

const (
	formatTable = "table"
	formatCSV   = "csv"
	formatJSON  = "json"
)

// maxCellWidth truncates long table cells such as pgn_text
const maxCellWidth = 60

func checkFormat(format string) error {
	switch format {
	case formatTable, formatCSV, formatJSON:
		return nil
	}
	return fmt.Errorf("unknown format %q (table, csv, json)", format)
}

func printResult(res *service.QueryResult, format string) error {
	if format == formatJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	if err := writeRows(stdout, res.Results, format); err != nil {
		return err
	}
	if format == formatTable {
		fmt.Fprintf(stdout, "\n%d of %d row(s), page %d/%d\n", res.Count, res.TotalCount, res.PageNo, res.TotalPages)
	}
	return nil
}

// writeRows prints rows with the columns of the first row
func writeRows(w io.Writer, rows []storage.Row, format string) error {
	if len(rows) == 0 {
		if format == formatTable {
			fmt.Fprintln(w, "No rows")
		}
		return nil
	}
	columns := rows[0].Columns

	if format == formatCSV {
		cw := csv.NewWriter(w)
		if err := cw.Write(columns); err != nil {
			return err
		}
		for _, r := range rows {
			if err := cw.Write(cells(r, 0)); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(columns, "\t"))
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(cells(r, maxCellWidth), "\t"))
	}
	return tw.Flush()
}

// cells renders row values as text. A positive width truncates and flattens
// multi-line values for table output.
func cells(r storage.Row, width int) []string {
	out := make([]string, len(r.Values))
	for i, v := range r.Values {
		var s string
		switch v := v.(type) {
		case nil:
			s = "NULL"
		case string:
			s = v
		default:
			s = fmt.Sprint(v)
		}
		if width > 0 {
			s = strings.Join(strings.Fields(s), " ")
			if rs := []rune(s); len(rs) > width {
				s = string(rs[:width-3]) + "..."
			}
		}
		out[i] = s
	}
	return out
}
