package utils

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/Lumos-Labs-HQ/cohortgen/internal/types"
)

// RenderTable draws records as a box table. Nulls print as NULL.
func RenderTable(w io.Writer, columns []string, rows []types.Record) {
	if len(rows) == 0 {
		return
	}

	colWidths := make(map[string]int, len(columns))
	for _, col := range columns {
		colWidths[col] = utf8.RuneCountInString(col)
	}
	for _, row := range rows {
		for _, col := range columns {
			if n := utf8.RuneCountInString(formatValue(row[col])); n > colWidths[col] {
				colWidths[col] = n
			}
		}
	}

	border := func(left, mid, right string) {
		fmt.Fprint(w, left)
		for i, col := range columns {
			fmt.Fprint(w, strings.Repeat("─", colWidths[col]+2))
			if i < len(columns)-1 {
				fmt.Fprint(w, mid)
			}
		}
		fmt.Fprintln(w, right)
	}
	line := func(value func(col string) string) {
		fmt.Fprint(w, "│")
		for _, col := range columns {
			v := value(col)
			fmt.Fprintf(w, " %s%s │", v, strings.Repeat(" ", colWidths[col]-utf8.RuneCountInString(v)))
		}
		fmt.Fprintln(w)
	}

	border("┌", "┬", "┐")
	line(func(col string) string { return col })
	border("├", "┼", "┤")
	for _, row := range rows {
		line(func(col string) string { return formatValue(row[col]) })
	}
	border("└", "┴", "┘")
}

func formatValue(val interface{}) string {
	if val == nil {
		return "NULL"
	}
	return types.FormatValue(val)
}
