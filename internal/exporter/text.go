package exporter

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"sheetcalc/pkg/contracts/domain"
)

// WriteText prints t as an aligned plain-text table for terminals. Numbers
// are shown with two decimals.
func WriteText(out io.Writer, t *domain.Table) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.Columns, "\t"))

	cells := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i := range cells {
			cells[i] = ""
			if i < len(row) {
				cells[i] = formatDecimal2(row[i])
			}
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}
