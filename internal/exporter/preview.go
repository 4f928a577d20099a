package exporter

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"hospitalcli/pkg/contracts/domain"
)

// WritePreview prints the table name, its leading n rows and its shape.
// Absent cells show as NaN.
func WritePreview(w io.Writer, table domain.Table, n int) error {
	if table.Name != "" {
		if _, err := fmt.Fprintf(w, "%s\n", table.Name); err != nil {
			return err
		}
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "\t")
	for _, c := range table.Columns {
		fmt.Fprintf(tw, "%s\t", c)
	}
	fmt.Fprintln(tw)

	head := table.Head(n)
	for i, row := range head.Rows {
		fmt.Fprintf(tw, "%s\t", strconv.Itoa(i))
		for _, v := range row {
			fmt.Fprintf(tw, "%s\t", v)
		}
		fmt.Fprintln(tw)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	rows, cols := table.Shape()
	_, err := fmt.Fprintf(w, "Data shape: (%d, %d)\n\n", rows, cols)
	return err
}
