package tools

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
)

// ShowTable renders header and data as a borderless table on w.
func ShowTable(w io.Writer, header []string, data [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)

	for _, v := range data {
		table.Append(v)
	}

	fmt.Fprintln(w)
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")
	table.Render()
	fmt.Fprintln(w)
}
