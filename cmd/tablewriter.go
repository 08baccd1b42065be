/*
tablewriter.go

MIT License

Copyright (c) Foxglove Technologies Inc

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

/*
 Adapted from https://github.com/foxglove/foxglove-cli/blob/main/foxglove/util/tablewriter/tablewriter.go
*/

package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const defaultTermWidth = 80

func cellWidths(headers []string, data [][]string) (int, []int) {
	widths := make([]int, len(headers))
	for i, header := range headers {
		widths[i] = len(header) + 4 // pad two spaces each side
	}
	for _, row := range data {
		for i, column := range row {
			if w := len(column) + 2; widths[i] < w {
				widths[i] = w
			}
		}
	}
	// size the cells so the headers can be center-spaced
	for i, header := range headers {
		if (widths[i]-len(header))%2 == 1 {
			widths[i]++
		}
	}
	tableWidth := len(headers) + 1
	for _, width := range widths {
		tableWidth += width
	}
	return tableWidth, widths
}

/*
printColumns outputs a table of records formatted like this:
|       Key        |    Name     |  Sources  |
|------------------|-------------|-----------|
| 6f1a2b3c4d5e6f70 | sales/daily | db/orders |
*/
func printColumns(w io.Writer, headers []string, data [][]string) {
	_, widths := cellWidths(headers, data)
	fmt.Fprint(w, "|")
	for i, header := range headers {
		padding := strings.Repeat(" ", (widths[i]-len(header))/2)
		fmt.Fprintf(w, "%s%s%s|", padding, header, padding)
	}
	fmt.Fprintln(w)
	fmt.Fprint(w, "|")
	for _, width := range widths {
		fmt.Fprintf(w, "%s|", strings.Repeat("-", width))
	}
	fmt.Fprintln(w)
	for _, row := range data {
		fmt.Fprint(w, "|")
		for i, col := range row {
			fmt.Fprintf(w, " %s%s|", col, strings.Repeat(" ", widths[i]-len(col)-1))
		}
		fmt.Fprintln(w)
	}
}

/*
printRecords outputs a series of records formatted like this, for terminals
too narrow for printColumns:

	-[ RECORD 1 ]+-----------------------------------
	Key          | 6f1a2b3c4d5e6f70
	Name         | sales/daily
*/
func printRecords(w io.Writer, termwidth int, headers []string, data [][]string) {
	var headerWidth, recordWidth int
	for _, header := range headers {
		headerWidth = max(headerWidth, len(header))
	}
	for _, row := range data {
		for _, col := range row {
			recordWidth = max(recordWidth, len(col))
		}
	}
	longest := fmt.Sprintf("-[ RECORD %d ]", len(data)+1)
	headerWidth = max(headerWidth, len(longest))

	// extend the dashes 15 past the widest record, unless that would wrap.
	extent := min(recordWidth+15, termwidth-headerWidth-1)
	dashes := strings.Repeat("-", max(extent, 0))
	for i, row := range data {
		recordHeader := fmt.Sprintf("-[ RECORD %d ]", i+1)
		fmt.Fprintf(w, "%s%s+%s\n", recordHeader, strings.Repeat("-", headerWidth-len(recordHeader)), dashes)
		for j, col := range row {
			fmt.Fprintf(w, "%-*s| %s\n", headerWidth, headers[j], col)
		}
	}
}

// termWidth reads the terminal width from $COLUMNS.
func termWidth() int {
	if cols, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && cols > 0 {
		return cols
	}
	return defaultTermWidth
}

// printTable prints data as columns if it fits within width, and as
// individual records otherwise.
func printTable(w io.Writer, width int, headers []string, data [][]string) {
	tableWidth, _ := cellWidths(headers, data)
	if width < tableWidth {
		printRecords(w, width, headers, data)
		return
	}
	printColumns(w, headers, data)
}
