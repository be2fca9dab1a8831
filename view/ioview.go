package view

import (
	"errors"
	"fmt"
	"github.com/abalx/nginx-log-analyzer/stat"
	"io"
	"text/tabwriter"
)

const sep = "_________________________________"

/*
A component used to print the run summary to the specified writer.

Responsibilities:
	- print parse totals for the whole file
	- print the top report rows as a table

Attention:
	- this component allocates a lot, but it shouldn't be a problem
	because it runs once per analysis
*/
type IOView struct {
	output  io.Writer
	topRows int
}

func NewIOView(output io.Writer, topRows int) (*IOView, error) {
	if output == nil {
		return nil, errors.New("output can't be nil")
	}
	if topRows <= 0 {
		return nil, errors.New("topRows should be positive")
	}
	return &IOView{output: output, topRows: topRows}, nil
}

func (v *IOView) PrintSummary(totalLines uint64, failedLines uint64, rows []stat.Row) {
	v.printTotals(totalLines, failedLines)
	v.printURLTop(rows)
}

func (v *IOView) printTotals(totalLines uint64, failedLines uint64) {
	_, _ = fmt.Fprintf(v.output, "\n|\n| Run Summary\n")
	w := v.newTable()
	v.printRowToTable(w, "|%s\t%s\n", sep, sep)

	v.printRowToTable(w, "| Total Lines\t %29d\n", totalLines)
	v.printRowToTable(w, "|%s\t%s\n", sep, sep)

	v.printRowToTable(w, "| Parsed Lines\t %29d\n", totalLines-failedLines)
	v.printRowToTable(w, "|%s\t%s\n", sep, sep)

	v.printRowToTable(w, "| Failed Lines\t %29d\n", failedLines)
	v.printRowToTable(w, "|%s\t%s\n", sep, sep)

	v.finishTable(w)
}

func (v *IOView) printURLTop(rows []stat.Row) {
	if len(rows) == 0 {
		return
	}
	if len(rows) > v.topRows {
		rows = rows[:v.topRows]
	}

	_, _ = fmt.Fprintf(v.output, "|\n| URL TOP by total time\n")
	w := v.newTable()
	v.printRowToTable(w, "|%s\t%s\t%s\t%s\t%s\t%s\n", sep, sep, sep, sep, sep, sep)

	v.printRowToTable(w, "| URL\t Requests\t Time Sum\t Time Avg\t Time p95\t Time Max\n")
	v.printRowToTable(w, "|%s\t%s\t%s\t%s\t%s\t%s\n", sep, sep, sep, sep, sep, sep)

	for _, row := range rows {
		v.printRowToTable(
			w, "| %v\t %10d\t %14.3f\t %14.3f\t %14.3f\t %14.3f\n",
			row.URL, row.Count, row.TimeSum, row.TimeAvg, row.TimeP95, row.TimeMax,
		)
		v.printRowToTable(w, "|%s\t%s\t%s\t%s\t%s\t%s\n", sep, sep, sep, sep, sep, sep)
	}
	v.finishTable(w)
}

func (v *IOView) newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(v.output, 0, 0, 1, ' ', tabwriter.AlignRight)
}

func (v *IOView) printRowToTable(w *tabwriter.Writer, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(w, format, args...)
}

func (v *IOView) finishTable(w *tabwriter.Writer) {
	_ = w.Flush()
}
