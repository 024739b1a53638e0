package generator

import (
	"bytes"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/BalanceBalls/timedoctor-reports/internal/report"
)

const clockLayout = "15:04"

// TextGenerator renders an aligned plain text table.
type TextGenerator struct{}

func (TextGenerator) Generate(rep report.Report) (Result, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s (%s)\n\n", rep.Kind, rep.Range)

	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	if rep.Kind == report.KindWebAppUsage {
		writeUsage(w, rep.Usage)
	} else {
		writeUsers(w, rep.Users)
	}

	if err := w.Flush(); err != nil {
		return Result{}, fmt.Errorf("failed to render text report: %w", err)
	}

	return Result{Name: FileName(rep, "txt"), Data: buf.Bytes()}, nil
}

func writeUsers(w io.Writer, rows []report.RowView) {
	fmt.Fprintln(w, "USER\tSTART\tEND\tTOTAL\tPRODUCTIVE\tUNPRODUCTIVE\tNEUTRAL")
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			row.Name, clock(row.StartTime), clock(row.EndTime),
			row.TotalTime, row.TotalProductiveTime, row.TotalUnproductiveTime, row.TotalNeutralTime)

		for _, c := range row.Categories {
			fmt.Fprintf(w, "  %s [%s]\t%s\t%s\t\t\t\t\n", c.Name, c.Channel, c.Rating, c.Total)
		}
	}
}

func writeUsage(w io.Writer, rows []report.UsageRow) {
	fmt.Fprintln(w, "EMPLOYEE\tTRACKED\tNAME\tRATING\tTIME\tHOURS\tMINUTES")
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			row.Employee, row.ActivityTracked, row.Name, row.Rating,
			row.TimeWorked, row.TotalTimeDecimal.StringFixed(2), row.TotalTimeMinutes)
	}
}

func clock(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(clockLayout)
}
