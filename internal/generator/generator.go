package generator

import (
	"fmt"

	"github.com/BalanceBalls/timedoctor-reports/internal/report"
)

type Generator interface {
	Generate(rep report.Report) (Result, error)
}

type Result struct {
	Name string
	Data []byte
}

// FileName names a rendered report after its kind and range start.
func FileName(rep report.Report, ext string) string {
	return fmt.Sprintf("%s-%s.%s", rep.Kind, rep.Range.From.Format("2006-01-02"), ext)
}
