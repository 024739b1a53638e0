package htmlgenerator

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/BalanceBalls/timedoctor-reports/internal/generator"
	"github.com/BalanceBalls/timedoctor-reports/internal/report"
)

//go:embed *.tmpl
var tpls embed.FS

const DefaultTemplate = "html_report.tmpl"

type HtmlGenerator struct {
	tmplName string
	tmpl     *template.Template
}

var funcs = template.FuncMap{
	"clock": func(t *time.Time) string {
		if t == nil {
			return "-"
		}
		return t.Format("15:04")
	},
}

func New(tmplName string) (*HtmlGenerator, error) {
	if tmplName == "" {
		tmplName = DefaultTemplate
	}

	tmpl, err := template.New(tmplName).Funcs(funcs).ParseFS(tpls, tmplName)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template file for html report: %w", err)
	}

	return &HtmlGenerator{tmplName: tmplName, tmpl: tmpl}, nil
}

func (g *HtmlGenerator) Generate(rep report.Report) (generator.Result, error) {
	var buf bytes.Buffer
	if err := g.tmpl.ExecuteTemplate(&buf, g.tmplName, rep); err != nil {
		return generator.Result{}, fmt.Errorf("failed to generate an html report: %w", err)
	}

	return generator.Result{Name: generator.FileName(rep, "html"), Data: buf.Bytes()}, nil
}
