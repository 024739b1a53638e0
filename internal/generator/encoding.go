package generator

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/BalanceBalls/timedoctor-reports/internal/report"
)

type JsonGenerator struct{}

func (JsonGenerator) Generate(rep report.Report) (Result, error) {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return Result{}, fmt.Errorf("failed to encode json report: %w", err)
	}

	return Result{Name: FileName(rep, "json"), Data: append(data, '\n')}, nil
}

type YamlGenerator struct{}

func (YamlGenerator) Generate(rep report.Report) (Result, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(rep); err != nil {
		return Result{}, fmt.Errorf("failed to encode yaml report: %w", err)
	}
	if err := enc.Close(); err != nil {
		return Result{}, fmt.Errorf("failed to encode yaml report: %w", err)
	}

	return Result{Name: FileName(rep, "yaml"), Data: buf.Bytes()}, nil
}
