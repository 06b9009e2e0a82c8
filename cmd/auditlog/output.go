package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"auditfeed/internal/auditlog/models"
	dErrors "auditfeed/pkg/domain-errors"
)

type outputFormat string

const (
	outputJSON outputFormat = "json"
	outputYAML outputFormat = "yaml"
	outputText outputFormat = "text"
)

// textColumns are the record properties shown in text mode.
var textColumns = []string{"Operation", "Id", "UserId", "Workload", "ClientIP"}

func parseOutputFormat(raw string) (outputFormat, error) {
	switch f := outputFormat(raw); f {
	case outputJSON, outputYAML, outputText:
		return f, nil
	}
	return "", dErrors.Newf(dErrors.CodeValidation, "%q is not a valid output format. Allowed values are json | yaml | text", raw)
}

func writeRecords(w io.Writer, format outputFormat, records []models.AuditRecord) error {
	switch format {
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case outputText:
		return writeTable(w, records)
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	}
}

func writeTable(w io.Writer, records []models.AuditRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, col := range textColumns {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, col)
	}
	fmt.Fprintln(tw)
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Operation, r.ID, r.Actor(), r.Workload, r.ClientIP)
	}
	return tw.Flush()
}
