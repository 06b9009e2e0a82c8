package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"auditfeed/internal/auditlog/models"
	"auditfeed/internal/auditlog/service"
	dErrors "auditfeed/pkg/domain-errors"
)

// maxWindowSpan is the widest window the listing endpoint serves in one call.
const maxWindowSpan = 24 * time.Hour

// acceptedTimeLayouts are tried in order when parsing --start-time/--end-time.
var acceptedTimeLayouts = []string{
	time.RFC3339,
	models.QueryTimeLayout,
	"2006-01-02T15:04",
	time.DateOnly,
}

type reportOptions struct {
	request service.ReportRequest
	output  outputFormat
	verbose bool
	debug   bool
	help    bool
}

func newReportFlagSet(stderr io.Writer) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("auditlog report", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringP("content-type", "c", "", "audit content type: "+strings.Join(categoryNames(), ", "))
	flagSet.StringP("start-time", "s", "", "start of the window (UTC unless an offset is given)")
	flagSet.StringP("end-time", "e", "", "end of the window; at most 24 hours after --start-time")
	flagSet.StringP("output", "o", string(outputJSON), "output format: json, yaml or text")
	flagSet.Bool("verbose", false, "log progress to stderr")
	flagSet.Bool("debug", false, "log debug detail to stderr")
	flagSet.BoolP("help", "h", false, "show help")
	return flagSet
}

// parseReportOptions parses and validates the report arguments. Every check
// here runs before any network call.
func parseReportOptions(flagSet *pflag.FlagSet, args []string) (*reportOptions, error) {
	if err := flagSet.Parse(args); err != nil {
		return nil, dErrors.Newf(dErrors.CodeValidation, "invalid arguments: %v", err)
	}
	if extra := flagSet.Args(); len(extra) > 0 {
		return nil, dErrors.Newf(dErrors.CodeValidation, "unexpected argument: %s", extra[0])
	}

	opts := &reportOptions{}
	opts.help, _ = flagSet.GetBool("help")
	if opts.help {
		return opts, nil
	}
	opts.verbose, _ = flagSet.GetBool("verbose")
	opts.debug, _ = flagSet.GetBool("debug")

	rawOutput, _ := flagSet.GetString("output")
	output, err := parseOutputFormat(rawOutput)
	if err != nil {
		return nil, err
	}
	opts.output = output

	rawCategory, _ := flagSet.GetString("content-type")
	if rawCategory == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "required option --content-type not specified")
	}
	category, err := models.ParseCategory(rawCategory)
	if err != nil {
		return nil, err
	}

	rawStart, _ := flagSet.GetString("start-time")
	rawEnd, _ := flagSet.GetString("end-time")
	window, err := parseWindow(rawStart, rawEnd)
	if err != nil {
		return nil, err
	}

	opts.request = service.ReportRequest{Category: category, Window: window}
	return opts, nil
}

func parseWindow(rawStart, rawEnd string) (models.TimeWindow, error) {
	start, err := parseOptionalTime("start-time", rawStart)
	if err != nil {
		return models.TimeWindow{}, err
	}
	end, err := parseOptionalTime("end-time", rawEnd)
	if err != nil {
		return models.TimeWindow{}, err
	}

	window, err := models.NewTimeWindow(start, end)
	if err != nil {
		return models.TimeWindow{}, err
	}
	if window.IsSet() {
		if !window.End.After(window.Start) {
			return models.TimeWindow{}, dErrors.New(dErrors.CodeValidation, "endTime must be after startTime")
		}
		if window.Span() > maxWindowSpan {
			return models.TimeWindow{}, dErrors.Newf(dErrors.CodeValidation,
				"startTime and endTime must be less than or equal to 24 hours apart (got %s)", window.Span())
		}
	}
	return window, nil
}

func parseOptionalTime(name, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	for _, layout := range acceptedTimeLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return &t, nil
		}
	}
	return nil, dErrors.Newf(dErrors.CodeValidation, "--%s %q is not a valid date/time", name, raw)
}

func categoryNames() []string {
	cats := models.Categories()
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = c.String()
	}
	return names
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `Retrieve audit log records for one content type of the current tenant.

Starts the content subscription when it is not yet active, lists the
available content (optionally bounded by a time window) and downloads the
records of at most %d content blobs, %d at a time.

Usage:
  auditlog report --content-type <type> [--start-time <t> --end-time <t>] [flags]

Flags:
`, service.DefaultCap, service.DefaultBatchSize)
	fmt.Fprint(w, flagSet.FlagUsages())
}
