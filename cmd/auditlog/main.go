// Command auditlog retrieves Office 365 management activity records for the
// signed-in tenant and prints them as JSON, YAML or a text table.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"auditfeed/internal/auditlog/client"
	"auditfeed/internal/auditlog/credential"
	"auditfeed/internal/auditlog/service"
	"auditfeed/internal/auditlog/tracer"
	"auditfeed/internal/platform/config"
	"auditfeed/internal/platform/logger"
	dErrors "auditfeed/pkg/domain-errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if dErrors.HasCode(err, dErrors.CodeValidation) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		printUsage(stderr)
		return dErrors.New(dErrors.CodeValidation, "missing command")
	}
	switch args[0] {
	case "report":
		return runReport(ctx, args[1:], stdout, stderr)
	case "help", "-h", "--help":
		printUsage(stdout)
		return nil
	}
	return dErrors.Newf(dErrors.CodeValidation, "unknown command %q", args[0])
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `Usage: auditlog <command> [flags]

Commands:
  report    retrieve audit log records for one content type

Run "auditlog report --help" for the report flags. Connection settings are
read from AUDITFEED_* environment variables or the YAML file named by
AUDITFEED_CONFIG.
`)
}

func runReport(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	flagSet := newReportFlagSet(stderr)
	opts, err := parseReportOptions(flagSet, args)
	if err != nil {
		return err
	}
	if opts.help {
		printHelp(stdout, flagSet)
		return nil
	}

	log := logger.New(stderr, logger.LevelFromFlags(opts.verbose, opts.debug))

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return dErrors.Newf(dErrors.CodeValidation, "invalid configuration: %v", err)
	}

	tenantID, err := credential.Resolve(cfg.API.TenantID, cfg.API.AccessToken)
	if err != nil {
		return err
	}
	publisherID := cfg.API.PublisherID
	if publisherID == "" {
		publisherID = tenantID
	}

	api, err := client.New(cfg.API.ServiceURL, tenantID, cfg.API.AccessToken,
		client.WithTimeout(cfg.API.RequestTimeout),
	)
	if err != nil {
		return err
	}

	svc := service.New(api, publisherID,
		service.WithLogger(log),
		service.WithTracer(tracer.NewOTel()),
		service.WithFetchTimeout(cfg.API.RequestTimeout),
	)

	records, err := svc.Report(ctx, opts.request)
	if err != nil {
		return err
	}
	if err := writeRecords(stdout, opts.output, records); err != nil {
		return err
	}

	if opts.verbose {
		fmt.Fprintln(stderr, "DONE")
	}
	return nil
}
