package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"wordmetrics/adapters/excel"
	"wordmetrics/app"
	dm "wordmetrics/domain/metrics"
	"wordmetrics/internal"
	"wordmetrics/internal/config"
	"wordmetrics/internal/errors"
	"wordmetrics/internal/metrics"
	"wordmetrics/internal/report"
)

type processOptions struct {
	job       config.Job
	jobPath   string
	precision int
	preview   int
	workers   int
	// set records which flags were given, so they override the job file.
	set map[string]bool
}

func newProcessCmd() *cobra.Command {
	opts := processOptions{}

	cmd := &cobra.Command{
		Use:   "process <file>",
		Short: "Compute statement-level or id-level metrics for a CSV, XLSX or JSON file",
		Long: `Compute tactic metrics for an annotated dataset.

Example: wordmetrics process posts.csv --id post_id --text statement --classifier has_urgency,has_scarcity --mode id --out results.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.set = map[string]bool{}
			for _, name := range []string{"id", "text", "classifier", "mode", "naming", "precision", "out", "format"} {
				opts.set[name] = cmd.Flags().Changed(name)
			}
			return runProcess(cmd.Context(), args[0], opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.job.IDColumn, "id", "", "Identity column (post or author id)")
	cmd.Flags().StringVar(&opts.job.TextColumn, "text", "", "Statement text column")
	cmd.Flags().StringSliceVar(&opts.job.ClassifierColumns, "classifier", nil, "Classifier columns (repeat or comma-separate)")
	cmd.Flags().StringVar(&opts.job.Mode, "mode", "", "statement_level (default) or id_level_aggregate")
	cmd.Flags().StringVar(&opts.job.TermsNaming, "naming", "", "Found-terms column rule: strip_has_prefix or verbatim")
	cmd.Flags().IntVar(&opts.precision, "precision", 2, "Decimals kept in percentages, -1 for unrounded")
	cmd.Flags().StringVar(&opts.job.Output, "out", "", "Write results to this file")
	cmd.Flags().StringVar(&opts.job.Format, "format", "", "Output format: csv, xlsx, json, md or html (default from --out extension)")
	cmd.Flags().IntVar(&opts.preview, "preview", 10, "Rows to print, -1 for all")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Transform workers (default TRANSFORM_WORKERS)")
	cmd.Flags().StringVar(&opts.jobPath, "job", "", "YAML job file; flags override its values")

	return cmd
}

func runProcess(ctx context.Context, path string, opts processOptions, stdout io.Writer) error {
	appConfig, err := config.Load()
	if err != nil {
		return err
	}

	job, err := mergeJob(opts)
	if err != nil {
		return err
	}
	cfg, err := job.MetricsConfig(appConfig.Transform)
	if err != nil {
		return err
	}

	workers := appConfig.Transform.Workers
	if opts.workers > 0 {
		workers = opts.workers
	}
	// Keep stdout to the result tables unless LOG_LEVEL asks for more.
	level := internal.LogLevelWarn
	if os.Getenv("LOG_LEVEL") != "" {
		level, _ = internal.ParseLogLevel(appConfig.LogLevel)
	}
	logger := internal.NewLogger(level)
	defer logger.Sync()

	service := app.NewMetricsService(
		excel.NewReader(excel.DefaultReaderConfig()).WithLogger(logger),
		metrics.NewTransformer(metrics.WithWorkers(workers), metrics.WithLogger(logger)),
		logger,
	)

	f, err := os.Open(path)
	if err != nil {
		return errors.InputReadFailed(err)
	}
	defer f.Close()

	result, err := service.Process(ctx, app.ProcessRequest{Filename: filepath.Base(path), Data: f, Config: cfg})
	if err != nil {
		return err
	}

	if opts.preview != 0 {
		if err := printResult(stdout, result, opts.preview); err != nil {
			return err
		}
	}
	if job.Output == "" {
		return nil
	}
	if err := writeOutput(job.Output, job.Format, result); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Wrote %s (%d rows)\n", job.Output, result.OutputRows)
	return nil
}

// mergeJob loads the job file, if any, and lays the given flags over it.
func mergeJob(opts processOptions) (config.Job, error) {
	job := config.Job{}
	if opts.jobPath != "" {
		loaded, err := config.LoadJob(opts.jobPath)
		if err != nil {
			return job, err
		}
		job = *loaded
	}

	flag := opts.job
	if opts.set["id"] || job.IDColumn == "" {
		job.IDColumn = flag.IDColumn
	}
	if opts.set["text"] || job.TextColumn == "" {
		job.TextColumn = flag.TextColumn
	}
	if opts.set["classifier"] || len(job.ClassifierColumns) == 0 {
		job.ClassifierColumns = flag.ClassifierColumns
	}
	if opts.set["mode"] {
		job.Mode = flag.Mode
	}
	if opts.set["naming"] {
		job.TermsNaming = flag.TermsNaming
	}
	if opts.set["precision"] {
		p := opts.precision
		job.PercentPrecision = &p
	}
	if opts.set["out"] {
		job.Output = flag.Output
	}
	if opts.set["format"] {
		job.Format = flag.Format
	}
	return job, nil
}

func printResult(w io.Writer, result *dm.Result, n int) error {
	fmt.Fprintf(w, "Run %s: %s, %d rows in, %d rows out\n", result.RunID, result.Mode, result.InputRows, result.OutputRows)
	if err := report.RenderText(w, result.Table, n); err != nil {
		return err
	}
	if result.ImpactTable != nil {
		return report.RenderText(w, *result.ImpactTable, -1)
	}
	return nil
}

// outputFormat picks the export format from the flag or the file extension.
func outputFormat(path, format string) string {
	if format != "" {
		return strings.ToLower(format)
	}
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")); ext {
	case "":
		return "csv"
	case "markdown":
		return "md"
	case "htm":
		return "html"
	default:
		return ext
	}
}

func writeOutput(path, format string, result *dm.Result) error {
	var data []byte
	switch format = outputFormat(path, format); format {
	case "json":
		b, err := json.MarshalIndent(fullResult{Result: result, Statements: result.Statements, Identities: result.Identities, Impact: result.Impact}, "", "  ")
		if err != nil {
			return errors.ExportFailed("failed to encode JSON", err)
		}
		data = append(b, '\n')
	case "md":
		data = []byte(report.Markdown(result, -1))
	case "html":
		data = report.HTML(result, -1)
	default:
		writer, err := excel.WriterFor(format)
		if err != nil {
			return err
		}
		f, err := os.Create(path)
		if err != nil {
			return errors.ExportFailed("failed to create output file", err)
		}
		if err := app.Export(f, writer, result); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return errors.ExportFailed("failed to close output file", err)
		}
		return nil
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.ExportFailed("failed to write output file", err)
	}
	return nil
}

// fullResult adds the typed records, which the API preview leaves out.
type fullResult struct {
	*dm.Result
	Statements []dm.StatementRecord `json:"statements,omitempty"`
	Identities []dm.IdentityRecord  `json:"identities,omitempty"`
	Impact     []dm.ImpactRow       `json:"impact_summary,omitempty"`
}
