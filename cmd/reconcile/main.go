package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"

	"reqcheck/internal/config"
	"reqcheck/internal/exporter"
	"reqcheck/internal/infrastructure"
	"reqcheck/internal/loader"
	"reqcheck/internal/reconcile"
	"reqcheck/pkg/contracts/domain"
)

func main() {
	// .env is optional, environment wins either way.
	_ = godotenv.Load()

	var (
		historicalPath = flag.String("historical", "", "path to the consolidated historical log (xlsx or csv)")
		currentPath    = flag.String("current", "", "path to the current term requests file (xlsx or csv)")
		exportDir      = flag.String("export", "", "directory to write the with-history and new reports into (optional)")
		exportFormat   = flag.String("format", "xlsx", "export format: csv or xlsx")
	)
	flag.Parse()

	if *historicalPath == "" || *currentPath == "" {
		fmt.Fprintln(os.Stderr, "usage: reconcile -historical <file> -current <file> [-export <dir>] [-format csv|xlsx]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	if err := run(logger, cfg, *historicalPath, *currentPath, *exportDir, *exportFormat); err != nil {
		color.Red("Error: %v", err)
		logger.Error("reconciliation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(logger *slog.Logger, cfg *config.Config, historicalPath, currentPath, exportDir, exportFormat string) error {
	format := exporter.Format(exportFormat)
	if format != exporter.FormatCSV && format != exporter.FormatExcel {
		return fmt.Errorf("unknown export format %q", exportFormat)
	}

	ld := loader.New(logger, cfg.Upload.MaxRows)

	historical, err := ld.LoadFile(historicalPath)
	if err != nil {
		return err
	}
	current, err := ld.LoadFile(currentPath)
	if err != nil {
		return err
	}

	// Tag the offline run so its log lines carry a trace_id like server runs do.
	ctx := infrastructure.ContextWithTraceID(context.Background())

	pipeline := reconcile.NewPipeline(logger)
	result, err := pipeline.Run(ctx, historical, current)
	if err != nil {
		return err
	}

	printSummary(result)

	if exportDir != "" {
		if err := writeReports(result, exportDir, format); err != nil {
			return err
		}
	}

	return nil
}

func printSummary(res *domain.Result) {
	s := res.Summary

	for _, w := range res.Warnings {
		color.Yellow("Warning: %s", w.Message)
	}

	color.Cyan("\n=== Reconciliation Summary ===")

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Metric", "Value"})
	table.Append([]string{"Total requests", strconv.Itoa(s.TotalRequests)})
	table.Append([]string{"Distinct requesters", strconv.Itoa(s.DistinctRequesters)})
	table.Append([]string{"With history", fmt.Sprintf("%d (%.1f%%)", s.WithHistoryCount, s.WithHistoryPercent)})
	table.Append([]string{"New requesters", strconv.Itoa(s.NewCount)})
	table.Append([]string{"Approved (historical)", strconv.Itoa(s.ApprovedCount)})
	table.Append([]string{"Denied (historical)", strconv.Itoa(s.DeniedCount)})
	table.Append([]string{"Approval rate", fmt.Sprintf("%.1f%%", s.ApprovalRate)})
	table.Append([]string{reconcile.IssueTypeLabel(reconcile.IssuePrereqBreak), strconv.Itoa(s.PrereqBreakCount)})
	table.Append([]string{reconcile.IssueTypeLabel(reconcile.IssueScheduleConflict), strconv.Itoa(s.ScheduleConflictCount)})
	table.Render()

	if len(s.TopCourses) > 0 {
		color.Yellow("\nTop Courses")
		table = tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Course", "Requests"})
		for _, cc := range s.TopCourses {
			table.Append([]string{cc.Course, strconv.Itoa(cc.Count)})
		}
		table.Render()
	}

	if len(s.PeriodSeries) > 0 {
		color.Yellow("\nRequests by Period")
		table = tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Period", "Requests"})
		for _, pc := range s.PeriodSeries {
			table.Append([]string{pc.Period, strconv.Itoa(pc.Count)})
		}
		table.Render()
	}
}

func writeReports(res *domain.Result, dir string, format exporter.Format) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	now := time.Now()
	for _, name := range []string{exporter.ReportWithHistory, exporter.ReportNew} {
		report, err := exporter.BuildReport(name, res)
		if err != nil {
			return err
		}

		path := dir + string(os.PathSeparator) + exporter.FileName("relatorio_"+name, format, now)
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %q: %w", path, err)
		}

		switch format {
		case exporter.FormatExcel:
			err = exporter.NewExcelWriter().Write(f, report)
		default:
			err = exporter.NewCSVWriter().Write(f, report)
		}
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("failed to write %q: %w", path, err)
		}

		color.Green("Wrote %s", path)
	}

	return nil
}
