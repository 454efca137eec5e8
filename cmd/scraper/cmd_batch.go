package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/aluiziolira/go-scrape-products/models"
	"github.com/aluiziolira/go-scrape-products/pipeline"
	"github.com/aluiziolira/go-scrape-products/scraper"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var batchFlags struct {
	inputPath    string
	outputFile   string
	outputFormat string
	parallelism  int
	metricsAddr  string
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Scrape a list of URLs into CSV and/or JSONL",
	Long: `Reads one URL per line from --input ("-" for stdin). Blank lines and lines
starting with # are ignored. Every distinct URL produces one output record; failed
URLs are written with their error.`,
	RunE: runBatch,
}

func init() {
	f := batchCmd.Flags()
	f.StringVarP(&batchFlags.inputPath, "input", "i", "", "File with one URL per line, or - for stdin (required)")
	f.StringVarP(&batchFlags.outputFile, "output", "o", "output/products.csv", "Output file path")
	f.StringVar(&batchFlags.outputFormat, "format", "csv", "Output format: csv, json, or dual")
	f.IntVarP(&batchFlags.parallelism, "parallel", "p", 4, "Number of concurrent fetches")
	f.StringVar(&batchFlags.metricsAddr, "metrics-addr", "", "Prometheus metrics listen address (e.g. :9090)")

	_ = batchCmd.MarkFlagRequired("input")
}

func runBatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	input, closeInput, err := openInput(batchFlags.inputPath, cmd.InOrStdin())
	if err != nil {
		return err
	}
	defer closeInput()

	slog.Info("starting batch",
		slog.String("input", batchFlags.inputPath),
		slog.Int("workers", cfg.Parallelism),
		slog.String("format", cfg.OutputFormat),
	)

	s, err := scraper.NewScraper(cfg)
	if err != nil {
		return fmt.Errorf("initialising scraper: %w", err)
	}

	writer, err := pipeline.NewWriter(cfg.OutputFormat, cfg.OutputFile)
	if err != nil {
		return fmt.Errorf("creating writer: %w", err)
	}
	var drainErr error
	defer func() { closeWriter(writer, drainErr) }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received, waiting for in-flight work to finish")
	}()

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" && s.Metrics != nil {
		metricsServer = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           promhttp.HandlerFor(s.Metrics.Registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	p := pipeline.NewPipeline(ctx, writer, cfg)
	p.Start(1)
	if cfg.Verbose {
		p.StartMetricsReporting(10 * time.Second)
	}

	readCtx, cancelRead := context.WithCancel(ctx)
	defer cancelRead()
	urls := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(urls)
		readErr <- readURLs(readCtx, input, urls)
	}()

	result, runErr := s.Run(ctx, urls, p)
	cancelRead()
	closeErr := p.Close()
	drainErr = closeErr

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("batch failed: %w", runErr)
	}
	if closeErr != nil {
		return fmt.Errorf("pipeline shutdown failed: %w", closeErr)
	}
	if err := <-readErr; err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if err := writer.Validate(); err != nil {
		return fmt.Errorf("output validation failed: %w", err)
	}

	printSummary(cmd.OutOrStdout(), result, cfg.OutputFile, p.GetMetrics())
	return nil
}

// closeWriter closes w unless the pipeline timed out draining, in which case a
// worker may still be inside w.Write.
func closeWriter(w pipeline.OutputWriter, drainErr error) bool {
	if errors.Is(drainErr, pipeline.ErrPipelineCloseTimeout) {
		slog.Warn("pipeline did not drain, leaving output writer open", slog.Any("error", drainErr))
		return false
	}
	if err := w.Close(); err != nil {
		slog.Error("close writer", slog.Any("error", err))
	}
	return true
}

func openInput(path string, stdin io.Reader) (io.Reader, func(), error) {
	if path == "-" {
		return stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	return f, func() { f.Close() }, nil
}

// readURLs streams non-blank, non-comment lines from r into out until r is
// exhausted or ctx is cancelled.
func readURLs(ctx context.Context, r io.Reader, out chan<- string) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		select {
		case out <- line:
		case <-ctx.Done():
			return nil
		}
	}
	return scanner.Err()
}

func printSummary(w io.Writer, result *models.BatchResult, outputFile string, metrics map[string]interface{}) {
	separator := "--------------------------------------------------"
	fmt.Fprintln(w, "\n"+separator)
	fmt.Fprintln(w, "Batch complete")

	written := int64(0)
	if processed, ok := metrics["processed_records"].(int64); ok {
		written = processed
	}

	duration := result.Duration()
	successRate := 0.0
	if result.TotalCount > 0 {
		successRate = float64(result.SuccessCount) / float64(result.TotalCount) * 100
	}
	urlsPerSec := 0.0
	if duration.Seconds() > 0 {
		urlsPerSec = float64(result.TotalCount) / duration.Seconds()
	}

	fmt.Fprintf(w, "  URLs scraped:  %d\n", result.TotalCount)
	fmt.Fprintf(w, "  Records:       %d\n", written)
	fmt.Fprintf(w, "  Success rate:  %.2f%%\n", successRate)
	fmt.Fprintf(w, "  Errors:        %d\n", result.ErrorCount)
	fmt.Fprintf(w, "  Duplicates:    %d\n", result.DuplicateCount)
	if valErrors, ok := metrics["validation_errors"].(map[string]int); ok && len(valErrors) > 0 {
		fmt.Fprintf(w, "  Validation:    %v\n", valErrors)
	}
	fmt.Fprintf(w, "  Duration:      %v\n", duration.Round(time.Millisecond))
	fmt.Fprintf(w, "  URLs/sec:      %.2f\n", urlsPerSec)
	fmt.Fprintf(w, "  Output file:   %s\n", outputFile)
	fmt.Fprintln(w, separator)

	if len(result.ErrorsByType) > 0 {
		renderErrorBreakdown(w, result.ErrorsByType)
	}
}

func renderErrorBreakdown(w io.Writer, errorsByType map[string]int) {
	categories := make([]string, 0, len(errorsByType))
	for category := range errorsByType {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Error type", "Count"})
	for _, category := range categories {
		t.AppendRow(table.Row{category, errorsByType[category]})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}
