// scraper extracts product metadata (title, description, price, image) from retailer pages.
//
// Usage:
//
//	scraper extract <url>...
//	scraper batch --input urls.txt [--output out.csv] [--format csv|json|dual]
//	scraper serve [--listen :8080]
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/aluiziolira/go-scrape-products/config"
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath string
	verbose    bool
	timeout    time.Duration
	userAgent  string
}

var rootCmd = &cobra.Command{
	Use:   "scraper",
	Short: "Extract product metadata from retailer pages",
	Long: "scraper fetches a product page once and derives title, description, price,\n" +
		"currency and image using site adapters with generic fallbacks.",
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		logger, level := newLogger(rootFlags.verbose)
		slog.SetDefault(logger)
		slog.SetLogLoggerLevel(level.Level())
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&rootFlags.configPath, "config", "", "YAML config file")
	f.BoolVarP(&rootFlags.verbose, "verbose", "v", false, "Enable verbose logging")
	f.DurationVar(&rootFlags.timeout, "timeout", 0, "Fetch timeout, e.g. 10s")
	f.StringVar(&rootFlags.userAgent, "user-agent", "", "User-Agent header sent with every fetch")

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(adaptersCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig layers defaults, the YAML file, SCRAPER_* variables and finally any
// flag the user set explicitly on cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadFile(rootFlags.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("timeout") {
		cfg.Timeout = rootFlags.timeout
	}
	if flags.Changed("user-agent") {
		cfg.UserAgent = rootFlags.userAgent
	}
	if flags.Changed("verbose") {
		cfg.Verbose = rootFlags.verbose
	}
	if flags.Lookup("parallel") != nil && flags.Changed("parallel") {
		cfg.Parallelism = batchFlags.parallelism
	}
	if flags.Lookup("output") != nil && flags.Changed("output") {
		cfg.OutputFile = batchFlags.outputFile
	}
	if flags.Lookup("format") != nil && flags.Changed("format") {
		cfg.OutputFormat = strings.ToLower(batchFlags.outputFormat)
	}
	if flags.Lookup("metrics-addr") != nil && flags.Changed("metrics-addr") {
		cfg.MetricsAddr = batchFlags.metricsAddr
	}
	if flags.Lookup("listen") != nil && flags.Changed("listen") {
		cfg.ListenAddr = serveFlags.listenAddr
	}
	if flags.Lookup("mode") != nil && flags.Changed("mode") {
		cfg.ServerMode = serveFlags.mode
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	// Logs go to stderr so extract output on stdout stays machine-readable.
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stderr) {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
