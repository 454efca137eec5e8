package main

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aluiziolira/go-scrape-products/scraper"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract <url>...",
	Short: "Scrape one or more product URLs and print the results as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	s, err := scraper.NewScraper(cfg)
	if err != nil {
		return fmt.Errorf("initialising scraper: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")

	failed := 0
	for _, raw := range args {
		result, err := s.Scrape(cmd.Context(), raw)
		if err != nil {
			failed++
			slog.Error("extract failed",
				slog.String("url", raw),
				slog.String("category", scraper.ErrorType(err)),
				slog.Any("error", err),
			)
			continue
		}
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d urls failed", failed, len(args))
	}
	return nil
}
