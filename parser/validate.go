package parser

import (
	"fmt"
	"strings"

	"github.com/aluiziolira/go-scrape-products/models"
)

// ValidateResult ensures a result honours the record invariants before it is written out.
func ValidateResult(r *models.ExtractionResult) error {
	if r == nil {
		return fmt.Errorf("result is nil")
	}
	if strings.TrimSpace(r.SourceURL) == "" {
		return fmt.Errorf("result missing source url")
	}
	if (r.Price == nil) != (r.Currency == nil) {
		return fmt.Errorf("price and currency must be set together for %s", r.SourceURL)
	}
	if r.Price != nil && *r.Price < 0 {
		return fmt.Errorf("negative price for %s", r.SourceURL)
	}
	for name, field := range map[string]*string{
		"title":       r.Title,
		"description": r.Description,
		"image":       r.ImageURL,
	} {
		if field != nil && strings.TrimSpace(*field) == "" {
			return fmt.Errorf("result has empty %s for %s", name, r.SourceURL)
		}
	}
	return nil
}
