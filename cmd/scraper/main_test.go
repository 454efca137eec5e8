package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/aluiziolira/go-scrape-products/models"
	"github.com/aluiziolira/go-scrape-products/pipeline"
	"github.com/google/go-cmp/cmp"
)

func TestReadURLs(t *testing.T) {
	input := strings.NewReader(`
# wishlist import
https://www.amazon.com/dp/B0

  shop.example/widget  
#https://skipped.example
https://www.etsy.com/listing/1
`)

	out := make(chan string, 8)
	if err := readURLs(context.Background(), input, out); err != nil {
		t.Fatalf("read urls: %v", err)
	}
	close(out)

	var got []string
	for u := range out {
		got = append(got, u)
	}
	want := []string{"https://www.amazon.com/dp/B0", "shop.example/widget", "https://www.etsy.com/listing/1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("urls mismatch (-want +got):\n%s", diff)
	}
}

func TestReadURLsStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := make(chan string)
	done := make(chan error, 1)
	go func() {
		done <- readURLs(ctx, strings.NewReader("https://a.example\nhttps://b.example\n"), out)
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected nil error on cancel, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("readURLs did not stop after cancel")
	}
}

func TestLoadConfigFlagsOverride(t *testing.T) {
	t.Setenv("SCRAPER_PARALLEL", "8")

	cmd := batchCmd
	if err := cmd.ParseFlags([]string{"--parallel", "2", "--format", "JSON", "--input", "urls.txt"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	t.Cleanup(func() {
		cmd.Flags().Set("parallel", "4")
		cmd.Flags().Set("format", "csv")
		for _, name := range []string{"parallel", "format", "input"} {
			cmd.Flags().Lookup(name).Changed = false
		}
	})

	cfg, err := loadConfig(cmd)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Parallelism != 2 {
		t.Fatalf("parallelism = %d, want flag value 2 over env 8", cfg.Parallelism)
	}
	if cfg.OutputFormat != "json" {
		t.Fatalf("format = %q, want json", cfg.OutputFormat)
	}
}

func TestLoadConfigEnvWithoutFlags(t *testing.T) {
	t.Setenv("SCRAPER_PARALLEL", "6")
	t.Setenv("SCRAPER_TIMEOUT", "3s")

	cfg, err := loadConfig(extractCmd)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Parallelism != 6 || cfg.Timeout != 3*time.Second {
		t.Fatalf("env not applied: parallelism=%d timeout=%v", cfg.Parallelism, cfg.Timeout)
	}
}

func TestAdaptersCommandListsRoutingOrder(t *testing.T) {
	var out strings.Builder
	adaptersCmd.SetOut(&out)
	t.Cleanup(func() { adaptersCmd.SetOut(nil) })

	adaptersCmd.Run(adaptersCmd, nil)

	got := out.String()
	amazon := strings.Index(got, "amazon")
	etsy := strings.Index(got, "etsy")
	generic := strings.Index(got, "generic")
	if amazon < 0 || etsy < 0 || generic < 0 {
		t.Fatalf("missing adapters in output:\n%s", got)
	}
	if !(amazon < etsy && etsy < generic) {
		t.Fatalf("adapters out of routing order:\n%s", got)
	}
	if !strings.Contains(got, "fallback") {
		t.Fatalf("generic should be marked as fallback:\n%s", got)
	}
}

func TestRenderErrorBreakdown(t *testing.T) {
	var out strings.Builder
	renderErrorBreakdown(&out, map[string]int{"timeout": 2, "not_found": 1})

	got := out.String()
	if strings.Index(got, "not_found") > strings.Index(got, "timeout") {
		t.Fatalf("categories should be sorted:\n%s", got)
	}
	if !strings.Contains(strings.ToUpper(got), "ERROR TYPE") {
		t.Fatalf("missing header:\n%s", got)
	}
}

type trackingWriter struct {
	closed bool
}

func (w *trackingWriter) Write([]*models.Record) error { return nil }
func (w *trackingWriter) Validate() error { return nil }
func (w *trackingWriter) Close() error {
	w.closed = true
	return nil
}

func TestCloseWriterAfterDrainTimeout(t *testing.T) {
	tests := []struct {
		name       string
		drainErr   error
		wantClosed bool
	}{
		{name: "clean drain", drainErr: nil, wantClosed: true},
		{name: "writer error", drainErr: errors.New("write batch: disk full"), wantClosed: true},
		{name: "drain timeout", drainErr: fmt.Errorf("%w after 30s", pipeline.ErrPipelineCloseTimeout), wantClosed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &trackingWriter{}
			if got := closeWriter(w, tt.drainErr); got != tt.wantClosed {
				t.Fatalf("closeWriter() = %v, want %v", got, tt.wantClosed)
			}
			if w.closed != tt.wantClosed {
				t.Fatalf("writer closed = %v, want %v", w.closed, tt.wantClosed)
			}
		})
	}
}
