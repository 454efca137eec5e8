package pipeline

import (
	"errors"
	"fmt"
	"sync"

	"github.com/aluiziolira/go-scrape-products/models"
)

// MultiWriter fans every batch out to a fixed set of writers. A batch is
// offered to each writer in order; the first failure stops the fan-out.
type MultiWriter struct {
	mu      sync.Mutex
	writers []namedWriter
}

type namedWriter struct {
	name string
	w    OutputWriter
}

// NewDualWriter writes the same records as CSV to csvFilename and as JSON lines to jsonFilename.
func NewDualWriter(csvFilename, jsonFilename string) (*MultiWriter, error) {
	csvWriter, err := NewCSVWriter(csvFilename)
	if err != nil {
		return nil, fmt.Errorf("create csv writer: %w", err)
	}
	jsonWriter, err := NewJSONWriter(jsonFilename)
	if err != nil {
		_ = csvWriter.Close()
		return nil, fmt.Errorf("create json writer: %w", err)
	}

	mw := &MultiWriter{}
	mw.add("csv", csvWriter)
	mw.add("json", jsonWriter)
	return mw, nil
}

func (mw *MultiWriter) add(name string, w OutputWriter) {
	mw.writers = append(mw.writers, namedWriter{name: name, w: w})
}

func (mw *MultiWriter) Write(records []*models.Record) error {
	mw.mu.Lock()
	defer mw.mu.Unlock()

	for _, nw := range mw.writers {
		if err := nw.w.Write(records); err != nil {
			return fmt.Errorf("%s write: %w", nw.name, err)
		}
	}
	return nil
}

// Close closes every writer, even when an earlier one fails.
func (mw *MultiWriter) Close() error {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	return mw.each("close", OutputWriter.Close)
}

func (mw *MultiWriter) Validate() error {
	return mw.each("validate", OutputWriter.Validate)
}

func (mw *MultiWriter) each(op string, fn func(OutputWriter) error) error {
	var errs []error
	for _, nw := range mw.writers {
		if err := fn(nw.w); err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", nw.name, op, err))
		}
	}
	return errors.Join(errs...)
}
