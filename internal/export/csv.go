package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sebastiankruger/motorfleet-simulator/internal/factory"
)

// CSVWriter streams telemetry records to a CSV file with a stable column
// order. It is not safe for concurrent use; callers serialize writes.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
	path   string
	rows   int
}

// NewCSVWriter creates the output file and writes the header row. The run id
// in the filename keeps repeated exports from clobbering each other.
func NewCSVWriter(dir, prefix string) (*CSVWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating export directory: %w", err)
	}

	runID := uuid.New().String()[:8]
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.csv", prefix, runID))
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating export file: %w", err)
	}

	w := &CSVWriter{
		file:   file,
		writer: csv.NewWriter(file),
		path:   path,
	}
	if err := w.writer.Write(factory.RecordColumns); err != nil {
		file.Close()
		return nil, fmt.Errorf("writing CSV header: %w", err)
	}
	return w, nil
}

// Path returns the file the writer streams to.
func (w *CSVWriter) Path() string {
	return w.path
}

// Write appends a batch of records.
func (w *CSVWriter) Write(records []factory.Record) error {
	for _, r := range records {
		if err := w.writer.Write(r.Row()); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	w.rows += len(records)
	return nil
}

// Close flushes and closes the file.
func (w *CSVWriter) Close() error {
	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		w.file.Close()
		return fmt.Errorf("flushing CSV: %w", err)
	}
	log.Info().Str("path", w.path).Int("rows", w.rows).Msg("CSV export finished")
	return w.file.Close()
}
