// Package exporter writes scraped listings to CSV artifacts and optionally
// uploads them to S3-compatible object storage.
package exporter

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"autojobfinder/internal/logging/types"
	"autojobfinder/pkg/models"
)

// Sentinel errors to allow precise mapping by callers
var (
	ErrWrite         = errors.New("write_failed")
	ErrStorageConfig = errors.New("storage_configuration")
	ErrUpload        = errors.New("upload_failed")
)

// Header is the first row of every artifact
var Header = []string{"platform", "title", "company", "location", "description", "url", "applied"}

// FileName returns the artifact name for a platform at t
func FileName(p models.Platform, t time.Time) string {
	return fmt.Sprintf("jobs_%s_%s.csv", p.Slug(), t.Format("20060102_150405"))
}

// WriteCSV writes the header and one row per listing
func WriteCSV(w io.Writer, listings []*models.JobListing) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, j := range listings {
		record := []string{
			string(j.Platform),
			j.Title,
			j.Company,
			j.Location,
			j.Description,
			j.URL,
			strconv.FormatBool(j.Applied),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSVExporter writes one timestamped file per call into a directory
type CSVExporter struct {
	dir    string
	logger types.Logger
	now    func() time.Time
}

// NewCSVExporter creates an exporter writing into dir
func NewCSVExporter(dir string, logger types.Logger) *CSVExporter {
	if dir == "" {
		dir = "."
	}
	return &CSVExporter{dir: dir, logger: logger, now: time.Now}
}

// Export writes listings to jobs_<platform>_<timestamp>.csv and returns its path
func (e *CSVExporter) Export(ctx context.Context, p models.Platform, listings []*models.JobListing) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrWrite, err)
	}

	path := filepath.Join(e.dir, FileName(p, e.now()))
	file, err := os.Create(path)
	if err != nil {
		e.logger.Error("Error saving jobs to CSV", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return "", fmt.Errorf("%w: %v", ErrWrite, err)
	}

	if err := WriteCSV(file, listings); err != nil {
		file.Close()
		e.logger.Error("Error saving jobs to CSV", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return "", fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrWrite, err)
	}

	return path, nil
}
