// Package storage writes run results to disk: a timestamped JSON dump of
// the scraped records and a summary report alongside it.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/buslane/bus-scraper/internal/models"
)

// Writer persists run outputs into a directory.
type Writer struct {
	dir string
}

func NewWriter(dir string) (*Writer, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Writer{dir: dir}, nil
}

// Report summarizes one scraping run.
type Report struct {
	GeneratedAt time.Time      `json:"generated_at"`
	TotalFound  int            `json:"total_found"`
	TotalStored int            `json:"total_stored"`
	Skipped     int            `json:"skipped"`
	Failed      int            `json:"failed"`
	ByMake      map[string]int `json:"by_make"`
	ByYear      map[string]int `json:"by_year"`
	ByRegion    map[string]int `json:"by_region"`
}

// NewReport tallies the scraped records by make, year and region.
func NewReport(records []models.ListingRecord, totalFound, skipped, failed int) *Report {
	report := &Report{
		GeneratedAt: time.Now(),
		TotalFound:  totalFound,
		TotalStored: len(records),
		Skipped:     skipped,
		Failed:      failed,
		ByMake:      make(map[string]int),
		ByYear:      make(map[string]int),
		ByRegion:    make(map[string]int),
	}

	for _, rec := range records {
		report.ByMake[keyOrUnknown(rec.Vehicle.Make)]++
		report.ByYear[keyOrUnknown(rec.Vehicle.Year)]++
		report.ByRegion[keyOrUnknown(rec.Vehicle.USRegion)]++
	}
	return report
}

// SaveListings writes the records to a timestamped JSON file and returns
// its path.
func (w *Writer) SaveListings(records []models.ListingRecord) (string, error) {
	name := fmt.Sprintf("bus_listings_%s.json", time.Now().Format("20060102_150405"))
	path := filepath.Join(w.dir, name)
	if err := w.writeJSON(path, records); err != nil {
		return "", err
	}
	return path, nil
}

// SaveReport writes the run report next to the listings dump.
func (w *Writer) SaveReport(report *Report) (string, error) {
	name := fmt.Sprintf("bus_report_%s.json", report.GeneratedAt.Format("20060102_150405"))
	path := filepath.Join(w.dir, name)
	if err := w.writeJSON(path, report); err != nil {
		return "", err
	}
	return path, nil
}

// writeJSON writes via a temp file and rename so readers never see a
// partial file.
func (w *Writer) writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}

	tmpFile := path + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := os.Rename(tmpFile, path); err != nil {
		return fmt.Errorf("failed to finalize output file: %w", err)
	}
	return nil
}

func keyOrUnknown(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
