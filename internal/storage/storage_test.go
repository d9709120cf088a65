package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buslane/bus-scraper/internal/models"
)

func sampleRecords() []models.ListingRecord {
	a := models.NewListingRecord("rossbus.com", "https://rossbus.com/used-buses/1")
	a.Vehicle.Title = "2016 Chevrolet Express"
	a.Vehicle.Make = "Chevrolet"
	a.Vehicle.Year = "2016"
	a.Vehicle.USRegion = "WEST"

	b := models.NewListingRecord("rossbus.com", "https://rossbus.com/used-buses/2")
	b.Vehicle.Title = "2016 Ford E450"
	b.Vehicle.Make = "Ford"
	b.Vehicle.Year = "2016"

	return []models.ListingRecord{*a, *b}
}

func TestSaveListings(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)

	path, err := w.SaveListings(sampleRecords())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "bus_listings_"))
	assert.True(t, strings.HasSuffix(path, ".json"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got []models.ListingRecord
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 2)
	assert.Equal(t, "2016 Chevrolet Express", got[0].Vehicle.Title)
}

func TestNewReport(t *testing.T) {
	report := NewReport(sampleRecords(), 5, 2, 1)

	assert.Equal(t, 5, report.TotalFound)
	assert.Equal(t, 2, report.TotalStored)
	assert.Equal(t, 2, report.Skipped)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, map[string]int{"Chevrolet": 1, "Ford": 1}, report.ByMake)
	assert.Equal(t, map[string]int{"2016": 2}, report.ByYear)
	assert.Equal(t, map[string]int{"WEST": 1, "unknown": 1}, report.ByRegion)
}

func TestSaveReport(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)

	path, err := w.SaveReport(NewReport(sampleRecords(), 2, 0, 0))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got Report
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, 2, got.TotalStored)
}
