package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenericParseListing(t *testing.T) {
	parser := NewGenericParser()

	html := `<html><body>
		<h1>2019 Blue Bird Vision</h1>
		<div class="price">$45,500</div>
		<div class="mileage">120,000 mi</div>
		<div class="passengers">72</div>
		<div class="vin">1BAKGCPA5KF123456</div>
		<div class="location">Sacramento, CA</div>
		<div class="description">Well maintained school bus.</div>
		<div class="features">Air brakes, backup camera</div>
		<div class="gallery">
			<img src="/photos/front.jpg" alt="Front view">
			<img data-src="/photos/side.jpg" alt="Side view">
		</div>
	</body></html>`

	rec, err := parser.ParseListing(html, "https://example.com/bus/123")
	require.NoError(t, err)

	assert.Equal(t, "2019 Blue Bird Vision", rec.Vehicle.Title)
	assert.Equal(t, "2019", rec.Vehicle.Year)
	assert.Equal(t, "Blue Bird", rec.Vehicle.Make)
	assert.Equal(t, "Vision", rec.Vehicle.Model)
	assert.Equal(t, "$45,500", rec.Vehicle.Price)
	assert.Equal(t, "45500", rec.Vehicle.CPrice)
	assert.Equal(t, "120,000 mi", rec.Vehicle.Mileage)
	assert.Equal(t, "72", rec.Vehicle.Passengers)
	assert.Equal(t, "1BAKGCPA5KF123456", rec.Vehicle.VIN)
	assert.Equal(t, "Sacramento, CA", rec.Vehicle.Location)
	assert.Equal(t, "web_scraper", rec.Vehicle.Source)
	assert.Equal(t, "https://example.com/bus/123", rec.Vehicle.SourceURL)
	assert.Equal(t, "Well maintained school bus.", rec.Overview.MainDescription)
	assert.Equal(t, "Air brakes, backup camera", rec.Overview.Features)

	require.Len(t, rec.Images, 2)
	assert.Equal(t, "bus_image_0", rec.Images[0].Name)
	assert.Equal(t, "https://example.com/photos/front.jpg", rec.Images[0].URL)
	assert.Equal(t, "Front view", rec.Images[0].Description)
	assert.Equal(t, "https://example.com/photos/side.jpg", rec.Images[1].URL)
}

func TestGenericParseListingSpecTable(t *testing.T) {
	parser := NewGenericParser()

	html := `<html><body>
		<h1>2015 Ford E450</h1>
		<table class="specs">
			<tr><td>Engine</td><td>6.8L V10</td></tr>
			<tr><td>Transmission</td><td>Automatic</td></tr>
			<tr><td>GVWR</td><td>14,500 lbs</td></tr>
			<tr><td>Exterior Color</td><td>White</td></tr>
			<tr><td>Interior Color</td><td>Gray</td></tr>
			<tr><td>Wheelchair Accessible</td><td>Yes</td></tr>
		</table>
	</body></html>`

	rec, err := parser.ParseListing(html, "https://example.com/bus/456")
	require.NoError(t, err)

	assert.Equal(t, "6.8L V10", rec.Vehicle.Engine)
	assert.Equal(t, "Automatic", rec.Vehicle.Transmission)
	assert.Equal(t, "14,500 lbs", rec.Vehicle.GVWR)
	assert.Equal(t, "White", rec.Vehicle.ExteriorColor)
	assert.Equal(t, "Gray", rec.Vehicle.InteriorColor)
	assert.Equal(t, "Yes", rec.Vehicle.Wheelchair)
}

func TestGenericParseListingEmpty(t *testing.T) {
	parser := NewGenericParser()

	rec, err := parser.ParseListing("<html><body><p>nothing here</p></body></html>", "https://example.com/bus/789")
	require.NoError(t, err)
	assert.True(t, rec.IsEmpty())
}

func TestGenericParseListingImageFallback(t *testing.T) {
	parser := NewGenericParser()

	// No gallery container: only images with a large width attribute count.
	html := `<html><body>
		<img src="/icons/cart.png" width="32">
		<img src="/photos/bus.jpg" width="800" alt="Bus">
		<img src="/photos/no-width.jpg">
	</body></html>`

	rec, err := parser.ParseListing(html, "https://example.com/bus/1")
	require.NoError(t, err)

	require.Len(t, rec.Images, 1)
	assert.Equal(t, "https://example.com/photos/bus.jpg", rec.Images[0].URL)
}

func TestGenericParseListingPage(t *testing.T) {
	parser := NewGenericParser()

	tests := []struct {
		name     string
		html     string
		expected []string
	}{
		{
			name: "detail links in bus listing",
			html: `<div class="bus-listing">
				<a class="detail-link" href="/bus/1">Bus 1</a>
				<a class="detail-link" href="/bus/2">Bus 2</a>
				<a class="detail-link" href="/bus/1">Bus 1 again</a>
			</div>`,
			expected: []string{"https://example.com/bus/1", "https://example.com/bus/2"},
		},
		{
			name: "inventory item fallback",
			html: `<div class="inventory-item"><a href="/inv/7">Seven</a></div>
				<div class="inventory-item"><a href="https://example.com/inv/8">Eight</a></div>`,
			expected: []string{"https://example.com/inv/7", "https://example.com/inv/8"},
		},
		{
			name:     "no listing links",
			html:     `<div><a href="/about">About us</a></div>`,
			expected: []string{},
		},
		{
			name: "non-http schemes skipped",
			html: `<div class="listing-item"><a href="mailto:sales@example.com">Mail</a></div>
				<div class="listing-item"><a href="/bus/3">Three</a></div>`,
			expected: []string{"https://example.com/bus/3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			urls, err := parser.ParseListingPage(tt.html, "https://example.com/inventory")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, urls)
		})
	}
}

func TestYearMakeModelFromTitle(t *testing.T) {
	tests := []struct {
		title string
		year  string
		make  string
		model string
	}{
		{"2019 Blue Bird Vision", "2019", "Blue Bird", "Vision"},
		{"2015 Ford E450", "2015", "Ford", "E450"},
		{"Used shuttle for sale", "", "", ""},
		{"", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			year, make, model := yearMakeModelFromTitle(tt.title)
			assert.Equal(t, tt.year, year)
			assert.Equal(t, tt.make, make)
			assert.Equal(t, tt.model, model)
		})
	}
}

func TestNumericPrice(t *testing.T) {
	assert.Equal(t, "45500", numericPrice("$45,500"))
	assert.Equal(t, "12999.99", numericPrice("USD 12,999.99"))
	assert.Equal(t, "", numericPrice("Call for price"))
}
