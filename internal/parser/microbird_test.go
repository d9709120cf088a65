package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMicrobirdParseListing(t *testing.T) {
	parser := NewMicrobirdParser()

	html := `<html><body>
		<h1 class="inventory-title">2021 Micro Bird G5</h1>
		<div class="inventory-price">$72,900</div>
		<ul class="inventory-details">
			<li>Year: 2021</li>
			<li>Make: Micro Bird</li>
			<li>Model: G5</li>
			<li>Mileage: 18,500</li>
			<li>Passenger Capacity: 30</li>
			<li>Wheelchair Positions: 2</li>
			<li>Engine: 6.7L Power Stroke</li>
			<li>Transmission: TorqShift 6-speed</li>
			<li>GVWR: 14,500 lbs</li>
			<li>Exterior Color: Yellow</li>
			<li>Interior Color: Gray</li>
		</ul>
		<div class="inventory-description">Low mileage activity bus.</div>
		<div class="info-section">
			<h4>Features</h4>
			<p>Roof hatch, LED lighting, child check system.</p>
		</div>
		<div class="inventory-gallery">
			<img src="/img/g5-1.jpg" alt="Front three-quarter">
		</div>
	</body></html>`

	rec, err := parser.ParseListing(html, "https://www.microbird.com/school-vehicles/g5")
	require.NoError(t, err)

	assert.Equal(t, "microbird.com", rec.Vehicle.Source)
	assert.Equal(t, "2021 Micro Bird G5", rec.Vehicle.Title)
	assert.Equal(t, "2021", rec.Vehicle.Year)
	assert.Equal(t, "Micro Bird", rec.Vehicle.Make)
	assert.Equal(t, "G5", rec.Vehicle.Model)
	assert.Equal(t, "$72,900", rec.Vehicle.Price)
	assert.Equal(t, "72900", rec.Vehicle.CPrice)
	assert.Equal(t, "18,500", rec.Vehicle.Mileage)
	assert.Equal(t, "30", rec.Vehicle.Passengers)
	assert.Equal(t, "2", rec.Vehicle.Wheelchair)
	assert.Equal(t, "6.7L Power Stroke", rec.Vehicle.Engine)
	assert.Equal(t, "TorqShift 6-speed", rec.Vehicle.Transmission)
	assert.Equal(t, "14,500 lbs", rec.Vehicle.GVWR)
	assert.Equal(t, "Yellow", rec.Vehicle.ExteriorColor)
	assert.Equal(t, "Gray", rec.Vehicle.InteriorColor)
	assert.Equal(t, "Low mileage activity bus.", rec.Overview.MainDescription)
	assert.Equal(t, "Roof hatch, LED lighting, child check system.", rec.Overview.Features)

	require.Len(t, rec.Images, 1)
	assert.Equal(t, "https://www.microbird.com/img/g5-1.jpg", rec.Images[0].URL)
}

func TestMicrobirdDetailsWithoutColon(t *testing.T) {
	parser := NewMicrobirdParser()

	html := `<ul class="inventory-details">
		<li>Fully reconditioned</li>
		<li>Engine: 6.0L V8</li>
	</ul>`

	rec, err := parser.ParseListing(html, "https://microbird.com/school-vehicles/1")
	require.NoError(t, err)
	assert.Equal(t, "6.0L V8", rec.Vehicle.Engine)
}

func TestMicrobirdParseListingPage(t *testing.T) {
	parser := NewMicrobirdParser()

	html := `<div class="inventory-list">
		<div class="bus-item"><a class="detail-link" href="/school-vehicles/g5-1">G5</a></div>
		<div class="bus-item"><a class="detail-link" href="/school-vehicles/t-series-2">T-Series</a></div>
	</div>
	<div class="bus-grid">
		<div class="bus-card"><a class="view-details" href="/school-vehicles/mb-ii-3">MB-II</a></div>
	</div>`

	urls, err := parser.ParseListingPage(html, "https://microbird.com/school-vehicles")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://microbird.com/school-vehicles/g5-1",
		"https://microbird.com/school-vehicles/t-series-2",
		"https://microbird.com/school-vehicles/mb-ii-3",
	}, urls)
}
