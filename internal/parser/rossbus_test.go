package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRossBusParseListing(t *testing.T) {
	parser := NewRossBusParser()

	html := `<html><body>
		<h5 class="BlueTitle">2016 Chevrolet Express</h5>
		<div class="Describe FParagraph1 EditorText">14 passenger shuttle in great shape.</div>
		<div class="Extra_Info_Wrap">Lift Equipped :Yes</div>
		<div class="DeepDetails">
			<ul class="NoBullet">
				<li><span class="First">Capacity</span><span class="Last">14</span></li>
				<li><span class="First">Engine</span><span class="Last">6.0L Vortec V8</span></li>
				<li><span class="First">Transmission</span><span class="Last">Automatic</span></li>
				<li><span class="First">GVWR</span><span class="Last">12,300 lbs</span></li>
			</ul>
		</div>
		<div class="bus-vin">1GB6G5BG7G1234567</div>
		<ul class="slides">
			<li><img src="/uploads/bus-front.jpg" alt="Front"></li>
			<li><img src="/uploads/bus-rear.jpg"></li>
		</ul>
	</body></html>`

	rec, err := parser.ParseListing(html, "https://www.rossbus.com/used-buses/2016-chevrolet-express")
	require.NoError(t, err)

	assert.Equal(t, "rossbus.com", rec.Vehicle.Source)
	assert.Equal(t, "2016 Chevrolet Express", rec.Vehicle.Title)
	assert.Equal(t, "2016", rec.Vehicle.Year)
	assert.Equal(t, "Chevrolet", rec.Vehicle.Make)
	assert.Equal(t, "Express", rec.Vehicle.Model)
	assert.Equal(t, "14 passenger shuttle in great shape.", rec.Vehicle.Description)
	assert.Equal(t, "Yes", rec.Vehicle.Wheelchair)
	assert.Equal(t, "14", rec.Vehicle.Passengers)
	assert.Equal(t, "6.0l vortec v8", rec.Vehicle.Engine)
	assert.Equal(t, "automatic", rec.Vehicle.Transmission)
	assert.Equal(t, "12,300 lbs", rec.Vehicle.GVWR)
	assert.Equal(t, "1GB6G5BG7G1234567", rec.Vehicle.VIN)

	require.Len(t, rec.Images, 2)
	assert.Equal(t, "https://www.rossbus.com/uploads/bus-front.jpg", rec.Images[0].URL)
	assert.Equal(t, "Front", rec.Images[0].Description)
}

func TestRossBusParseListingNoLift(t *testing.T) {
	parser := NewRossBusParser()

	html := `<html><body>
		<h5 class="BlueTitle">2014 Ford F550</h5>
		<div class="Extra_Info_Wrap">Lift Equipped :No</div>
	</body></html>`

	rec, err := parser.ParseListing(html, "https://rossbus.com/used-buses/2014-ford-f550")
	require.NoError(t, err)
	assert.Equal(t, "No", rec.Vehicle.Wheelchair)
}

func TestRossBusDetailValueTruncation(t *testing.T) {
	parser := NewRossBusParser()

	long := strings.Repeat("x", 100)
	html := `<div class="DeepDetails"><ul class="NoBullet">
		<li><span class="First">Engine</span><span class="Last">` + long + `</span></li>
	</ul></div>`

	rec, err := parser.ParseListing(html, "https://rossbus.com/used-buses/1")
	require.NoError(t, err)
	assert.Len(t, rec.Vehicle.Engine, rossDetailValueLimit)
}

func TestRossBusParseListingPage(t *testing.T) {
	parser := NewRossBusParser()

	tests := []struct {
		name     string
		html     string
		expected []string
	}{
		{
			name: "category page with bus list",
			html: `<div class="BusListWrapper">
				<div class="FillYellowBtn"><a href="/used-buses/bus-1">View</a></div>
				<div class="FillYellowBtn"><a href="/used-buses/bus-2">View</a></div>
			</div>`,
			expected: []string{
				"https://rossbus.com/used-buses/bus-1",
				"https://rossbus.com/used-buses/bus-2",
			},
		},
		{
			name: "index page with category buttons",
			html: `<section class="IdxBusesWrap">
				<div class="FillYellowBtn"><a href="/school-buses">School Buses</a></div>
				<div class="FillYellowBtn"><a href="/shuttle-buses">Shuttle Buses</a></div>
			</section>`,
			expected: []string{
				"https://rossbus.com/school-buses",
				"https://rossbus.com/shuttle-buses",
			},
		},
		{
			name:     "no buttons",
			html:     `<div><a href="/contact">Contact</a></div>`,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			urls, err := parser.ParseListingPage(tt.html, "https://rossbus.com")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, urls)
		})
	}
}
