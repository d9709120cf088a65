package validate

import (
	"regexp"
	"strings"

	"github.com/buslane/bus-scraper/internal/models"
)

// statePattern pulls a two-letter state code out of a "City, ST" location.
var statePattern = regexp.MustCompile(`,\s*([A-Z]{2})\b`)

// stateRegions maps US state codes to census-style regions.
var stateRegions = map[string]string{
	"CT": "NORTHEAST", "MA": "NORTHEAST", "ME": "NORTHEAST", "NH": "NORTHEAST",
	"NJ": "NORTHEAST", "NY": "NORTHEAST", "PA": "NORTHEAST", "RI": "NORTHEAST",
	"VT": "NORTHEAST",

	"IA": "MIDWEST", "IL": "MIDWEST", "IN": "MIDWEST", "KS": "MIDWEST",
	"MI": "MIDWEST", "MN": "MIDWEST", "MO": "MIDWEST", "ND": "MIDWEST",
	"NE": "MIDWEST", "OH": "MIDWEST", "SD": "MIDWEST", "WI": "MIDWEST",

	"AK": "WEST", "CA": "WEST", "CO": "WEST", "HI": "WEST", "ID": "WEST",
	"MT": "WEST", "NV": "WEST", "OR": "WEST", "UT": "WEST", "WA": "WEST",
	"WY": "WEST",

	"AZ": "SOUTHWEST", "NM": "SOUTHWEST", "OK": "SOUTHWEST", "TX": "SOUTHWEST",

	"AL": "SOUTHEAST", "AR": "SOUTHEAST", "DC": "SOUTHEAST", "DE": "SOUTHEAST",
	"FL": "SOUTHEAST", "GA": "SOUTHEAST", "KY": "SOUTHEAST", "LA": "SOUTHEAST",
	"MD": "SOUTHEAST", "MS": "SOUTHEAST", "NC": "SOUTHEAST", "SC": "SOUTHEAST",
	"TN": "SOUTHEAST", "VA": "SOUTHEAST", "WV": "SOUTHEAST",
}

// Clean normalizes rec in place: string fields are trimmed, the US region
// is derived from the location when missing, and enum fields are
// uppercased so they validate against the allowed values.
func Clean(rec *models.ListingRecord) {
	if rec == nil {
		return
	}

	v := &rec.Vehicle
	trimAll(
		&v.Title, &v.Year, &v.Make, &v.Model, &v.Engine, &v.Transmission,
		&v.Mileage, &v.Passengers, &v.Wheelchair, &v.Color, &v.InteriorColor,
		&v.ExteriorColor, &v.GVWR, &v.VIN, &v.Price, &v.CPrice, &v.Location,
		&v.USRegion, &v.Airconditioning, &v.Description, &v.Source, &v.SourceURL,
	)

	v.USRegion = strings.ToUpper(v.USRegion)
	v.Airconditioning = strings.ToUpper(v.Airconditioning)
	v.VIN = strings.ToUpper(v.VIN)

	if v.USRegion == "" && v.Location != "" {
		v.USRegion = RegionForLocation(v.Location)
	}

	o := &rec.Overview
	trimAll(&o.MainDescription, &o.InteriorDescription, &o.ExteriorDescription, &o.Features, &o.Specs)

	for i := range rec.Images {
		img := &rec.Images[i]
		trimAll(&img.Name, &img.URL, &img.Description)
	}
}

// RegionForLocation derives the US region from a location string,
// defaulting to OTHER when no known state code is found.
func RegionForLocation(location string) string {
	m := statePattern.FindStringSubmatch(location)
	if m == nil {
		return "OTHER"
	}
	if region, ok := stateRegions[m[1]]; ok {
		return region
	}
	return "OTHER"
}

// Truthy interprets the yes/no style strings scraped sites use for
// boolean attributes.
func Truthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "true", "t", "1", "on":
		return true
	}
	return false
}

func trimAll(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}
