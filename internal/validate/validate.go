// Package validate checks and normalizes scraped listing records before
// they are persisted.
package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/buslane/bus-scraper/internal/models"
)

var (
	yearPattern = regexp.MustCompile(`^\d{4}$`)
	vinPattern  = regexp.MustCompile(`^[A-HJ-NPR-Z0-9]{17}$`)
)

// Constraint describes the limits on a single vehicle field.
type Constraint struct {
	MaxLength int
	Pattern   *regexp.Regexp
	Allowed   []string
	Required  bool
}

// FieldConstraints mirrors the column limits of the vehicles table.
var FieldConstraints = map[string]Constraint{
	"title":           {MaxLength: 256, Required: true},
	"year":            {MaxLength: 10, Pattern: yearPattern},
	"make":            {MaxLength: 25},
	"model":           {MaxLength: 50},
	"engine":          {MaxLength: 60},
	"transmission":    {MaxLength: 60},
	"mileage":         {MaxLength: 100},
	"passengers":      {MaxLength: 60},
	"wheelchair":      {MaxLength: 60},
	"price":           {MaxLength: 30},
	"cprice":          {MaxLength: 30},
	"vin":             {MaxLength: 60, Pattern: vinPattern},
	"source_url":      {MaxLength: 1000, Required: true},
	"location":        {MaxLength: 30},
	"us_region":       {MaxLength: 10, Allowed: []string{"NORTHEAST", "MIDWEST", "WEST", "SOUTHWEST", "SOUTHEAST", "OTHER"}},
	"airconditioning": {Allowed: []string{"REAR", "DASH", "BOTH", "OTHER", "NONE"}},
}

// Validate checks rec against the field constraints and returns one message
// per violation. An empty slice means the record can be stored.
func Validate(rec *models.ListingRecord) []string {
	errors := make([]string, 0)
	if rec == nil {
		return append(errors, "no listing record provided")
	}

	v := &rec.Vehicle
	fields := map[string]string{
		"title":           v.Title,
		"year":            v.Year,
		"make":            v.Make,
		"model":           v.Model,
		"engine":          v.Engine,
		"transmission":    v.Transmission,
		"mileage":         v.Mileage,
		"passengers":      v.Passengers,
		"wheelchair":      v.Wheelchair,
		"price":           v.Price,
		"cprice":          v.CPrice,
		"vin":             v.VIN,
		"source_url":      v.SourceURL,
		"location":        v.Location,
		"us_region":       v.USRegion,
		"airconditioning": v.Airconditioning,
	}

	for _, name := range constraintOrder {
		c := FieldConstraints[name]
		value := fields[name]

		if value == "" {
			if c.Required {
				errors = append(errors, fmt.Sprintf("field %s is required", name))
			}
			continue
		}

		if c.MaxLength > 0 && len(value) > c.MaxLength {
			errors = append(errors, fmt.Sprintf("field %s exceeds maximum length of %d characters", name, c.MaxLength))
		}
		if c.Pattern != nil && !c.Pattern.MatchString(value) {
			errors = append(errors, fmt.Sprintf("field %s does not match required pattern %s", name, c.Pattern.String()))
		}
		if len(c.Allowed) > 0 && !contains(c.Allowed, value) {
			errors = append(errors, fmt.Sprintf("field %s must be one of: %s", name, strings.Join(c.Allowed, ", ")))
		}
	}

	// A display price without a computed price cannot be sorted or compared.
	if v.Price != "" && v.CPrice == "" {
		errors = append(errors, "field cprice is required when price is set")
	}

	return errors
}

// constraintOrder keeps validation messages in a stable order; map
// iteration would shuffle them between runs.
var constraintOrder = []string{
	"title", "year", "make", "model", "engine", "transmission", "mileage",
	"passengers", "wheelchair", "price", "cprice", "vin", "source_url",
	"location", "us_region", "airconditioning",
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
