package models

import (
	"time"
)

// Vehicle holds the flat, persistable fields of one bus listing. String
// fields keep the site's raw text; CPrice is the digits-only form of Price.
type Vehicle struct {
	ID              string    `json:"id,omitempty"`
	Title           string    `json:"title"`
	Year            string    `json:"year"`
	Make            string    `json:"make"`
	Model           string    `json:"model"`
	Engine          string    `json:"engine,omitempty"`
	Transmission    string    `json:"transmission,omitempty"`
	Mileage         string    `json:"mileage,omitempty"`
	Passengers      string    `json:"passengers,omitempty"`
	Wheelchair      string    `json:"wheelchair,omitempty"`
	Color           string    `json:"color,omitempty"`
	InteriorColor   string    `json:"interior_color,omitempty"`
	ExteriorColor   string    `json:"exterior_color,omitempty"`
	GVWR            string    `json:"gvwr,omitempty"`
	VIN             string    `json:"vin,omitempty"`
	Price           string    `json:"price,omitempty"`
	CPrice          string    `json:"cprice,omitempty"`
	Location        string    `json:"location,omitempty"`
	USRegion        string    `json:"us_region,omitempty"`
	Airconditioning string    `json:"airconditioning,omitempty"`
	Description     string    `json:"description,omitempty"`
	Source          string    `json:"source"`
	SourceURL       string    `json:"source_url"`
	Published       bool      `json:"published"`
	Scraped         bool      `json:"scraped"`
	Draft           bool      `json:"draft"`
	ScrapedAt       time.Time `json:"scraped_at"`
}

// Overview carries the long-form description blocks of a listing.
type Overview struct {
	MainDescription     string `json:"mdesc,omitempty"`
	InteriorDescription string `json:"intdesc,omitempty"`
	ExteriorDescription string `json:"extdesc,omitempty"`
	Features            string `json:"features,omitempty"`
	Specs               string `json:"specs,omitempty"`
}

func (o Overview) IsZero() bool {
	return o.MainDescription == "" && o.InteriorDescription == "" &&
		o.ExteriorDescription == "" && o.Features == "" && o.Specs == ""
}

// Image is one gallery image of a listing. Index preserves gallery order.
type Image struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	Index       int    `json:"image_index"`
}

// ListingRecord is the normalized output of parsing one detail page.
type ListingRecord struct {
	Vehicle  Vehicle  `json:"bus_info"`
	Overview Overview `json:"overview_info"`
	Images   []Image  `json:"images_info"`
}

// NewListingRecord returns a record seeded with source metadata; parsers
// fill in everything else.
func NewListingRecord(source, sourceURL string) *ListingRecord {
	return &ListingRecord{
		Vehicle: Vehicle{
			Source:    source,
			SourceURL: sourceURL,
			Scraped:   true,
			Published: true,
			ScrapedAt: time.Now(),
		},
		Images: make([]Image, 0),
	}
}

// IsEmpty reports whether extraction produced no usable data. Records with
// only source metadata count as empty and are skipped by the pipeline.
func (r *ListingRecord) IsEmpty() bool {
	if r == nil {
		return true
	}
	v := r.Vehicle
	return v.Title == "" && v.Year == "" && v.Price == "" && v.VIN == "" &&
		len(r.Images) == 0 && r.Overview.IsZero()
}
