package parser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/buslane/bus-scraper/internal/models"
)

// DaimlerParser handles the pre-owned inventory of
// daimlercoachesnorthamerica.com.
type DaimlerParser struct{}

func NewDaimlerParser() *DaimlerParser {
	return &DaimlerParser{}
}

func (p *DaimlerParser) ParseListingPage(html, baseURL string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	urls := collectLinks(doc, baseURL,
		".vehicle-listing a.vehicle-link, .inventory-grid .vehicle-item a",
	)
	return urls, nil
}

func (p *DaimlerParser) ParseListing(html, sourceURL string) (*models.ListingRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	rec := models.NewListingRecord("daimlercoachesnorthamerica.com", sourceURL)
	v := &rec.Vehicle

	v.Title = firstText(doc, ".vehicle-title", "h1.title")

	p.extractDetails(doc, v)

	// Title regex fills in whatever the detail table did not carry.
	if v.Year == "" || v.Make == "" || v.Model == "" {
		year, make, model := yearMakeModelFromTitle(v.Title)
		if v.Year == "" {
			v.Year = year
		}
		if v.Make == "" {
			v.Make = make
		}
		if v.Model == "" {
			v.Model = model
		}
	}

	if price := firstText(doc, ".vehicle-price", ".price"); price != "" {
		v.Price = price
		v.CPrice = numericPrice(price)
	}

	v.VIN = firstText(doc, ".vehicle-vin", ".vin")

	rec.Overview = p.extractOverview(doc)
	rec.Images = p.extractImages(doc, sourceURL)

	return rec, nil
}

// extractDetails walks the paired .detail-label/.detail-value columns.
func (p *DaimlerParser) extractDetails(doc *goquery.Document, v *models.Vehicle) {
	labels := doc.Find(".vehicle-details .detail-label, .specs-table th")
	values := doc.Find(".vehicle-details .detail-value, .specs-table td")

	n := labels.Length()
	if values.Length() < n {
		n = values.Length()
	}

	for i := 0; i < n; i++ {
		label := strings.ToLower(strings.TrimSpace(labels.Eq(i).Text()))
		value := strings.TrimSpace(values.Eq(i).Text())
		if value == "" {
			continue
		}

		switch {
		case strings.Contains(label, "year"):
			v.Year = value
		case strings.Contains(label, "make"):
			v.Make = value
		case strings.Contains(label, "model"):
			v.Model = value
		case strings.Contains(label, "mileage") || strings.Contains(label, "odometer"):
			v.Mileage = value
		case strings.Contains(label, "passenger") || strings.Contains(label, "capacity"):
			v.Passengers = value
		case strings.Contains(label, "wheelchair") || strings.Contains(label, "accessible"):
			v.Wheelchair = value
		case strings.Contains(label, "engine"):
			v.Engine = value
		case strings.Contains(label, "transmission"):
			v.Transmission = value
		case strings.Contains(label, "gvwr") || strings.Contains(label, "gross weight"):
			v.GVWR = value
		case strings.Contains(label, "exterior color"):
			v.ExteriorColor = value
		case strings.Contains(label, "interior color"):
			v.InteriorColor = value
		case strings.Contains(label, "color"):
			v.Color = value
		}
	}
}

// extractOverview routes .description-section blocks by their heading.
func (p *DaimlerParser) extractOverview(doc *goquery.Document) models.Overview {
	o := models.Overview{
		MainDescription: firstText(doc, ".vehicle-description", ".description"),
	}

	doc.Find(".description-section").Each(func(_ int, section *goquery.Selection) {
		heading := strings.ToLower(strings.TrimSpace(section.Find("h3, h4").First().Text()))
		content := strings.TrimSpace(section.Find(".section-content").First().Text())
		if heading == "" || content == "" {
			return
		}

		switch {
		case strings.Contains(heading, "interior"):
			o.InteriorDescription = content
		case strings.Contains(heading, "exterior"):
			o.ExteriorDescription = content
		case strings.Contains(heading, "feature"):
			o.Features = content
		case strings.Contains(heading, "spec"):
			o.Specs = content
		}
	})

	return o
}

func (p *DaimlerParser) extractImages(doc *goquery.Document, baseURL string) []models.Image {
	images := make([]models.Image, 0)
	doc.Find(".vehicle-gallery img, .gallery img, .carousel img").Each(func(_ int, s *goquery.Selection) {
		images = appendImage(images, baseURL, s)
	})
	return images
}
