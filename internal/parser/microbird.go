package parser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/buslane/bus-scraper/internal/models"
)

// MicrobirdParser handles the school vehicle inventory of microbird.com.
type MicrobirdParser struct{}

func NewMicrobirdParser() *MicrobirdParser {
	return &MicrobirdParser{}
}

func (p *MicrobirdParser) ParseListingPage(html, baseURL string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	urls := collectLinks(doc, baseURL,
		".inventory-list .bus-item a.detail-link, .bus-grid .bus-card a.view-details",
	)
	return urls, nil
}

func (p *MicrobirdParser) ParseListing(html, sourceURL string) (*models.ListingRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	rec := models.NewListingRecord("microbird.com", sourceURL)
	v := &rec.Vehicle

	v.Title = firstText(doc, ".inventory-title", ".product-title")

	p.extractDetails(doc, v)

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

	if price := firstText(doc, ".inventory-price", ".price"); price != "" {
		v.Price = price
		v.CPrice = numericPrice(price)
	}

	v.VIN = firstText(doc, ".inventory-vin", ".vin")

	rec.Overview = p.extractOverview(doc)
	rec.Images = p.extractImages(doc, sourceURL)

	return rec, nil
}

// extractDetails parses "Label: value" items out of the details list.
func (p *MicrobirdParser) extractDetails(doc *goquery.Document, v *models.Vehicle) {
	doc.Find(".inventory-details li, .spec-list li").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		label, value, ok := strings.Cut(text, ":")
		if !ok {
			return
		}
		label = strings.ToLower(strings.TrimSpace(label))
		value = strings.TrimSpace(value)
		if value == "" {
			return
		}

		switch {
		case label == "year":
			v.Year = value
		case label == "make":
			v.Make = value
		case label == "model":
			v.Model = value
		case strings.Contains(label, "mileage") || strings.Contains(label, "miles"):
			v.Mileage = value
		case strings.Contains(label, "passenger") || strings.Contains(label, "capacity"):
			v.Passengers = value
		case strings.Contains(label, "wheelchair"):
			v.Wheelchair = value
		case strings.Contains(label, "engine"):
			v.Engine = value
		case strings.Contains(label, "transmission"):
			v.Transmission = value
		case strings.Contains(label, "gvwr"):
			v.GVWR = value
		case strings.Contains(label, "exterior color"):
			v.ExteriorColor = value
		case strings.Contains(label, "interior color"):
			v.InteriorColor = value
		case strings.Contains(label, "color"):
			v.Color = value
		}
	})
}

func (p *MicrobirdParser) extractOverview(doc *goquery.Document) models.Overview {
	o := models.Overview{
		MainDescription: firstText(doc, ".inventory-description", ".description"),
	}

	doc.Find(".description-section, .info-section").Each(func(_ int, section *goquery.Selection) {
		heading := strings.ToLower(strings.TrimSpace(section.Find("h3, h4").First().Text()))
		content := strings.TrimSpace(section.Find("p, .section-content").First().Text())
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

func (p *MicrobirdParser) extractImages(doc *goquery.Document, baseURL string) []models.Image {
	images := make([]models.Image, 0)
	doc.Find(".inventory-gallery img, .gallery img, .slider img").Each(func(_ int, s *goquery.Selection) {
		images = appendImage(images, baseURL, s)
	})
	return images
}
