package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/buslane/bus-scraper/internal/models"
)

// GenericParser is the fallback for sites without a dedicated parser. It
// probes common markup patterns: heading titles, labeled spans, spec tables
// and gallery containers.
type GenericParser struct {
	fieldSelectors map[string][]string
}

func NewGenericParser() *GenericParser {
	return &GenericParser{
		fieldSelectors: map[string][]string{
			"mileage":        {".mileage", ".miles", ".odometer", ".product-mileage", ".item-mileage"},
			"passengers":     {".passengers", ".capacity", ".product-passengers", ".item-passengers"},
			"wheelchair":     {".wheelchair", ".accessible", ".product-wheelchair", ".item-wheelchair"},
			"engine":         {".engine", ".engine-type", ".product-engine", ".item-engine"},
			"transmission":   {".transmission", ".trans", ".product-transmission", ".item-transmission"},
			"gvwr":           {".gvwr", ".gross-weight", ".product-gvwr", ".item-gvwr"},
			"color":          {".color", ".product-color", ".item-color"},
			"exterior_color": {".exterior-color", ".ext-color", ".product-exterior-color"},
			"interior_color": {".interior-color", ".int-color", ".product-interior-color"},
			"location":       {".location", ".product-location", ".item-location"},
		},
	}
}

func (p *GenericParser) ParseListing(html, sourceURL string) (*models.ListingRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	rec := models.NewListingRecord("web_scraper", sourceURL)

	p.extractBasicInfo(doc, rec)
	p.extractOverview(doc, &rec.Overview)
	rec.Images = p.extractImages(doc, sourceURL)

	return rec, nil
}

func (p *GenericParser) ParseListingPage(html, baseURL string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	urls := collectLinks(doc, baseURL,
		".bus-listing a.detail-link",
		".inventory-list a.detail-link",
		".listing-item a",
		".inventory-item a",
	)
	return urls, nil
}

func (p *GenericParser) extractBasicInfo(doc *goquery.Document, rec *models.ListingRecord) {
	v := &rec.Vehicle

	v.Title = firstText(doc, "h1", ".product-title", ".item-title", ".listing-title", ".bus-title", "h1.title")
	v.Year, v.Make, v.Model = yearMakeModelFromTitle(v.Title)

	if v.Year == "" {
		v.Year = firstText(doc, ".year", ".product-year", ".item-year", ".listing-year")
	}
	if v.Make == "" {
		v.Make = firstText(doc, ".make", ".brand", ".product-make", ".item-make", ".listing-make")
	}
	if v.Model == "" {
		v.Model = firstText(doc, ".model", ".product-model", ".item-model", ".listing-model")
	}

	if price := firstText(doc, ".price", ".product-price", ".item-price", ".listing-price", ".bus-price", ".amount"); price != "" {
		v.Price = price
		v.CPrice = numericPrice(price)
	}

	p.extractLabeledFields(doc, v)
	p.extractSpecTables(doc, v)

	v.VIN = firstText(doc, ".vin", ".product-vin", ".item-vin", ".listing-vin")
}

func (p *GenericParser) extractLabeledFields(doc *goquery.Document, v *models.Vehicle) {
	for field, selectors := range p.fieldSelectors {
		text := firstText(doc, selectors...)
		if text == "" {
			continue
		}
		setVehicleField(v, field, text)
	}
}

// extractSpecTables reads key/value rows out of spec tables, overriding any
// weaker labeled-span values.
func (p *GenericParser) extractSpecTables(doc *goquery.Document, v *models.Vehicle) {
	doc.Find("table.specs tr, table.specifications tr, .specs-table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td, th")
		if cells.Length() < 2 {
			return
		}
		key := strings.ToLower(strings.TrimSpace(cells.Eq(0).Text()))
		value := strings.TrimSpace(cells.Eq(1).Text())
		if value == "" {
			return
		}

		switch {
		case strings.Contains(key, "mileage") || strings.Contains(key, "miles"):
			v.Mileage = value
		case strings.Contains(key, "passenger") || strings.Contains(key, "capacity"):
			v.Passengers = value
		case strings.Contains(key, "wheelchair") || strings.Contains(key, "accessible"):
			v.Wheelchair = value
		case strings.Contains(key, "engine"):
			v.Engine = value
		case strings.Contains(key, "transmission") || strings.Contains(key, "trans"):
			v.Transmission = value
		case strings.Contains(key, "gvwr") || strings.Contains(key, "gross"):
			v.GVWR = value
		case strings.Contains(key, "exterior color") || strings.Contains(key, "ext color"):
			v.ExteriorColor = value
		case strings.Contains(key, "interior color") || strings.Contains(key, "int color"):
			v.InteriorColor = value
		case strings.Contains(key, "color"):
			v.Color = value
		}
	})
}

func (p *GenericParser) extractOverview(doc *goquery.Document, o *models.Overview) {
	o.MainDescription = firstText(doc, ".description", ".product-description", ".item-description", ".listing-description", "#description")
	o.InteriorDescription = firstText(doc, ".interior-description", ".int-desc", ".product-interior", ".item-interior")
	o.ExteriorDescription = firstText(doc, ".exterior-description", ".ext-desc", ".product-exterior", ".item-exterior")
	o.Features = firstText(doc, ".features", ".product-features", ".item-features", ".listing-features")
	o.Specs = firstText(doc, ".specs", ".specifications", ".product-specs", ".item-specs")
}

func (p *GenericParser) extractImages(doc *goquery.Document, baseURL string) []models.Image {
	gallerySelectors := []string{
		".gallery img",
		".product-gallery img",
		".item-gallery img",
		".listing-gallery img",
		".listing-images img",
		".carousel img",
		".slider img",
		".product-images img",
		".photos img",
	}

	images := make([]models.Image, 0)
	for _, sel := range gallerySelectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			images = appendImage(images, baseURL, s)
		})
		if len(images) > 0 {
			return images
		}
	}

	// No recognizable gallery: fall back to any image wide enough to be a
	// photo rather than an icon.
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		width, err := strconv.Atoi(s.AttrOr("width", ""))
		if err != nil || width < 300 {
			return
		}
		images = appendImage(images, baseURL, s)
	})

	return images
}

func setVehicleField(v *models.Vehicle, field, value string) {
	switch field {
	case "mileage":
		v.Mileage = value
	case "passengers":
		v.Passengers = value
	case "wheelchair":
		v.Wheelchair = value
	case "engine":
		v.Engine = value
	case "transmission":
		v.Transmission = value
	case "gvwr":
		v.GVWR = value
	case "color":
		v.Color = value
	case "exterior_color":
		v.ExteriorColor = value
	case "interior_color":
		v.InteriorColor = value
	case "location":
		v.Location = value
	}
}
