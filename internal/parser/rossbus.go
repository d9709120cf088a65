package parser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/buslane/bus-scraper/internal/models"
)

// rossDetailValueLimit caps spec values; Ross pages pad them with footnotes.
const rossDetailValueLimit = 56

// RossBusParser handles rossbus.com. Its inventory index links to category
// pages, which in turn link to the detail pages, so discovery runs two
// levels deep (both levels share the .FillYellowBtn button markup).
type RossBusParser struct{}

func NewRossBusParser() *RossBusParser {
	return &RossBusParser{}
}

func (p *RossBusParser) ParseListingPage(html, baseURL string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	urls := collectLinks(doc, baseURL,
		".BusListWrapper .FillYellowBtn a",
		"section.IdxBusesWrap .FillYellowBtn a",
	)
	return urls, nil
}

func (p *RossBusParser) ParseListing(html, sourceURL string) (*models.ListingRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	rec := models.NewListingRecord("rossbus.com", sourceURL)
	v := &rec.Vehicle

	v.Title = firstText(doc, "h5.BlueTitle")
	v.Year, v.Make, v.Model = yearMakeModelFromTitle(v.Title)
	v.Description = firstText(doc, ".Describe.FParagraph1.EditorText")

	if extra := doc.Find(".Extra_Info_Wrap").First(); extra.Length() > 0 {
		if strings.Contains(strings.TrimSpace(extra.Text()), "Lift Equipped :Yes") {
			v.Wheelchair = "Yes"
		} else {
			v.Wheelchair = "No"
		}
	}

	p.extractDetails(doc, v)

	v.VIN = firstText(doc, ".bus-vin")

	rec.Overview = p.extractOverview(doc)
	rec.Images = p.extractImages(doc, sourceURL)

	return rec, nil
}

// extractDetails reads the .DeepDetails label/value list. Labels sit in
// .First, values in .Last; "capacity" maps to passengers.
func (p *RossBusParser) extractDetails(doc *goquery.Document, v *models.Vehicle) {
	doc.Find(".DeepDetails ul.NoBullet li").Each(func(_ int, item *goquery.Selection) {
		label := strings.ToLower(strings.TrimSpace(item.Find(".First").Text()))
		value := strings.ToLower(strings.TrimSpace(item.Find(".Last").Text()))
		if label == "" || value == "" {
			return
		}
		if len(value) > rossDetailValueLimit {
			value = value[:rossDetailValueLimit]
		}

		switch label {
		case "capacity":
			v.Passengers = value
		case "engine":
			v.Engine = value
		case "transmission":
			v.Transmission = value
		case "gvwr":
			v.GVWR = value
		}
	})
}

func (p *RossBusParser) extractOverview(doc *goquery.Document) models.Overview {
	return models.Overview{
		MainDescription:     firstText(doc, ".bus-description", ".listing-description"),
		InteriorDescription: firstText(doc, ".bus-interior-description", ".listing-interior"),
		ExteriorDescription: firstText(doc, ".bus-exterior-description", ".listing-exterior"),
		Features:            firstText(doc, ".bus-features", ".listing-features"),
		Specs:               firstText(doc, ".bus-specs", ".listing-specs"),
	}
}

func (p *RossBusParser) extractImages(doc *goquery.Document, baseURL string) []models.Image {
	images := make([]models.Image, 0)
	doc.Find("ul.slides img").Each(func(_ int, s *goquery.Selection) {
		images = appendImage(images, baseURL, s)
	})
	return images
}
