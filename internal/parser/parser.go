package parser

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/buslane/bus-scraper/internal/models"
)

// Parser extracts structured data from one site's markup. ParseListing
// normalizes a detail page into a record; ParseListingPage enumerates the
// child detail URLs of an inventory page, in document order.
type Parser interface {
	ParseListing(html, sourceURL string) (*models.ListingRecord, error)
	ParseListingPage(html, baseURL string) ([]string, error)
}

// titlePattern recovers year, make and model from titles shaped like
// "2015 Blue Bird Vision".
var titlePattern = regexp.MustCompile(`(\d{4})\s+([A-Za-z]+(?:\s+[A-Za-z]+)?)\s+([A-Za-z0-9]+(?:\s+[A-Za-z0-9]+)*)`)

var nonPricePattern = regexp.MustCompile(`[^\d.]`)

// yearMakeModelFromTitle splits a listing title into its year/make/model
// parts. Empty strings are returned for parts the title does not carry.
func yearMakeModelFromTitle(title string) (year, make, model string) {
	m := titlePattern.FindStringSubmatch(title)
	if m == nil {
		return "", "", ""
	}
	return m[1], m[2], m[3]
}

// numericPrice strips currency symbols and separators, keeping digits and
// the decimal point.
func numericPrice(priceText string) string {
	if priceText == "" {
		return ""
	}
	return nonPricePattern.ReplaceAllString(priceText, "")
}

// resolveURL resolves href against base, returning "" for unusable hrefs.
func resolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := baseURL.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}

// firstText returns the trimmed text of the first selector that matches.
func firstText(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// collectLinks resolves the hrefs of every element matching sel against
// baseURL, deduplicated, insertion order preserved.
func collectLinks(doc *goquery.Document, baseURL string, selectors ...string) []string {
	urls := make([]string, 0)
	seen := make(map[string]struct{})
	for _, sel := range selectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			href, ok := s.Attr("href")
			if !ok {
				return
			}
			full := resolveURL(baseURL, href)
			if full == "" {
				return
			}
			if _, dup := seen[full]; dup {
				return
			}
			seen[full] = struct{}{}
			urls = append(urls, full)
		})
		if len(urls) > 0 {
			break
		}
	}
	return urls
}

// imageSrc prefers the lazy-load data-src attribute over src.
func imageSrc(s *goquery.Selection) string {
	if src, ok := s.Attr("data-src"); ok && strings.TrimSpace(src) != "" {
		return src
	}
	return s.AttrOr("src", "")
}

// appendImage adds one gallery image, resolving its URL and carrying the
// alt text as description.
func appendImage(images []models.Image, baseURL string, s *goquery.Selection) []models.Image {
	src := imageSrc(s)
	full := resolveURL(baseURL, src)
	if full == "" {
		return images
	}
	idx := len(images)
	img := models.Image{
		Name:  fmt.Sprintf("bus_image_%d", idx),
		URL:   full,
		Index: idx,
	}
	if alt := strings.TrimSpace(s.AttrOr("alt", "")); alt != "" {
		img.Description = alt
	}
	return append(images, img)
}
