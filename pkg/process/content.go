package process

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Sriram-PR/site-snapshot/pkg/models"
	"github.com/Sriram-PR/site-snapshot/pkg/scope"
	"github.com/Sriram-PR/site-snapshot/pkg/utils"
)

// paragraphSelector matches paragraphs and page-builder text/title blocks
// (Tilda marks zero-block content with data-elem-type)
const paragraphSelector = `p, [data-elem-type="text"], [data-elem-type="title"]`

// Extraction is everything pulled out of one page
type Extraction struct {
	Page      models.SnapshotPage
	Documents []models.DocumentLink // Page-local document links, to be merged into the run-wide index
}

// ParseHTML builds a goquery document from raw HTML
func ParseHTML(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing HTML: %w", utils.ErrParsing, err)
	}
	return doc, nil
}

// ExtractPage builds the SnapshotPage for a parsed document at pageURL.
// All URLs it records are normalized onto host; links are further filtered by policy.
func ExtractPage(doc *goquery.Document, pageURL *url.URL, host string, policy scope.Policy) Extraction {
	page := models.NewSnapshotPage(pageURL.String())

	page.Title = CleanText(doc.Find("title").First().Text())
	if page.Title == "" {
		page.Title = page.URL
	}
	page.Headings = ExtractHeadings(doc)
	page.Paragraphs = ExtractParagraphs(doc)
	page.Lists = collectText(doc.Selection, "li")
	page.Images = ExtractImages(doc, pageURL, host)
	page.Documents = ExtractDocuments(doc, pageURL, host)
	page.Links = ExtractLinks(doc, pageURL, host, policy)

	return Extraction{Page: page, Documents: page.Documents}
}

// SafeExtractPage parses html and runs ExtractPage, converting a panic raised
// anywhere in parsing or extraction into an ErrParsing error
func SafeExtractPage(html string, pageURL *url.URL, host string, policy scope.Policy) (ext Extraction, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic during HTML extraction: %v", utils.ErrParsing, r)
		}
	}()

	doc, err := ParseHTML(html)
	if err != nil {
		return Extraction{}, err
	}
	return ExtractPage(doc, pageURL, host, policy), nil
}

// ExtractParagraphs returns paragraph and content-block text in document order.
// A match nested inside another match is skipped, its text is already part of the outer one.
func ExtractParagraphs(doc *goquery.Document) []string {
	out := []string{}
	doc.Find(paragraphSelector).Each(func(_ int, s *goquery.Selection) {
		if s.ParentsFiltered(paragraphSelector).Length() > 0 {
			return
		}
		if text := CleanText(s.Text()); text != "" {
			out = append(out, text)
		}
	})
	return out
}
