package process

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/Sriram-PR/site-snapshot/pkg/models"
)

const (
	descriptionParagraphs = 3
	descriptionMaxRunes   = 500
	excerptParagraphs     = 2
	excerptMaxRunes       = 300
)

var productSlugRe = regexp.MustCompile(`^\d+-[^/]+$`)

// articleSegments mark blog-like sections; compared case-insensitively
var articleSegments = map[string]struct{}{
	"blog":         {},
	"news":         {},
	"article":      {},
	"articles":     {},
	"publications": {},
}

// Classify decides the page kind from its URL path alone and builds the
// derived record. Product shape is checked first, so a page is never both.
func Classify(page models.SnapshotPage) (models.PageKind, *models.Product, *models.Article) {
	segments := pathSegments(page.URL)

	if isProductPath(segments) {
		return models.PageKindProduct, &models.Product{
			URL:         page.URL,
			Slug:        segments[len(segments)-1],
			Title:       primaryTitle(page),
			Description: Truncate(joinFirst(page.Paragraphs, descriptionParagraphs), descriptionMaxRunes),
			Images:      nonNil(page.Images),
			Documents:   nonNilDocs(page.Documents),
		}, nil
	}

	if isArticlePath(segments) {
		return models.PageKindArticle, nil, &models.Article{
			URL:     page.URL,
			Title:   primaryTitle(page),
			Excerpt: Truncate(joinFirst(page.Paragraphs, excerptParagraphs), excerptMaxRunes),
		}
	}

	return models.PageKindPage, nil, nil
}

// pathSegments returns the non-empty path segments of rawURL
func pathSegments(rawURL string) []string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	var segments []string
	for _, seg := range strings.Split(u.Path, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	return segments
}

// isProductPath matches .../tproduct/<digits>-<slug>
func isProductPath(segments []string) bool {
	for i := 0; i+1 < len(segments); i++ {
		if segments[i] == "tproduct" && productSlugRe.MatchString(segments[i+1]) {
			return true
		}
	}
	return false
}

func isArticlePath(segments []string) bool {
	for _, seg := range segments {
		if _, ok := articleSegments[strings.ToLower(seg)]; ok {
			return true
		}
	}
	return false
}

// primaryTitle is the first heading, falling back to the page title
func primaryTitle(page models.SnapshotPage) string {
	if len(page.Headings) > 0 {
		return page.Headings[0]
	}
	return page.Title
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilDocs(d []models.DocumentLink) []models.DocumentLink {
	if d == nil {
		return []models.DocumentLink{}
	}
	return d
}
