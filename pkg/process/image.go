package process

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Sriram-PR/site-snapshot/pkg/parse"
)

// ExtractImages returns normalized image URLs on host, deduplicated, in order of first appearance.
// Lazy-loaded images that carry their URL in data-original instead of src are included.
func ExtractImages(doc *goquery.Document, pageURL *url.URL, host string) []string {
	images := []string{}
	seen := make(map[string]struct{})

	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		src := strings.TrimSpace(img.AttrOr("src", ""))
		if src == "" {
			src = strings.TrimSpace(img.AttrOr("data-original", ""))
		}
		if src == "" || strings.HasPrefix(src, "data:") {
			return
		}

		normalized, ok := parse.Normalize(src, pageURL, host)
		if !ok {
			return
		}
		if _, dup := seen[normalized]; dup {
			return
		}
		seen[normalized] = struct{}{}
		images = append(images, normalized)
	})
	return images
}
