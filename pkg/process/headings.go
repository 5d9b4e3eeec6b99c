package process

import "github.com/PuerkitoBio/goquery"

const headingSelector = "h1, h2, h3, h4"

// ExtractHeadings returns the cleaned text of every h1-h4 in document order.
// Empty headings are skipped.
func ExtractHeadings(doc *goquery.Document) []string {
	return collectText(doc.Selection, headingSelector)
}

// collectText gathers non-empty cleaned text for every element matching selector
func collectText(root *goquery.Selection, selector string) []string {
	out := []string{}
	root.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if text := CleanText(s.Text()); text != "" {
			out = append(out, text)
		}
	})
	return out
}
