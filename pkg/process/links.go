package process

import (
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Sriram-PR/site-snapshot/pkg/models"
	"github.com/Sriram-PR/site-snapshot/pkg/parse"
	"github.com/Sriram-PR/site-snapshot/pkg/scope"
)

// documentExtensions are the downloadable file types collected as DocumentLinks
var documentExtensions = map[string]struct{}{
	".pdf":  {},
	".doc":  {},
	".docx": {},
}

// IsDocumentURL reports whether the URL path ends in a document extension (any case)
func IsDocumentURL(u *url.URL) bool {
	if u == nil {
		return false
	}
	_, ok := documentExtensions[strings.ToLower(path.Ext(u.Path))]
	return ok
}

// ExtractLinks returns every anchor target that normalizes onto host and is
// accepted by policy, deduplicated, in order of first appearance
func ExtractLinks(doc *goquery.Document, pageURL *url.URL, host string, policy scope.Policy) []string {
	links := []string{}
	seen := make(map[string]struct{})

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		normalized, ok := parse.Normalize(a.AttrOr("href", ""), pageURL, host)
		if !ok || !policy.InScope(normalized) {
			return
		}
		if _, dup := seen[normalized]; dup {
			return
		}
		seen[normalized] = struct{}{}
		links = append(links, normalized)
	})
	return links
}

// ExtractDocuments returns links to pdf/doc/docx files on host, deduplicated by URL.
// The title is the anchor text, or the unescaped file name when the anchor is empty.
func ExtractDocuments(doc *goquery.Document, pageURL *url.URL, host string) []models.DocumentLink {
	docs := []models.DocumentLink{}
	seen := make(map[string]struct{})

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		normalized, ok := parse.Normalize(a.AttrOr("href", ""), pageURL, host)
		if !ok {
			return
		}
		u, err := url.Parse(normalized)
		if err != nil || !IsDocumentURL(u) {
			return
		}
		if _, dup := seen[normalized]; dup {
			return
		}
		seen[normalized] = struct{}{}

		title := CleanText(a.Text())
		if title == "" {
			title = fileName(u)
		}
		docs = append(docs, models.DocumentLink{URL: normalized, Title: title})
	})
	return docs
}

// fileName returns the last path segment, already unescaped by url.Parse
func fileName(u *url.URL) string {
	trimmed := strings.TrimRight(u.Path, "/")
	if trimmed == "" {
		return u.String()
	}
	return path.Base(trimmed)
}
