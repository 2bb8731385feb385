package fetcher

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// fallbackTags are visited in this order; each element's text is collected.
var fallbackTags = []string{"p", "article", "div"}

// extractParagraphs returns the page title and the text of every <p>,
// <article> and <div> element joined by spaces. Script and style content is
// ignored.
func extractParagraphs(r io.Reader) (title, text string, err error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style, noscript, template").Remove()

	title = normalizeSpace(doc.Find("title").First().Text())
	if title == "" {
		title = normalizeSpace(doc.Find("h1").First().Text())
	}

	var parts []string
	for _, tag := range fallbackTags {
		doc.Find(tag).Each(func(_ int, s *goquery.Selection) {
			if t := normalizeSpace(s.Text()); t != "" {
				parts = append(parts, t)
			}
		})
	}
	return title, strings.Join(parts, " "), nil
}

// normalizeSpace collapses runs of whitespace into single spaces.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
