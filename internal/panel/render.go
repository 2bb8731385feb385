package panel

import (
	"bytes"
	"fmt"
	"html/template"
)

// articleTemplate renders a single article block. html/template escapes the
// title and summary, so markup in article text is displayed, never interpreted.
var articleTemplate = template.Must(template.New("article").Parse(
	`<div class="article"><h3>{{.Title}}</h3><p>{{.Summary}}</p></div>`))

// RenderBlock renders one article as an escaped HTML block.
func RenderBlock(a Article) (template.HTML, error) {
	var buf bytes.Buffer
	if err := articleTemplate.Execute(&buf, a); err != nil {
		return "", fmt.Errorf("render article %q: %w", a.Title, err)
	}
	// #nosec G203 -- output of html/template, already escaped
	return template.HTML(buf.String()), nil
}

// RenderBlocks renders articles in order, one block per article.
func RenderBlocks(articles []Article) ([]template.HTML, error) {
	blocks := make([]template.HTML, 0, len(articles))
	for _, a := range articles {
		b, err := RenderBlock(a)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}
