// Package richtext flattens HTML produced by the CRM rich-text editor into
// plain text suitable for chat channels.
package richtext

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// blockTags end a line when flattened.
const blockTags = "p, div, li, h1, h2, h3, h4, h5, h6, tr"

// ToPlain converts an HTML fragment to plain text. Input without markup is returned trimmed.
func ToPlain(html string) string {
	if !strings.ContainsAny(html, "<&") {
		return strings.TrimSpace(html)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.TrimSpace(html)
	}

	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("li").Each(func(_ int, sel *goquery.Selection) {
		sel.PrependHtml("• ")
	})
	doc.Find(blockTags).Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml("\n")
	})
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if text := strings.TrimSpace(sel.Text()); text != "" && text != href {
			sel.SetText(text + " (" + href + ")")
		}
	})

	lines := strings.Split(doc.Text(), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" && (len(out) == 0 || out[len(out)-1] == "") {
			continue
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
