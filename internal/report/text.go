package report

import (
	"strings"

	"golang.org/x/net/html"
)

// Text parses an HTML document and returns its readable text, one block per
// line. Table cells on the same row are separated by two spaces.
func Text(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return ""
	}

	var sb strings.Builder
	var extract func(*html.Node)

	// Tags to skip (non-content)
	skipTags := map[string]bool{
		"head": true, "script": true, "style": true,
		"noscript": true, "iframe": true,
	}

	extract = func(n *html.Node) {
		if n.Type == html.ElementNode && skipTags[n.Data] {
			return
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				sb.WriteString(text)
				sb.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}

		if n.Type == html.ElementNode {
			switch n.Data {
			case "td", "th":
				sb.WriteString("\t")
			case "p", "div", "h1", "h2", "h3", "h4", "h5", "h6", "li", "br", "tr", "span", "footer":
				sb.WriteString("\n")
			}
		}
	}

	extract(doc)

	var lines []string
	for _, line := range strings.Split(sb.String(), "\n") {
		var cells []string
		for _, cell := range strings.Split(line, "\t") {
			if cell = strings.Join(strings.Fields(cell), " "); cell != "" {
				cells = append(cells, cell)
			}
		}
		if len(cells) > 0 {
			lines = append(lines, strings.Join(cells, "  "))
		}
	}
	return strings.Join(lines, "\n")
}
