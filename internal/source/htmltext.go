package source

import (
	"strings"

	"golang.org/x/net/html"
)

const maxErrorText = 300

// errorText turns an error response body into a short readable message.
// Endpoints behind proxies often answer with an HTML page; its title and
// visible text are used instead of the raw markup.
func errorText(contentType string, body []byte) string {
	text := strings.TrimSpace(string(body))
	if strings.Contains(strings.ToLower(contentType), "html") || strings.HasPrefix(strings.ToLower(text), "<!doctype html") || strings.HasPrefix(strings.ToLower(text), "<html") {
		if doc, err := html.Parse(strings.NewReader(text)); err == nil {
			text = visibleText(doc)
		}
	}
	text = strings.Join(strings.Fields(text), " ")
	if r := []rune(text); len(r) > maxErrorText {
		text = string(r[:maxErrorText]) + "..."
	}
	return text
}

// visibleText extracts text nodes from HTML, skipping scripts and styles.
// The title comes first when the page has one.
func visibleText(n *html.Node) string {
	var title string
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "head":
				if n.Data == "head" {
					title = findTitle(n)
				}
				return
			}
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	body := strings.TrimSpace(buf.String())
	switch {
	case title == "" || strings.HasPrefix(body, title):
		return body
	case body == "":
		return title
	default:
		return title + ": " + body
	}
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
		return strings.TrimSpace(n.FirstChild.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}
