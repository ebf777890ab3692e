package markup

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// Title returns the text of the first <title> element of doc, or of the
// first <h1> when there is no title. It returns "" when neither exists.
func Title(doc []byte) string {
	root, err := html.Parse(bytes.NewReader(doc))
	if err != nil {
		return ""
	}

	if n := findElement(root, "title"); n != nil {
		if t := textContent(n); t != "" {
			return t
		}
	}
	if n := findElement(root, "h1"); n != nil {
		return textContent(n)
	}
	return ""
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
