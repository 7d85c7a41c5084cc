package augment

import (
	"bytes"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"golang.org/x/net/html"
)

var linkRe = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)

// snippetClasses are result-snippet classes used by common HTML search
// frontends, checked in order.
var snippetClasses = []string{"result__snippet", "b_caption", "snippet"}

// extractSnippets pulls up to max text snippets from a results page,
// converted to plain markdown without links. Pages without known snippet
// markup fall back to paragraph text.
func extractSnippets(conv *md.Converter, page []byte, max int) []string {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil
	}
	removeElements(doc, "script", "style", "noscript", "nav", "header", "footer", "form")

	var nodes []*html.Node
	for _, class := range snippetClasses {
		nodes = findAll(doc, func(n *html.Node) bool { return hasClass(n, class) })
		if len(nodes) > 0 {
			break
		}
	}
	if len(nodes) == 0 {
		nodes = findAll(doc, func(n *html.Node) bool { return n.Data == "p" })
	}

	var out []string
	seen := make(map[string]bool)
	for _, n := range nodes {
		if max > 0 && len(out) >= max {
			break
		}
		text := toMarkdown(conv, n)
		if len(text) < 20 || seen[text] {
			continue
		}
		seen[text] = true
		out = append(out, text)
	}
	return out
}

func toMarkdown(conv *md.Converter, n *html.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return ""
	}
	text, err := conv.ConvertString(buf.String())
	if err != nil {
		return ""
	}
	text = linkRe.ReplaceAllString(text, "$1")
	return strings.Join(strings.Fields(text), " ")
}

func findAll(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && match(n) {
			out = append(out, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key == "class" {
			for _, c := range strings.Fields(a.Val) {
				if c == class {
					return true
				}
			}
		}
	}
	return false
}

func removeElements(root *html.Node, tags ...string) {
	drop := make(map[string]bool, len(tags))
	for _, t := range tags {
		drop[t] = true
	}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; {
			next := c.NextSibling
			if c.Type == html.ElementNode && drop[c.Data] {
				n.RemoveChild(c)
			} else {
				walk(c)
			}
			c = next
		}
	}
	walk(root)
}
