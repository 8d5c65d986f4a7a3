package extract

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var hiddenStylePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)display\s*:\s*none`),
	regexp.MustCompile(`(?i)visibility\s*:\s*hidden`),
}

// visibleContent returns the page's visible text plus the HTML of the
// region it came from. Semantic landmarks (main, article, [role=main],
// #content) are preferred; without one, the whole body is used.
func visibleContent(root *html.Node) (text, regionHTML string) {
	if region := findContentRegion(root); region != nil {
		return collectVisibleText(region), renderNode(region)
	}
	body := findBody(root)
	if body == nil {
		body = root
	}
	return collectVisibleText(body), renderNode(body)
}

// findContentRegion locates the main content landmark, if any.
func findContentRegion(root *html.Node) *html.Node {
	var region *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if region != nil {
			return
		}
		if n.Type == html.ElementNode {
			switch {
			case n.DataAtom == atom.Main, n.DataAtom == atom.Article:
				region = n
				return
			case attrValue(n, "role") == "main", attrValue(n, "id") == "content":
				region = n
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return region
}

// collectVisibleText gathers text nodes, skipping script/style/noscript,
// nav/footer/header boilerplate, and inline-hidden subtrees.
func collectVisibleText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript, atom.Nav, atom.Footer, atom.Header:
				return
			}
			if hasHiddenStyle(n) {
				return
			}
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func hasHiddenStyle(n *html.Node) bool {
	for _, a := range n.Attr {
		if a.Key == "style" {
			for _, pat := range hiddenStylePatterns {
				if pat.MatchString(a.Val) {
					return true
				}
			}
		}
		if a.Key == "hidden" {
			return true
		}
	}
	return false
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func findBody(root *html.Node) *html.Node {
	var body *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if body != nil {
			return
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.Body {
			body = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return body
}

func renderNode(n *html.Node) string {
	var sb strings.Builder
	if err := html.Render(&sb, n); err != nil {
		return ""
	}
	return sb.String()
}

// truncate trims text to at most max characters, cutting on a rune
// boundary and trimming trailing whitespace.
func truncate(text string, max int) string {
	text = strings.TrimSpace(text)
	if max <= 0 || len(text) <= max {
		return text
	}
	runes := []rune(text)
	if len(runes) > max {
		runes = runes[:max]
	}
	return strings.TrimSpace(string(runes))
}
