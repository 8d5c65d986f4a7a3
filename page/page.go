// Package page acquires live page DOMs for extraction.
//
// A Source produces a parsed Document. Two acquisition paths exist, in
// escalating cost: a plain HTTP GET for static markup, and a rod-driven
// browser tab for pages that only render under JavaScript. Tests use
// StaticSource with fixture HTML.
package page

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is a parsed page DOM with its resolved URL and title.
type Document struct {
	URL   string
	Title string
	Root  *html.Node
}

// Source loads the current document for a page. Target reports the URL
// the source points at, so a failed Load can still be attributed to its
// page.
type Source interface {
	Load(ctx context.Context) (*Document, error)
	Target() string
}

// ParseDocument builds a Document from raw HTML. The title is read from
// the <title> element; pageURL is recorded as-is.
func ParseDocument(pageURL string, rawHTML []byte) (*Document, error) {
	root, err := html.Parse(strings.NewReader(string(rawHTML)))
	if err != nil {
		return nil, fmt.Errorf("page: parse html: %w", err)
	}
	return &Document{
		URL:   pageURL,
		Title: findTitle(root),
		Root:  root,
	}, nil
}

// StaticSource serves a fixed document. Used in tests and for replaying
// captured fixtures.
type StaticSource struct {
	URL  string
	HTML string
	Err  error
}

// Load parses the fixture HTML, or returns the configured error.
func (s *StaticSource) Load(_ context.Context) (*Document, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return ParseDocument(s.URL, []byte(s.HTML))
}

// Target returns the fixture URL.
func (s *StaticSource) Target() string { return s.URL }

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.DataAtom == atom.Title {
		if n.FirstChild != nil {
			return strings.TrimSpace(n.FirstChild.Data)
		}
		return ""
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}
