package browser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// htmlNode adapts a goquery selection to the Node interface. The chrome
// session snapshots the live DOM into HTML and serves nodes from the
// snapshot, so extraction never races the page's own mutations.
type htmlNode struct {
	sel *goquery.Selection
}

func (n *htmlNode) Find(selector string) (Node, bool) {
	s := n.sel.Find(selector).First()
	if s.Length() == 0 {
		return nil, false
	}
	return &htmlNode{sel: s}, true
}

func (n *htmlNode) FindAll(selector string) []Node {
	var nodes []Node
	n.sel.Find(selector).Each(func(_ int, s *goquery.Selection) {
		nodes = append(nodes, &htmlNode{sel: s})
	})
	return nodes
}

func (n *htmlNode) Attr(name string) (string, bool) {
	return n.sel.Attr(name)
}

func (n *htmlNode) Text() string {
	return strings.TrimSpace(n.sel.Text())
}

// ParseNodes parses an HTML document and returns the nodes matching the
// selector. Exported so fixture-backed test doubles can serve the same
// Node implementation the live session does.
func ParseNodes(html, selector string) ([]Node, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page snapshot: %w", err)
	}

	var nodes []Node
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		nodes = append(nodes, &htmlNode{sel: s})
	})
	return nodes, nil
}
