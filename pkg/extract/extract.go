// Package extract parses fetched documentation markup and locates the tables
// describing component versions. Selection is driven by header text, not by
// table position, so it survives documentation restructuring. A page without
// matching content yields empty results, never an error.
package extract

import (
	"bytes"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Link is a hyperlink found inside a table cell.
type Link struct {
	Text string
	Href string
}

// Cell is one table cell, with its visible text and any links it carried.
// Line breaks inside the cell become newlines in Text.
type Cell struct {
	Text  string
	Links []Link
}

// Table is a candidate table: a header row plus data rows.
type Table struct {
	Headers []string
	Rows    [][]Cell
}

// Parse parses raw page content into an HTML document tree.
func Parse(content []byte) (*html.Node, error) {
	return html.Parse(bytes.NewReader(content))
}

var releaseIDRe = regexp.MustCompile(`^(id-)?release(-notes)?-(\d+(-\d+)*)$`)

// FindReleaseSection locates the section of the page that documents the
// given release and returns the node holding its component tables. It
// matches section ids like "id-release-notes-3-1-2" as well as
// data-id-title attributes like "Release 3.1.2". When the section carries a
// dedicated "Components Versions" subsection, that subsection is returned
// instead. Returns nil when the page has no recognizable section for the
// release, in which case callers should scan the whole document.
func FindReleaseSection(root *html.Node, version string) *html.Node {
	dashed := strings.ReplaceAll(version, ".", "-")

	section := findNode(root, func(n *html.Node) bool {
		if n.Data != "section" {
			return false
		}
		if m := releaseIDRe.FindStringSubmatch(attr(n, "id")); m != nil && m[3] == dashed {
			return true
		}
		title := attr(n, "data-id-title")
		parts := strings.Fields(title)
		return len(parts) >= 2 && strings.EqualFold(parts[0], "release") && parts[1] == version
	})
	if section == nil {
		return nil
	}

	if sub := findNode(section, func(n *html.Node) bool {
		return n.Data == "section" && strings.EqualFold(attr(n, "data-id-title"), "Components Versions")
	}); sub != nil {
		return sub
	}
	return section
}

// CandidateTables collects every table under n as rows of cells. The first
// row of each table is treated as its header row.
func CandidateTables(n *html.Node) []Table {
	if n == nil {
		return nil
	}
	var tables []Table
	walk(n, func(node *html.Node) bool {
		if node.Type != html.ElementNode || node.Data != "table" {
			return true
		}
		if t, ok := parseTable(node); ok {
			tables = append(tables, t)
		}
		return false // do not descend into nested tables
	})
	return tables
}

// Select filters tables down to the ones whose header row satisfies match.
func Select(tables []Table, match func(headers []string) bool) []Table {
	var out []Table
	for _, t := range tables {
		if match(t.Headers) {
			out = append(out, t)
		}
	}
	return out
}

func parseTable(table *html.Node) (Table, bool) {
	var rows [][]Cell
	walk(table, func(n *html.Node) bool {
		if n != table && n.Type == html.ElementNode && n.Data == "table" {
			return false
		}
		if n.Type == html.ElementNode && n.Data == "tr" {
			if cells := parseRow(n); len(cells) > 0 {
				rows = append(rows, cells)
			}
			return false
		}
		return true
	})
	if len(rows) == 0 {
		return Table{}, false
	}

	headers := make([]string, len(rows[0]))
	for i, c := range rows[0] {
		headers[i] = c.Text
	}
	return Table{Headers: headers, Rows: rows[1:]}, true
}

func parseRow(tr *html.Node) []Cell {
	var cells []Cell
	walk(tr, func(n *html.Node) bool {
		if n.Type == html.ElementNode && (n.Data == "td" || n.Data == "th") {
			cells = append(cells, parseCell(n))
			return false
		}
		return true
	})
	return cells
}

// lineBreak marks an intentional break (<br>, paragraph boundary) inside a
// cell, so it survives the whitespace collapsing that folds markup newlines.
const lineBreak = "\x00"

func parseCell(td *html.Node) Cell {
	var cell Cell
	var text strings.Builder

	var visit func(*html.Node)
	visit = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			text.WriteString(n.Data)
		case n.Type == html.ElementNode && n.Data == "br":
			text.WriteString(lineBreak)
		case n.Type == html.ElementNode && n.Data == "a":
			if href := attr(n, "href"); href != "" {
				cell.Links = append(cell.Links, Link{Text: nodeText(n), Href: href})
			}
		case n.Type == html.ElementNode && n.Data == "p" && text.Len() > 0:
			text.WriteString(lineBreak)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(td)

	cell.Text = collapseLines(text.String())
	return cell
}

// nodeText returns the concatenated, whitespace-normalized text of a node.
func nodeText(n *html.Node) string {
	var b strings.Builder
	walk(n, func(node *html.Node) bool {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
		}
		return true
	})
	return strings.Join(strings.Fields(b.String()), " ")
}

// collapseLines folds markup whitespace into single spaces while turning
// lineBreak markers into newlines, dropping empty segments.
func collapseLines(s string) string {
	var lines []string
	for _, seg := range strings.Split(s, lineBreak) {
		seg = strings.Join(strings.Fields(seg), " ")
		if seg != "" {
			lines = append(lines, seg)
		}
	}
	return strings.Join(lines, "\n")
}

// walk visits nodes depth-first. The visitor returns false to stop
// descending into a node's children.
func walk(n *html.Node, visit func(*html.Node) bool) {
	if !visit(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

// findNode returns the first element node matching the predicate.
func findNode(n *html.Node, match func(*html.Node) bool) *html.Node {
	var result *html.Node
	walk(n, func(node *html.Node) bool {
		if result != nil {
			return false
		}
		if node.Type == html.ElementNode && match(node) {
			result = node
			return false
		}
		return true
	})
	return result
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}
