package host

import (
	"fmt"

	"github.com/lixenwraith/folio-motion/dom"
	"github.com/lixenwraith/folio-motion/registry"
)

// Screen rows reserved outside the item list
const (
	navRow      = 0
	firstRow    = 2
	chromeRows  = 3 // nav, spacer, status
	navLinkGap  = 1
	routeAttr   = "data-route"
	pageAttr    = "data-page"
	itemPadding = 2
)

// Item is one rendered element bound to a descriptor
type Item struct {
	Node  *dom.Node // Carries the animation id attribute
	Label *dom.Node // Hit target, child of Node
	Desc  registry.Descriptor
}

// NavLink is a route link in the top bar
type NavLink struct {
	Page string
	Node *dom.Node
	X, W int
}

// Page is the element tree of one route
type Page struct {
	Key    string
	Root   *dom.Node
	Items  []*Item
	Nav    []*NavLink
	Offset int

	byID  map[string]*Item
	nodes map[string]*dom.Node // Every element carrying an animation id, nav included
}

// BuildPage creates the tree for route key from its descriptors
// Nav links carry the global nav animation ids, so hovering them animates like any other element
func BuildPage(key string, descs []registry.Descriptor, navIDs []string, attr string) *Page {
	root := dom.NewNode("main")
	p := &Page{
		Key:   key,
		Root:  root,
		byID:  make(map[string]*Item, len(descs)),
		nodes: make(map[string]*dom.Node, len(descs)+len(navIDs)),
	}

	nav := root.Append(dom.NewNode("nav"))
	x := 0
	for i, page := range registry.Pages {
		label := fmt.Sprintf("[%s]", page)
		link := nav.Append(dom.NewNode("a")).SetAttr(routeAttr, page)
		if i < len(navIDs) {
			link.SetAttr(attr, navIDs[i])
			p.nodes[navIDs[i]] = link
		}
		if page == key {
			link.AddClass("current")
		}
		p.Nav = append(p.Nav, &NavLink{Page: page, Node: link, X: x, W: len(label)})
		x += len(label) + navLinkGap
	}

	section := root.Append(dom.NewNode("section")).SetAttr(pageAttr, key)
	for _, d := range descs {
		node := section.Append(dom.NewNode("article")).SetAttr(attr, d.ID)
		node.SetAttr("data-engine", string(d.Engine))
		label := node.Append(dom.NewNode("span"))
		item := &Item{Node: node, Label: label, Desc: d}
		p.Items = append(p.Items, item)
		p.byID[d.ID] = item
		p.nodes[d.ID] = node
	}
	return p
}

// Item returns the rendered item for an animation id
func (p *Page) Item(id string) (*Item, bool) {
	it, ok := p.byID[id]
	return it, ok
}

// Node returns the element carrying animation id, nil when not on this page
func (p *Page) Node(id string) *dom.Node {
	return p.nodes[id]
}

// Nodes visits every element carrying an animation id
func (p *Page) Nodes(fn func(id string, n *dom.Node)) {
	for id, n := range p.nodes {
		fn(id, n)
	}
}

// Visible returns the index range of items that fit a screen of the given height
func (p *Page) Visible(height int) (from, to int) {
	rows := max(height-chromeRows, 0)
	from = min(p.Offset, len(p.Items))
	to = min(from+rows, len(p.Items))
	return from, to
}

// Scroll moves the viewport by delta rows, clamped to the item list
func (p *Page) Scroll(delta, height int) {
	rows := max(height-chromeRows, 1)
	maxOffset := max(len(p.Items)-rows, 0)
	p.Offset = max(0, min(maxOffset, p.Offset+delta))
}

// HitTest returns the deepest node under screen cell (x, y), or nil
func (p *Page) HitTest(x, y, width, height int) *dom.Node {
	if y == navRow {
		for _, l := range p.Nav {
			if x >= l.X && x < l.X+l.W {
				return l.Node
			}
		}
		return nil
	}

	from, to := p.Visible(height)
	i := from + y - firstRow
	if y < firstRow || i >= to || x < itemPadding || x >= width-itemPadding {
		return nil
	}
	return p.Items[i].Label
}

// RowOf returns the screen row of the item at index i, or -1 when scrolled out
func (p *Page) RowOf(i, height int) int {
	from, to := p.Visible(height)
	if i < from || i >= to {
		return -1
	}
	return firstRow + i - from
}

// Route returns the route named by node or one of its ancestors
func Route(node dom.Element) (string, bool) {
	el := dom.Closest(node, routeAttr)
	if el == nil {
		return "", false
	}
	return el.Attr(routeAttr)
}
