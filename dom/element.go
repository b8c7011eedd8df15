// Package dom is a minimal element tree used as the target of animation effects
// Hosts map their native widgets onto Node so the animation core never touches a real display
package dom

import (
	"slices"
	"sync"
)

// Element is the read side of a node, as seen by delegation and animation effects
type Element interface {
	// Attr returns the attribute value and whether it is present
	Attr(name string) (string, bool)

	// ParentElement returns the enclosing element or nil at the root
	ParentElement() Element
}

// Closest walks from e up through its ancestors and returns the first element carrying attr
// Returns nil when no element in the chain has the attribute
func Closest(e Element, attr string) Element {
	for cur := e; cur != nil; cur = cur.ParentElement() {
		if _, ok := cur.Attr(attr); ok {
			return cur
		}
	}
	return nil
}

// Node is a mutable element with attributes, classes and inline style
// Safe for concurrent use; mutation from effects and reads from renderers may interleave
type Node struct {
	mu       sync.RWMutex
	tag      string
	attrs    map[string]string
	classes  []string
	style    map[string]string
	parent   *Node
	children []*Node
}

// NewNode creates a detached node
func NewNode(tag string) *Node {
	return &Node{
		tag:   tag,
		attrs: make(map[string]string),
		style: make(map[string]string),
	}
}

// Tag returns the node tag name
func (n *Node) Tag() string { return n.tag }

// Attr implements Element
func (n *Node) Attr(name string) (string, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	v, ok := n.attrs[name]
	return v, ok
}

// SetAttr sets an attribute, returning the node for chaining
func (n *Node) SetAttr(name, value string) *Node {
	n.mu.Lock()
	n.attrs[name] = value
	n.mu.Unlock()
	return n
}

// RemoveAttr deletes an attribute
func (n *Node) RemoveAttr(name string) {
	n.mu.Lock()
	delete(n.attrs, name)
	n.mu.Unlock()
}

// ParentElement implements Element
// Returns an untyped nil at the root so callers can compare against nil
func (n *Node) ParentElement() Element {
	n.mu.RLock()
	p := n.parent
	n.mu.RUnlock()
	if p == nil {
		return nil
	}
	return p
}

// Parent returns the typed parent node
func (n *Node) Parent() *Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.parent
}

// Append attaches child as the last child of n and returns child
func (n *Node) Append(child *Node) *Node {
	child.mu.Lock()
	child.parent = n
	child.mu.Unlock()

	n.mu.Lock()
	n.children = append(n.children, child)
	n.mu.Unlock()
	return child
}

// Children returns a copy of the child list
func (n *Node) Children() []*Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return slices.Clone(n.children)
}

// Walk visits n and all descendants depth-first
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children() {
		c.Walk(fn)
	}
}

// AddClass adds a class if not already present
func (n *Node) AddClass(class string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !slices.Contains(n.classes, class) {
		n.classes = append(n.classes, class)
	}
}

// RemoveClass removes a class if present
func (n *Node) RemoveClass(class string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.classes = slices.DeleteFunc(n.classes, func(c string) bool { return c == class })
}

// ToggleClass flips a class and reports whether it is now present
func (n *Node) ToggleClass(class string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if i := slices.Index(n.classes, class); i >= 0 {
		n.classes = slices.Delete(n.classes, i, i+1)
		return false
	}
	n.classes = append(n.classes, class)
	return true
}

// HasClass reports whether the class is present
func (n *Node) HasClass(class string) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return slices.Contains(n.classes, class)
}

// Classes returns a copy of the class list in insertion order
func (n *Node) Classes() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return slices.Clone(n.classes)
}

// SetStyle sets an inline style property, empty value removes it
func (n *Node) SetStyle(prop, value string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if value == "" {
		delete(n.style, prop)
		return
	}
	n.style[prop] = value
}

// Style returns an inline style property
func (n *Node) Style(prop string) string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.style[prop]
}
