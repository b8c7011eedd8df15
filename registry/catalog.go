package registry

import "slices"

// Catalog is a read-only ordered set of descriptors
// Queries are linear filters; lookup by id keeps the first occurrence when ids collide
type Catalog struct {
	entries []Descriptor
	first   map[string]int
}

// Stats aggregates catalog counts
type Stats struct {
	Total       int
	ByPage      map[string]int
	ByTrigger   map[string]int
	ByEngine    map[string]int
	ByComponent map[string]int
}

// NewCatalog concatenates descriptor groups in order
func NewCatalog(groups ...[]Descriptor) *Catalog {
	n := 0
	for _, g := range groups {
		n += len(g)
	}

	c := &Catalog{
		entries: make([]Descriptor, 0, n),
		first:   make(map[string]int, n),
	}
	for _, g := range groups {
		for _, d := range g {
			if _, dup := c.first[d.ID]; !dup {
				c.first[d.ID] = len(c.entries)
			}
			c.entries = append(c.entries, d)
		}
	}
	return c
}

// Len returns the number of entries including duplicates
func (c *Catalog) Len() int { return len(c.entries) }

// All returns a copy of every entry in catalog order
func (c *Catalog) All() []Descriptor { return slices.Clone(c.entries) }

// IDs returns every entry id in catalog order
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.entries))
	for i, d := range c.entries {
		ids[i] = d.ID
	}
	return ids
}

// Lookup returns the first descriptor with the given id
func (c *Catalog) Lookup(id string) (Descriptor, bool) {
	i, ok := c.first[id]
	if !ok {
		return Descriptor{}, false
	}
	return c.entries[i], true
}

// Has reports whether id is present
func (c *Catalog) Has(id string) bool {
	_, ok := c.first[id]
	return ok
}

// ByPage returns entries owned by page
func (c *Catalog) ByPage(page string) []Descriptor {
	return c.filter(func(d Descriptor) bool { return d.Page == page })
}

// ByComponent returns entries owned by component across all pages
func (c *Catalog) ByComponent(component string) []Descriptor {
	return c.filter(func(d Descriptor) bool { return d.Component == component })
}

// ByTrigger returns entries started by trigger
func (c *Catalog) ByTrigger(trigger Trigger) []Descriptor {
	return c.filter(func(d Descriptor) bool { return d.Trigger == trigger })
}

func (c *Catalog) filter(keep func(Descriptor) bool) []Descriptor {
	var out []Descriptor
	for _, d := range c.entries {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}

// Stats counts entries grouped by page, trigger, engine and component
func (c *Catalog) Stats() Stats {
	s := Stats{
		Total:       len(c.entries),
		ByPage:      make(map[string]int),
		ByTrigger:   make(map[string]int),
		ByEngine:    make(map[string]int),
		ByComponent: make(map[string]int),
	}
	for _, d := range c.entries {
		s.ByPage[d.Page]++
		s.ByTrigger[string(d.Trigger)]++
		s.ByEngine[string(d.Engine)]++
		s.ByComponent[d.Component]++
	}
	return s
}
