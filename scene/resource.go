// Package scene tracks rendering resources per page key and releases them when a page unmounts
package scene

import "sync/atomic"

// Disposable is any resource holding renderer-side memory
type Disposable interface {
	Dispose()
}

// Material is a disposable that may own textures
type Material interface {
	Disposable
	Textures() []Disposable
}

// Mesh is a scene object with geometry and one or more materials
type Mesh interface {
	Geometry() Disposable
	Materials() []Material
}

// Scene is a graph of objects; Traverse visits every object, meshes included
type Scene interface {
	Traverse(fn func(obj any))
}

// Renderer draws scenes and owns a drawing surface
type Renderer interface {
	Disposable
}

// Resource is a named disposable that records how often it was released
type Resource struct {
	Name     string
	disposed atomic.Int32
}

// NewResource creates a live resource
func NewResource(name string) *Resource {
	return &Resource{Name: name}
}

// Dispose implements Disposable
func (r *Resource) Dispose() { r.disposed.Add(1) }

// Disposed reports whether Dispose was called at least once
func (r *Resource) Disposed() bool { return r.disposed.Load() > 0 }

// DisposeCount returns the number of Dispose calls
func (r *Resource) DisposeCount() int { return int(r.disposed.Load()) }

// BasicMaterial is a Material backed by Resource
type BasicMaterial struct {
	*Resource
	Maps []Disposable
}

// NewMaterial creates a material owning textures
func NewMaterial(name string, textures ...Disposable) *BasicMaterial {
	return &BasicMaterial{Resource: NewResource(name), Maps: textures}
}

// Textures implements Material
func (m *BasicMaterial) Textures() []Disposable { return m.Maps }

// BasicMesh pairs geometry with materials
type BasicMesh struct {
	Geom Disposable
	Mats []Material
}

// Geometry implements Mesh
func (m *BasicMesh) Geometry() Disposable { return m.Geom }

// Materials implements Mesh
func (m *BasicMesh) Materials() []Material { return m.Mats }

// Graph is a flat Scene of objects with optional children graphs
type Graph struct {
	Objects  []any
	Children []*Graph
}

// Add appends objects and returns the graph
func (g *Graph) Add(objs ...any) *Graph {
	g.Objects = append(g.Objects, objs...)
	return g
}

// Traverse implements Scene, depth first
func (g *Graph) Traverse(fn func(obj any)) {
	for _, o := range g.Objects {
		fn(o)
	}
	for _, c := range g.Children {
		c.Traverse(fn)
	}
}
