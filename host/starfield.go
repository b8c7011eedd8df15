package host

import (
	"math/rand/v2"
	"sync"

	"github.com/lixenwraith/folio-motion/scene"
)

type star struct {
	x, y  float64 // Normalized [0, 1)
	speed float64
}

// Starfield is the background renderer of a page, the terminal stand-in for a 3D scene
// It is registered with the scene manager under the page key and disposed on route change
type Starfield struct {
	mu       sync.Mutex
	stars    []star
	boost    float64
	disposed bool

	geom     *scene.Resource
	texture  *scene.Resource
	material *scene.BasicMaterial
}

// NewStarfield creates n stars placed from seed
func NewStarfield(n int, seed uint64) *Starfield {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	sf := &Starfield{
		stars:   make([]star, n),
		geom:    scene.NewResource("starfield-points"),
		texture: scene.NewResource("starfield-sprite"),
	}
	sf.material = scene.NewMaterial("starfield-material", sf.texture)
	for i := range sf.stars {
		sf.stars[i] = star{x: rng.Float64(), y: rng.Float64(), speed: 0.002 + rng.Float64()*0.006}
	}
	return sf
}

// Scene returns the graph tracked by the scene manager
func (sf *Starfield) Scene() *scene.Graph {
	return (&scene.Graph{}).Add(&scene.BasicMesh{Geom: sf.geom, Mats: []scene.Material{sf.material}})
}

// Dispose implements scene.Renderer
func (sf *Starfield) Dispose() {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	sf.disposed = true
	sf.stars = nil
}

// Disposed reports whether the renderer was released
func (sf *Starfield) Disposed() bool {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	return sf.disposed
}

// Nudge speeds the field up briefly
func (sf *Starfield) Nudge() {
	sf.mu.Lock()
	sf.boost = min(sf.boost+4, 12)
	sf.mu.Unlock()
}

// Update advances one frame
func (sf *Starfield) Update() {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	for i := range sf.stars {
		s := &sf.stars[i]
		s.x -= s.speed * (1 + sf.boost)
		if s.x < 0 {
			s.x += 1
		}
	}
	sf.boost *= 0.9
}

// Draw plots every star through set on a width×height grid
func (sf *Starfield) Draw(width, height int, set func(x, y int, r rune)) {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	for _, s := range sf.stars {
		r := '·'
		if s.speed > 0.006 {
			r = '•'
		}
		set(int(s.x*float64(width)), int(s.y*float64(height)), r)
	}
}
