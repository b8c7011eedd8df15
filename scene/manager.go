package scene

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/lixenwraith/folio-motion/status"
)

// Manager tracks renderers and scenes by page key plus loose geometries, materials and textures
// The page key is the same prefix the scheduler cancels by; a mismatched key disposes nothing
type Manager struct {
	mu         sync.Mutex
	renderers  map[string]Renderer
	scenes     map[string]Scene
	geometries map[Disposable]struct{}
	materials  map[Material]struct{}
	textures   map[Disposable]struct{}
	logger     *zap.Logger

	statRenderers *atomic.Int64
	statScenes    *atomic.Int64
	statDisposed  *atomic.Int64
}

// NewManager creates an empty manager
func NewManager(logger *zap.Logger, reg *status.Registry) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	reg = status.OrNew(reg)
	return &Manager{
		renderers:     make(map[string]Renderer),
		scenes:        make(map[string]Scene),
		geometries:    make(map[Disposable]struct{}),
		materials:     make(map[Material]struct{}),
		textures:      make(map[Disposable]struct{}),
		logger:        logger,
		statRenderers: reg.Ints.Get("scene.renderers"),
		statScenes:    reg.Ints.Get("scene.scenes"),
		statDisposed:  reg.Ints.Get("scene.disposed"),
	}
}

// RegisterRenderer tracks r under key, replacing any previous renderer
func (m *Manager) RegisterRenderer(key string, r Renderer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.renderers[key] = r
	m.statRenderers.Store(int64(len(m.renderers)))
}

// RegisterScene tracks s under key, replacing any previous scene
func (m *Manager) RegisterScene(key string, s Scene) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scenes[key] = s
	m.statScenes.Store(int64(len(m.scenes)))
}

// TrackGeometry tracks g for DisposeAll
func (m *Manager) TrackGeometry(g Disposable) {
	m.mu.Lock()
	m.geometries[g] = struct{}{}
	m.mu.Unlock()
}

// TrackMaterial tracks mat for DisposeAll
func (m *Manager) TrackMaterial(mat Material) {
	m.mu.Lock()
	m.materials[mat] = struct{}{}
	m.mu.Unlock()
}

// TrackTexture tracks t for DisposeAll
func (m *Manager) TrackTexture(t Disposable) {
	m.mu.Lock()
	m.textures[t] = struct{}{}
	m.mu.Unlock()
}

// DisposeScene releases every mesh geometry and material of the scene under key and forgets it
func (m *Manager) DisposeScene(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.disposeSceneLocked(key)
}

func (m *Manager) disposeSceneLocked(key string) bool {
	s, ok := m.scenes[key]
	if !ok {
		return false
	}

	s.Traverse(func(obj any) {
		mesh, ok := obj.(Mesh)
		if !ok {
			return
		}
		if g := mesh.Geometry(); g != nil {
			g.Dispose()
			delete(m.geometries, g)
			m.statDisposed.Add(1)
		}
		for _, mat := range mesh.Materials() {
			m.disposeMaterialLocked(mat)
		}
	})

	delete(m.scenes, key)
	m.statScenes.Store(int64(len(m.scenes)))
	m.logger.Debug("scene disposed", zap.String("key", key))
	return true
}

func (m *Manager) disposeMaterialLocked(mat Material) {
	if mat == nil {
		return
	}
	mat.Dispose()
	delete(m.materials, mat)
	m.statDisposed.Add(1)
	for _, tex := range mat.Textures() {
		if tex == nil {
			continue
		}
		tex.Dispose()
		delete(m.textures, tex)
		m.statDisposed.Add(1)
	}
}

// DisposeRenderer releases and forgets the renderer under key
func (m *Manager) DisposeRenderer(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.disposeRendererLocked(key)
}

func (m *Manager) disposeRendererLocked(key string) bool {
	r, ok := m.renderers[key]
	if !ok {
		return false
	}
	r.Dispose()
	delete(m.renderers, key)
	m.statRenderers.Store(int64(len(m.renderers)))
	m.statDisposed.Add(1)
	m.logger.Debug("renderer disposed", zap.String("key", key))
	return true
}

// DisposePage releases the scene and renderer registered under pageKey
func (m *Manager) DisposePage(pageKey string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disposeSceneLocked(pageKey)
	m.disposeRendererLocked(pageKey)
}

// DisposeAll releases every tracked resource
func (m *Manager) DisposeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for g := range m.geometries {
		g.Dispose()
		m.statDisposed.Add(1)
	}
	clear(m.geometries)

	for mat := range m.materials {
		m.disposeMaterialLocked(mat)
	}
	clear(m.materials)

	for tex := range m.textures {
		tex.Dispose()
		m.statDisposed.Add(1)
	}
	clear(m.textures)

	for key := range m.scenes {
		m.disposeSceneLocked(key)
	}
	for key := range m.renderers {
		m.disposeRendererLocked(key)
	}
}

// RendererCount returns the number of tracked renderers
func (m *Manager) RendererCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.renderers)
}

// SceneCount returns the number of tracked scenes
func (m *Manager) SceneCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.scenes)
}

// TrackedCount returns the number of loose geometries, materials and textures still tracked
func (m *Manager) TrackedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.geometries) + len(m.materials) + len(m.textures)
}
