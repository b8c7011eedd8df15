package host

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/lixenwraith/folio-motion/delegation"
	"github.com/lixenwraith/folio-motion/dom"
	"github.com/lixenwraith/folio-motion/engine"
	"github.com/lixenwraith/folio-motion/event"
	"github.com/lixenwraith/folio-motion/prefs"
	"github.com/lixenwraith/folio-motion/registry"
	"github.com/lixenwraith/folio-motion/scene"
	"github.com/lixenwraith/folio-motion/scheduler"
)

const (
	screenW = 120
	screenH = 40
)

type started struct {
	id      string
	trigger string
}

type harness struct {
	t       *testing.T
	screen  tcell.SimulationScreen
	clock   *engine.MockTimeProvider
	cat     *registry.Catalog
	ctrl    *engine.Controller
	sched   *scheduler.Scheduler
	scenes  *scene.Manager
	reduced *prefs.Flag
	hidden  *prefs.Flag
	host    *Host

	mu     sync.Mutex
	starts []started
	stops  []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(screenW, screenH)

	h := &harness{
		t:       t,
		screen:  screen,
		clock:   engine.NewMockTimeProvider(time.Unix(1_700_000_000, 0)),
		cat:     registry.Portfolio(rand.New(rand.NewSource(7))),
		reduced: prefs.NewFlag(false),
		hidden:  prefs.NewFlag(false),
	}
	h.ctrl = engine.NewController(engine.WithTimeSource(h.clock))
	h.sched = scheduler.New(scheduler.Options{
		Clock:         h.clock,
		Store:         prefs.NewMemoryStore(),
		ReducedMotion: h.reduced,
		Hidden:        h.hidden,
	})
	h.scenes = scene.NewManager(nil, nil)

	h.ctrl.OnFunc(event.EventStart, func(ev event.Event) {
		h.mu.Lock()
		defer h.mu.Unlock()
		trigger, _ := ev.Context["trigger"].(string)
		h.starts = append(h.starts, started{id: ev.ID, trigger: trigger})
	})
	h.ctrl.OnFunc(event.EventStop, func(ev event.Event) {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.stops = append(h.stops, ev.ID)
	})

	host, err := New(Options{
		Screen:      screen,
		Catalog:     h.cat,
		Controller:  h.ctrl,
		Scheduler:   h.sched,
		Scenes:      h.scenes,
		Hidden:      h.hidden,
		ValidateIDs: true,
		Clock:       h.clock,
		Seed:        1,
	})
	require.NoError(t, err)
	h.host = host
	return h
}

func (h *harness) startsFor(id string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var triggers []string
	for _, s := range h.starts {
		if s.id == id {
			triggers = append(triggers, s.trigger)
		}
	}
	return triggers
}

func (h *harness) stopped(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, s := range h.stops {
		if s == id {
			return true
		}
	}
	return false
}

func (h *harness) mouse(x, y int, btn tcell.ButtonMask) {
	h.host.Post(tcell.NewEventMouse(x, y, btn, tcell.ModNone))
	h.host.Frame()
}

func (h *harness) key(k tcell.Key, r rune) {
	h.host.Post(tcell.NewEventKey(k, r, tcell.ModNone))
	h.host.Frame()
}

func (h *harness) itemCell(i int) (int, int) {
	row := h.host.Page().RowOf(i, screenH)
	require.GreaterOrEqual(h.t, row, firstRow)
	return itemPadding, row
}

// interactive returns the indexes of items not started by page load
func (h *harness) interactive(n int) []int {
	var idx []int
	for i, it := range h.host.Page().Items {
		if it.Desc.Trigger != registry.TriggerLoad {
			idx = append(idx, i)
		}
		if len(idx) == n {
			return idx
		}
	}
	h.t.Fatalf("page %s has fewer than %d interactive items", h.host.Page().Key, n)
	return nil
}

func loadIDs(cat *registry.Catalog, page string) []string {
	var ids []string
	for _, d := range cat.ByPage(page) {
		if d.Trigger == registry.TriggerLoad {
			ids = append(ids, d.ID)
		}
	}
	return ids
}

func TestNewMountsHome(t *testing.T) {
	h := newHarness(t)
	defer h.screen.Fini()

	page := h.host.Page()
	require.NotNil(t, page)
	assert.Equal(t, registry.PageHome, page.Key)
	assert.Len(t, page.Items, len(h.cat.ByPage(registry.PageHome)))
	assert.Equal(t, 1, h.scenes.RendererCount())
	assert.Equal(t, 1, h.scenes.SceneCount())

	ids := loadIDs(h.cat, registry.PageHome)
	require.NotEmpty(t, ids)
	assert.Equal(t, len(ids), h.sched.Len())
	for _, id := range ids {
		assert.True(t, h.sched.Pending(registry.PageHome+":"+id), id)
	}
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestLoadPriorityOption(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	defer screen.Fini()
	clock := engine.NewMockTimeProvider(time.Unix(0, 0))
	cat := registry.Portfolio(rand.New(rand.NewSource(7)))

	build := func(priority string) (*scheduler.Scheduler, error) {
		sched := scheduler.New(scheduler.Options{Clock: clock, ReducedMotion: prefs.NewFlag(true)})
		_, err := New(Options{
			Screen:       screen,
			Catalog:      cat,
			Controller:   engine.NewController(engine.WithTimeSource(clock)),
			Scheduler:    sched,
			Clock:        clock,
			LoadPriority: priority,
		})
		return sched, err
	}

	_, err := build("urgent")
	assert.Error(t, err)

	// Critical load entries still queue under reduced motion
	sched, err := build("critical")
	require.NoError(t, err)
	assert.Equal(t, len(loadIDs(cat, registry.PageHome)), sched.Len())

	sched, err = build("")
	require.NoError(t, err)
	assert.Zero(t, sched.Len())
}

func TestLoadAnimationsPlayAfterDelay(t *testing.T) {
	h := newHarness(t)
	defer h.screen.Fini()

	ids := loadIDs(h.cat, registry.PageHome)
	h.clock.Advance(time.Minute)
	h.host.Frame()
	for _, id := range ids {
		assert.Equal(t, []string{"load"}, h.startsFor(id), id)
	}

	// Completion entries queued by the effects run on a later frame
	h.clock.Advance(time.Minute)
	h.host.Frame()
	for _, id := range ids {
		assert.True(t, h.stopped(id), id)
		st, ok := h.ctrl.State(id)
		require.True(t, ok)
		assert.False(t, st.Playing, id)
	}
}

func TestReducedMotionPlaysLoadImmediately(t *testing.T) {
	h := newHarness(t)
	defer h.screen.Fini()

	h.reduced.Set(true)
	h.key(tcell.KeyRune, '9')
	require.Equal(t, registry.PageContact, h.host.Page().Key)

	ids := loadIDs(h.cat, registry.PageContact)
	require.NotEmpty(t, ids)
	assert.Zero(t, h.sched.Len())
	for _, id := range ids {
		assert.Equal(t, []string{"load"}, h.startsFor(id), id)
		assert.True(t, h.stopped(id), id)
	}
}

func TestClickPlaysItemOnPressEdge(t *testing.T) {
	h := newHarness(t)
	defer h.screen.Fini()

	i := h.interactive(1)[0]
	id := h.host.Page().Items[i].Desc.ID
	x, y := h.itemCell(i)

	h.mouse(x, y, tcell.Button1)
	h.mouse(x, y, tcell.Button1)
	assert.Equal(t, []string{"pointer-enter", "click"}, h.startsFor(id))

	h.mouse(x, y, tcell.ButtonNone)
	h.mouse(x, y, tcell.Button1)
	assert.Equal(t, []string{"pointer-enter", "click", "click"}, h.startsFor(id))
}

func TestHoverLeaveStops(t *testing.T) {
	h := newHarness(t)
	defer h.screen.Fini()

	i := h.interactive(1)[0]
	id := h.host.Page().Items[i].Desc.ID
	x, y := h.itemCell(i)

	h.mouse(x, y, tcell.ButtonNone)
	assert.Equal(t, []string{"pointer-enter"}, h.startsFor(id))
	item := h.host.Page().Items[i]
	assert.True(t, item.Node.HasClass(effectClassFor(item.Desc.Engine)))

	h.clock.Advance(MotionThrottle)
	h.mouse(0, screenH-2, tcell.ButtonNone)
	assert.True(t, h.stopped(id))
	for _, c := range effectClasses {
		assert.False(t, item.Node.HasClass(c), c)
	}
}

func effectClassFor(e registry.Engine) string {
	switch e {
	case registry.EngineMotion:
		return classMoving
	case registry.EngineTimeline:
		return classTimeline
	case registry.EngineVector:
		return classDrawn
	}
	return classActive
}

func TestPointerMotionThrottled(t *testing.T) {
	h := newHarness(t)
	defer h.screen.Fini()

	idx := h.interactive(2)
	first := h.host.Page().Items[idx[0]].Desc.ID
	second := h.host.Page().Items[idx[1]].Desc.ID
	x0, y0 := h.itemCell(idx[0])
	x1, y1 := h.itemCell(idx[1])

	h.mouse(x0, y0, tcell.ButtonNone)
	h.clock.Advance(10 * time.Millisecond)
	h.mouse(x1, y1, tcell.ButtonNone)
	assert.Empty(t, h.startsFor(second), "move inside the throttle window must be deferred")

	// Trailing flush delivers the last position once the window passes
	h.clock.Advance(MotionThrottle)
	h.host.Frame()
	assert.Equal(t, []string{"pointer-enter"}, h.startsFor(second))
	assert.True(t, h.stopped(first))
}

func TestNavLinkChangesRoute(t *testing.T) {
	h := newHarness(t)
	defer h.screen.Fini()

	oldField := h.host.Starfield()
	target := h.host.Page().Nav[2]
	navID, ok := target.Node.Attr(delegation.DefaultAttribute)
	require.True(t, ok)

	h.mouse(target.X, navRow, tcell.Button1)

	page := h.host.Page()
	assert.Equal(t, target.Page, page.Key)
	assert.Contains(t, h.startsFor(navID), "click")
	assert.True(t, oldField.Disposed())
	assert.False(t, h.host.Starfield().Disposed())
	assert.Equal(t, 1, h.scenes.RendererCount())

	for _, id := range loadIDs(h.cat, registry.PageHome) {
		assert.False(t, h.sched.Pending(registry.PageHome+":"+id), id)
	}
	// Zero-delay entries may already have fired within the same frame
	for _, id := range loadIDs(h.cat, target.Page) {
		assert.True(t, h.sched.Pending(target.Page+":"+id) || len(h.startsFor(id)) > 0, id)
	}
	assert.True(t, page.Nav[2].Node.HasClass("current"))
}

func TestRouteChangeEndsNavHover(t *testing.T) {
	h := newHarness(t)
	defer h.screen.Fini()

	link := h.host.Page().Nav[1]
	navID, ok := link.Node.Attr(delegation.DefaultAttribute)
	require.True(t, ok)

	h.mouse(link.X, navRow, tcell.ButtonNone)
	require.Equal(t, []string{"pointer-enter"}, h.startsFor(navID))
	st, _ := h.ctrl.State(navID)
	require.True(t, st.Playing)

	h.key(tcell.KeyRune, '9')
	require.Equal(t, registry.PageContact, h.host.Page().Key)
	assert.True(t, h.stopped(navID))
	st, _ = h.ctrl.State(navID)
	assert.False(t, st.Playing)
}

func TestRouteChangeStopsPlayingAnimations(t *testing.T) {
	h := newHarness(t)
	defer h.screen.Fini()

	i := h.interactive(1)[0]
	id := h.host.Page().Items[i].Desc.ID
	x, y := h.itemCell(i)
	h.mouse(x, y, tcell.Button1)
	st, _ := h.ctrl.State(id)
	require.True(t, st.Playing)

	h.key(tcell.KeyRune, '2')
	assert.Equal(t, registry.Pages[1], h.host.Page().Key)
	st, _ = h.ctrl.State(id)
	assert.False(t, st.Playing)
	assert.True(t, h.stopped(id))
}

func TestKeys(t *testing.T) {
	h := newHarness(t)
	defer h.screen.Fini()

	h.key(tcell.KeyBacktab, 0)
	assert.Equal(t, registry.Pages[len(registry.Pages)-1], h.host.Page().Key)
	h.key(tcell.KeyTab, 0)
	assert.Equal(t, registry.Pages[0], h.host.Page().Key)

	h.key(tcell.KeyRune, 'p')
	assert.True(t, h.sched.LowPowerMode())
	h.key(tcell.KeyRune, 'p')
	assert.False(t, h.sched.LowPowerMode())

	var resets int
	h.ctrl.OnFunc(event.EventResetAll, func(event.Event) { resets++ })
	h.key(tcell.KeyRune, 'r')
	assert.Equal(t, 1, resets)
	assert.Zero(t, h.sched.Len())
}

func TestFocusPausesScheduler(t *testing.T) {
	h := newHarness(t)
	defer h.screen.Fini()

	h.host.Post(tcell.NewEventFocus(false))
	h.host.Frame()
	assert.True(t, h.hidden.Active())
	assert.True(t, h.sched.Paused())

	h.host.Post(tcell.NewEventFocus(true))
	h.host.Frame()
	assert.False(t, h.sched.Paused())
}

func TestWheelScrolls(t *testing.T) {
	h := newHarness(t)
	defer h.screen.Fini()

	h.mouse(5, 5, tcell.WheelDown)
	if len(h.host.Page().Items) > screenH-chromeRows {
		assert.Equal(t, 1, h.host.Page().Offset)
	}
	h.mouse(5, 5, tcell.WheelUp)
	assert.Zero(t, h.host.Page().Offset)
}

func TestEffectErrorShownInStatus(t *testing.T) {
	h := newHarness(t)
	defer h.screen.Fini()

	h.ctrl.Register(registry.Descriptor{ID: "broken", Page: registry.PageHome, Engine: registry.EngineCSS},
		func(dom.Element, registry.Descriptor) error { return assert.AnError })
	h.ctrl.Play("broken", nil, nil)
	h.host.Frame()

	assert.Contains(t, h.host.lastErr, "broken")
	assert.Contains(t, screenRow(h.screen, screenH-1), "broken")
}

func TestRenderDrawsNavAndItems(t *testing.T) {
	h := newHarness(t)
	defer h.screen.Fini()

	h.host.Frame()
	assert.Contains(t, screenRow(h.screen, navRow), "[home]")
	first := h.host.Page().Items[0].Desc.ID
	assert.Contains(t, screenRow(h.screen, firstRow), first)
	assert.Contains(t, screenRow(h.screen, screenH-1), "home")

	h.host.Frame()
	assert.Contains(t, screenRow(h.screen, screenH-1), "#1 ")
}

func TestRunQuitsOnKey(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	h := newHarness(t)

	done := make(chan error, 1)
	go func() { done <- h.host.Run(context.Background()) }()

	require.Eventually(t, func() bool { return h.host.driver.Frames() > 0 }, 2*time.Second, 5*time.Millisecond)
	h.screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after quit key")
	}
}

func TestRunEndsOnContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	h := newHarness(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.host.Run(ctx) }()

	require.Eventually(t, func() bool { return h.host.driver.Frames() > 0 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func screenRow(s tcell.SimulationScreen, y int) string {
	cells, w, _ := s.GetContents()
	var b strings.Builder
	for x := 0; x < w; x++ {
		c := cells[y*w+x]
		if len(c.Runes) == 0 {
			b.WriteByte(' ')
			continue
		}
		b.WriteString(string(c.Runes))
	}
	return b.String()
}
