// Package host is the terminal page shell: it renders the current route's
// elements, turns mouse, key and focus input into interactions, and drives the
// animation core once per frame
package host

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/folio-motion/audio"
	"github.com/lixenwraith/folio-motion/delegation"
	"github.com/lixenwraith/folio-motion/dom"
	"github.com/lixenwraith/folio-motion/engine"
	"github.com/lixenwraith/folio-motion/event"
	"github.com/lixenwraith/folio-motion/prefs"
	"github.com/lixenwraith/folio-motion/registry"
	"github.com/lixenwraith/folio-motion/scene"
	"github.com/lixenwraith/folio-motion/scheduler"
	"github.com/lixenwraith/folio-motion/status"
)

var errQuit = errors.New("quit requested")

const (
	starCount   = 60
	loadStagger = 40 * time.Millisecond
)

// Options wires the host to the animation core; Screen, Catalog, Controller and Scheduler are required
type Options struct {
	Screen     tcell.Screen
	Catalog    *registry.Catalog
	Controller *engine.Controller
	Scheduler  *scheduler.Scheduler
	Scenes     *scene.Manager
	Audio      *audio.Player
	Hidden     *prefs.Flag

	Attribute     string
	ValidateIDs   bool
	LoadPriority  string // Defaults to low
	FrameInterval time.Duration
	Clock         engine.TimeSource
	Seed          uint64

	Logger *zap.Logger
	Status *status.Registry
}

// Host owns the screen and the frame loop
// Input is read on its own goroutine and queued; everything else runs on the frame goroutine
type Host struct {
	screen tcell.Screen
	cat    *registry.Catalog
	ctrl   *engine.Controller
	sched  *scheduler.Scheduler
	scenes *scene.Manager
	audio  *audio.Player
	hidden *prefs.Flag
	logger *zap.Logger
	status *status.Registry
	attr   string
	seed   uint64
	loadPr scheduler.Priority

	delegator *delegation.Delegator
	pump      *delegation.Pump
	input     *event.Queue[tcell.Event]
	driver    *engine.FrameDriver
	motion    *throttle
	unsubs    []func()

	// Frame goroutine state
	page      *Page
	navIDs    []string
	starfield *Starfield
	hover     *dom.Node
	pressed   bool
	lastErr   string
}

// New creates a host showing the home page
func New(opts Options) (*Host, error) {
	if opts.Screen == nil || opts.Catalog == nil || opts.Controller == nil || opts.Scheduler == nil {
		return nil, fmt.Errorf("host requires screen, catalog, controller and scheduler")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Scenes == nil {
		opts.Scenes = scene.NewManager(opts.Logger, opts.Status)
	}
	if opts.Hidden == nil {
		opts.Hidden = prefs.NewFlag(false)
	}
	if opts.Attribute == "" {
		opts.Attribute = delegation.DefaultAttribute
	}
	if opts.LoadPriority == "" {
		opts.LoadPriority = scheduler.PriorityLow.String()
	}
	loadPr, err := scheduler.ParsePriority(opts.LoadPriority)
	if err != nil {
		return nil, fmt.Errorf("load priority: %w", err)
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = 16 * time.Millisecond
	}
	if opts.Clock == nil {
		opts.Clock = engine.NewTimeProvider()
	}

	h := &Host{
		screen: opts.Screen,
		cat:    opts.Catalog,
		ctrl:   opts.Controller,
		sched:  opts.Scheduler,
		scenes: opts.Scenes,
		audio:  opts.Audio,
		hidden: opts.Hidden,
		logger: opts.Logger,
		status: status.OrNew(opts.Status),
		attr:   opts.Attribute,
		seed:   opts.Seed,
		loadPr: loadPr,
		input:  event.NewQueue[tcell.Event](event.DefaultQueueSize),
		motion: newThrottle(MotionThrottle, opts.Clock),
	}

	dopts := []delegation.Option{delegation.WithAttribute(opts.Attribute), delegation.WithLogger(opts.Logger)}
	if opts.ValidateIDs {
		dopts = append(dopts, delegation.WithResolver(opts.Catalog))
	}
	h.delegator = delegation.New(opts.Controller, dopts...)
	h.pump = delegation.NewPump(h.delegator, event.DefaultQueueSize)

	bound := h.ctrl.BindCatalog(h.cat.All(), h.effects())
	h.logger.Info("catalog bound", zap.Int("animations", bound))

	for _, d := range h.cat.ByComponent("nav") {
		if d.Page == registry.PageGlobal && d.Trigger == registry.TriggerHover {
			h.navIDs = append(h.navIDs, d.ID)
		}
	}

	h.driver = engine.NewFrameDriver(opts.FrameInterval, opts.Logger, h.status,
		engine.UpdaterFunc(h.processInput),
		engine.UpdaterFunc(h.flushMotion),
		h.pump,
		h.sched,
		engine.UpdaterFunc(h.updateScene),
		engine.UpdaterFunc(h.render),
	)

	h.navigate(registry.PageHome)
	h.subscribe()
	return h, nil
}

// Run drives input and frames until ctx is done or the user quits
// Run takes ownership of the screen and finalizes it before returning
func (h *Host) Run(ctx context.Context) error {
	h.screen.EnableMouse(tcell.MouseMotionEvents)
	h.screen.EnableFocus()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(h.pollInput)
	g.Go(func() error { return h.driver.Run(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		h.driver.Stop()
		// Unblocks PollEvent
		h.screen.Fini()
		return nil
	})

	err := g.Wait()
	h.close()
	if errors.Is(err, errQuit) {
		return nil
	}
	return err
}

func (h *Host) close() {
	for _, fn := range h.unsubs {
		fn()
	}
	h.unsubs = nil
}

func (h *Host) pollInput() error {
	for {
		ev := h.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if k, ok := ev.(*tcell.EventKey); ok && isQuit(k) {
			return errQuit
		}
		h.input.Push(ev)
	}
}

func isQuit(k *tcell.EventKey) bool {
	return k.Key() == tcell.KeyEscape || k.Key() == tcell.KeyCtrlC ||
		(k.Key() == tcell.KeyRune && k.Rune() == 'q')
}

// Frame runs one frame synchronously
func (h *Host) Frame() { h.driver.Tick() }

// Post queues an input event as if read from the screen
func (h *Host) Post(ev tcell.Event) { h.input.Push(ev) }

func (h *Host) processInput() {
	for _, ev := range h.input.Consume() {
		switch ev := ev.(type) {
		case *tcell.EventMouse:
			h.handleMouse(ev)
		case *tcell.EventKey:
			h.handleKey(ev)
		case *tcell.EventFocus:
			h.hidden.Set(!ev.Focused)
		case *tcell.EventResize:
			h.screen.Sync()
		}
	}
}

func (h *Host) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	buttons := ev.Buttons()
	_, height := h.screen.Size()

	switch {
	case buttons&tcell.WheelUp != 0:
		h.page.Scroll(-1, height)
	case buttons&tcell.WheelDown != 0:
		h.page.Scroll(1, height)
	}

	if p, ok := h.motion.offer(point{x, y}); ok {
		h.hoverAt(p)
	}

	down := buttons&tcell.Button1 != 0
	if down && !h.pressed {
		h.click(x, y)
	}
	h.pressed = down
}

func (h *Host) hitTest(x, y int) *dom.Node {
	width, height := h.screen.Size()
	return h.page.HitTest(x, y, width, height)
}

func (h *Host) click(x, y int) {
	node := h.hitTest(x, y)
	if node == nil {
		return
	}
	h.pump.Push(delegation.Interaction{Kind: delegation.Click, Target: node})
	if route, ok := Route(node); ok && route != h.page.Key {
		// Delegated play runs against the old page before the route changes
		h.pump.Update()
		h.navigate(route)
	}
}

func (h *Host) hoverAt(p point) {
	node := h.hitTest(p.x, p.y)
	if node == h.hover {
		return
	}
	if h.hover != nil {
		h.pump.Push(delegation.Interaction{Kind: delegation.PointerLeave, Target: h.hover})
	}
	if node != nil {
		h.pump.Push(delegation.Interaction{Kind: delegation.PointerEnter, Target: node})
	}
	h.hover = node
}

func (h *Host) flushMotion() {
	if p, ok := h.motion.flush(); ok {
		h.hoverAt(p)
	}
}

func (h *Host) handleKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyTab:
		h.navigate(h.neighbour(1))
		return
	case tcell.KeyBacktab:
		h.navigate(h.neighbour(-1))
		return
	case tcell.KeyRune:
	default:
		return
	}

	switch r := ev.Rune(); {
	case r == 'p':
		if err := h.sched.SetLowPowerMode(!h.sched.LowPowerMode()); err != nil {
			h.logger.Warn("toggle low-power mode", zap.Error(err))
		}
	case r == 'r':
		h.sched.ClearAll()
		h.ctrl.ResetAll()
	case r >= '1' && r <= '9':
		if i := int(r - '1'); i < len(registry.Pages) {
			h.navigate(registry.Pages[i])
		}
	}
}

func (h *Host) neighbour(step int) string {
	for i, p := range registry.Pages {
		if p == h.page.Key {
			n := len(registry.Pages)
			return registry.Pages[((i+step)%n+n)%n]
		}
	}
	return registry.PageHome
}

// navigate unmounts the current page and mounts key
// Unmount cancels the page's queued work, disposes its scene and stops its playing animations
func (h *Host) navigate(key string) {
	if h.page != nil {
		if key == h.page.Key {
			return
		}
		if h.hover != nil {
			// The hovered element goes away with the page
			h.pump.Push(delegation.Interaction{Kind: delegation.PointerLeave, Target: h.hover})
			h.pump.Update()
			h.hover = nil
		}
		old := h.page.Key
		cancelled := h.sched.CancelPage(old + ":")
		h.scenes.DisposePage(old)
		for _, id := range h.ctrl.Playing() {
			if d, ok := h.ctrl.Descriptor(id); ok && d.Page == old {
				h.ctrl.Stop(id)
			}
		}
		if h.audio != nil {
			h.audio.Play(audio.CueSweep)
		}
		h.logger.Debug("page unmounted", zap.String("page", old), zap.Int("cancelled", cancelled))
	}

	descs := h.cat.ByPage(key)
	h.page = BuildPage(key, descs, h.navIDs, h.attr)
	h.hover = nil

	h.starfield = NewStarfield(starCount, h.seed^pageSeed(key))
	h.scenes.RegisterRenderer(key, h.starfield)
	h.scenes.RegisterScene(key, h.starfield.Scene())

	n := 0
	for _, d := range descs {
		if d.Trigger != registry.TriggerLoad {
			continue
		}
		id, node := d.ID, h.page.Node(d.ID)
		h.sched.Schedule(scheduleKey(d), func() {
			h.ctrl.Play(id, node, map[string]any{"trigger": string(registry.TriggerLoad)})
		}, d.Delay+time.Duration(n)*loadStagger, h.loadPr)
		n++
	}
}

func pageSeed(key string) uint64 {
	f := fnv.New64a()
	f.Write([]byte(key))
	return f.Sum64()
}

func (h *Host) currentPage() string {
	if h.page == nil {
		return ""
	}
	return h.page.Key
}

// Page returns the mounted page
func (h *Host) Page() *Page { return h.page }

// Starfield returns the mounted page background
func (h *Host) Starfield() *Starfield { return h.starfield }

func (h *Host) updateScene() {
	if h.starfield != nil && !h.sched.Paused() {
		h.starfield.Update()
	}
}
