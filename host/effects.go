package host

import (
	"fmt"

	"github.com/lixenwraith/folio-motion/audio"
	"github.com/lixenwraith/folio-motion/dom"
	"github.com/lixenwraith/folio-motion/engine"
	"github.com/lixenwraith/folio-motion/event"
	"github.com/lixenwraith/folio-motion/registry"
	"github.com/lixenwraith/folio-motion/scheduler"
)

// Classes applied by effects and cleared on stop
const (
	classActive   = "active"
	classMoving   = "moving"
	classTimeline = "timeline"
	classDrawn    = "drawn"
)

var effectClasses = []string{classActive, classMoving, classTimeline, classDrawn}

// scheduleKey prefixes scheduler ids with the page so route changes cancel them
func scheduleKey(d registry.Descriptor) string {
	return d.Page + ":" + d.ID
}

func asNode(target dom.Element) (*dom.Node, error) {
	n, ok := target.(*dom.Node)
	if !ok || n == nil {
		return nil, fmt.Errorf("unsupported animation target %T", target)
	}
	return n, nil
}

// effects returns the effect bound to each rendering engine
func (h *Host) effects() map[registry.Engine]engine.Effect {
	return map[registry.Engine]engine.Effect{
		registry.EngineCSS:      h.cssEffect,
		registry.EngineMotion:   h.motionEffect,
		registry.EngineTimeline: h.timelineEffect,
		registry.EngineVector:   h.vectorEffect,
		registry.EngineScene:    h.sceneEffect,
	}
}

// CSS effects hold their class until the pointer leaves
func (h *Host) cssEffect(target dom.Element, d registry.Descriptor) error {
	n, err := asNode(target)
	if err != nil {
		return err
	}
	n.AddClass(classActive)
	return nil
}

func (h *Host) motionEffect(target dom.Element, d registry.Descriptor) error {
	n, err := asNode(target)
	if err != nil {
		return err
	}
	n.AddClass(classMoving)
	n.SetStyle("transition-duration", d.Duration.String())
	h.completeAfter(d, scheduler.PriorityNormal)
	return nil
}

func (h *Host) timelineEffect(target dom.Element, d registry.Descriptor) error {
	n, err := asNode(target)
	if err != nil {
		return err
	}
	n.AddClass(classTimeline)
	if d.Trigger == registry.TriggerClick && h.audio != nil {
		h.audio.Play(audio.CueChime)
	}
	h.completeAfter(d, scheduler.PriorityLow)
	return nil
}

func (h *Host) vectorEffect(target dom.Element, d registry.Descriptor) error {
	n, err := asNode(target)
	if err != nil {
		return err
	}
	n.AddClass(classDrawn)
	h.completeAfter(d, scheduler.PriorityIdle)
	return nil
}

// Scene effects drive the page background and need no element
func (h *Host) sceneEffect(_ dom.Element, d registry.Descriptor) error {
	if h.starfield == nil {
		return fmt.Errorf("no scene mounted for %s", h.currentPage())
	}
	h.starfield.Nudge()
	h.completeAfter(d, scheduler.PriorityHigh)
	return nil
}

// completeAfter asserts completion by stopping d once its duration elapses
func (h *Host) completeAfter(d registry.Descriptor, p scheduler.Priority) {
	id := d.ID
	h.sched.Schedule(scheduleKey(d), func() { h.ctrl.Stop(id) }, d.Delay+d.Duration, p)
}

// subscribe keeps element classes in step with the controller lifecycle
func (h *Host) subscribe() {
	h.unsubs = append(h.unsubs,
		h.ctrl.OnFunc(event.EventStop, func(ev event.Event) {
			if n := h.page.Node(ev.ID); n != nil {
				clearEffectClasses(n)
			}
		}),
		h.ctrl.OnFunc(event.EventResetAll, func(event.Event) {
			h.page.Nodes(func(_ string, n *dom.Node) { clearEffectClasses(n) })
		}),
		h.ctrl.OnFunc(event.EventError, func(ev event.Event) {
			h.lastErr = fmt.Sprintf("%s: %v", ev.ID, ev.Err)
		}),
	)
}

func clearEffectClasses(n *dom.Node) {
	for _, c := range effectClasses {
		n.RemoveClass(c)
	}
	n.SetStyle("transition-duration", "")
}
