// Package delegation maps raw pointer interactions on any element to controller
// play/stop calls through a single identity attribute carried in the markup
package delegation

import (
	"go.uber.org/zap"

	"github.com/lixenwraith/folio-motion/dom"
	"github.com/lixenwraith/folio-motion/engine"
	"github.com/lixenwraith/folio-motion/event"
)

// DefaultAttribute is the marker attribute carrying an animation id
const DefaultAttribute = "data-animation-id"

// Player is the controller surface the delegator drives
type Player interface {
	Play(id string, target dom.Element, ctx map[string]any) engine.Result
	Stop(id string) bool
}

// Resolver validates ids before dispatch, satisfied by *registry.Catalog
type Resolver interface {
	Has(id string) bool
}

// Kind is the interaction type
type Kind uint8

const (
	Click Kind = iota
	PointerEnter
	PointerLeave
)

var kindNames = [...]string{Click: "click", PointerEnter: "pointer-enter", PointerLeave: "pointer-leave"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Interaction is one raw input event aimed at an element
type Interaction struct {
	Kind   Kind
	Target dom.Element
}

// Delegator resolves the nearest marked ancestor of an interaction target and
// plays or stops the animation it names
//
// Unmarked targets pass through silently. Rapid enter/leave sequences are not
// reordered: whichever call lands last on the controller wins
type Delegator struct {
	player   Player
	attr     string
	resolver Resolver
	logger   *zap.Logger
}

// Option configures a Delegator
type Option func(*Delegator)

// WithAttribute overrides the marker attribute name
func WithAttribute(attr string) Option {
	return func(d *Delegator) {
		if attr != "" {
			d.attr = attr
		}
	}
}

// WithResolver rejects ids the resolver does not know before they reach the player
func WithResolver(r Resolver) Option {
	return func(d *Delegator) { d.resolver = r }
}

// WithLogger sets the diagnostic logger
func WithLogger(l *zap.Logger) Option {
	return func(d *Delegator) {
		if l != nil {
			d.logger = l
		}
	}
}

// New creates a delegator driving player
func New(player Player, opts ...Option) *Delegator {
	d := &Delegator{
		player: player,
		attr:   DefaultAttribute,
		logger: zap.NewNop(),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Attribute returns the marker attribute name
func (d *Delegator) Attribute() string { return d.attr }

// HandleClick plays the animation named by the nearest marked ancestor of target
func (d *Delegator) HandleClick(target dom.Element) bool {
	return d.Dispatch(Interaction{Kind: Click, Target: target})
}

// HandlePointerEnter plays the animation named by the nearest marked ancestor of target
func (d *Delegator) HandlePointerEnter(target dom.Element) bool {
	return d.Dispatch(Interaction{Kind: PointerEnter, Target: target})
}

// HandlePointerLeave stops the animation named by the nearest marked ancestor of target
func (d *Delegator) HandlePointerLeave(target dom.Element) bool {
	return d.Dispatch(Interaction{Kind: PointerLeave, Target: target})
}

// Dispatch routes one interaction, returns false when nothing was called
func (d *Delegator) Dispatch(in Interaction) bool {
	el, id, ok := d.resolve(in.Target)
	if !ok {
		return false
	}

	switch in.Kind {
	case Click, PointerEnter:
		d.player.Play(id, el, map[string]any{"trigger": in.Kind.String()})
	case PointerLeave:
		d.player.Stop(id)
	default:
		return false
	}
	return true
}

func (d *Delegator) resolve(target dom.Element) (dom.Element, string, bool) {
	el := dom.Closest(target, d.attr)
	if el == nil {
		return nil, "", false
	}
	id, _ := el.Attr(d.attr)
	if id == "" {
		return nil, "", false
	}
	if d.resolver != nil && !d.resolver.Has(id) {
		d.logger.Debug("unknown animation id on element", zap.String("id", id))
		return nil, "", false
	}
	return el, id, true
}

// Pump buffers interactions from input goroutines and dispatches them on the frame loop
type Pump struct {
	d     *Delegator
	queue *event.Queue[Interaction]
}

// NewPump creates a pump with a queue of the given capacity
func NewPump(d *Delegator, size int) *Pump {
	return &Pump{d: d, queue: event.NewQueue[Interaction](size)}
}

// Push enqueues an interaction, safe from any goroutine
func (p *Pump) Push(in Interaction) {
	p.queue.Push(in)
}

// Pending returns the approximate queued count
func (p *Pump) Pending() int {
	return p.queue.Len()
}

// Update dispatches every queued interaction in arrival order
func (p *Pump) Update() {
	for _, in := range p.queue.Consume() {
		p.d.Dispatch(in)
	}
}
