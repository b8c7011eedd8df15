// Package registry holds the static animation catalog
// Descriptors are generated once at startup and never mutated afterwards
package registry

import (
	"fmt"
	"time"
)

// Engine identifies the rendering technique an effect is implemented with
type Engine string

const (
	EngineCSS      Engine = "css-class"
	EngineMotion   Engine = "declarative-motion"
	EngineTimeline Engine = "timeline-based"
	EngineVector   Engine = "vector-illustration"
	EngineScene    Engine = "3d-scene"
)

// Engines lists every engine in declaration order
var Engines = []Engine{EngineCSS, EngineMotion, EngineTimeline, EngineVector, EngineScene}

// Valid reports whether e belongs to the closed engine set
func (e Engine) Valid() bool {
	switch e {
	case EngineCSS, EngineMotion, EngineTimeline, EngineVector, EngineScene:
		return true
	}
	return false
}

// Trigger identifies the interaction or lifecycle signal that starts an animation
type Trigger string

const (
	TriggerClick      Trigger = "click"
	TriggerHover      Trigger = "hover"
	TriggerScroll     Trigger = "scroll"
	TriggerLoad       Trigger = "load"
	TriggerFocus      Trigger = "focus"
	TriggerBlur       Trigger = "blur"
	TriggerChange     Trigger = "change"
	TriggerShow       Trigger = "show"
	TriggerHide       Trigger = "hide"
	TriggerEnter      Trigger = "enter"
	TriggerExit       Trigger = "exit"
	TriggerTransition Trigger = "transition"
)

// Triggers lists every trigger in declaration order
var Triggers = []Trigger{
	TriggerClick, TriggerHover, TriggerScroll, TriggerLoad, TriggerFocus, TriggerBlur,
	TriggerChange, TriggerShow, TriggerHide, TriggerEnter, TriggerExit, TriggerTransition,
}

// Valid reports whether t belongs to the closed trigger set
func (t Trigger) Valid() bool {
	for _, v := range Triggers {
		if v == t {
			return true
		}
	}
	return false
}

// Descriptor is one immutable animation unit
// ID convention for generated entries: {page}_{component}_{action}_{variant}_{seq}
type Descriptor struct {
	ID          string        `json:"id" yaml:"id"`
	Page        string        `json:"page" yaml:"page"`
	Component   string        `json:"component" yaml:"component"`
	Action      string        `json:"action" yaml:"action"`
	Engine      Engine        `json:"engine" yaml:"engine"`
	Trigger     Trigger       `json:"trigger" yaml:"trigger"`
	Duration    time.Duration `json:"duration,omitempty" yaml:"duration,omitempty"`
	Delay       time.Duration `json:"delay,omitempty" yaml:"delay,omitempty"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
}

// String returns a compact single-line form for listings
func (d Descriptor) String() string {
	return fmt.Sprintf("%s [%s/%s %s %s %s %v]", d.ID, d.Page, d.Component, d.Action, d.Engine, d.Trigger, d.Duration)
}
