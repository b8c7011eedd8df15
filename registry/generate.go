package registry

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode"
)

// Duration bounds for generated descriptors
const (
	MinGeneratedDuration = 200 * time.Millisecond
	MaxGeneratedDuration = 800 * time.Millisecond
)

// Batch describes one combinatorial expansion of descriptors for a page component
type Batch struct {
	Page      string
	Component string
	Actions   []string
	Variants  []string
	Count     int
	Engine    Engine
	Triggers  []Trigger
}

// Generate expands a batch into Count descriptors
// Entry i gets action i%len(Actions), trigger i%len(Triggers) and variant (i/len(Actions))%len(Variants)
// Everything except Duration is deterministic; Duration is drawn from rng in [200ms, 800ms]
// A nil rng uses the global source. Empty action, variant or trigger sets produce nothing
func Generate(b Batch, rng *rand.Rand) []Descriptor {
	if b.Count <= 0 || len(b.Actions) == 0 || len(b.Variants) == 0 || len(b.Triggers) == 0 {
		return nil
	}

	intn := rand.Intn
	if rng != nil {
		intn = rng.Intn
	}
	spanMs := int((MaxGeneratedDuration - MinGeneratedDuration) / time.Millisecond)

	out := make([]Descriptor, 0, b.Count)
	for i := 0; i < b.Count; i++ {
		action := b.Actions[i%len(b.Actions)]
		variant := b.Variants[(i/len(b.Actions))%len(b.Variants)]
		trigger := b.Triggers[i%len(b.Triggers)]
		seq := fmt.Sprintf("%03d", i+1)

		out = append(out, Descriptor{
			ID:          normalizeID(strings.Join([]string{b.Page, b.Component, action, variant, seq}, "_")),
			Page:        b.Page,
			Component:   b.Component,
			Action:      action,
			Engine:      b.Engine,
			Trigger:     trigger,
			Duration:    MinGeneratedDuration + time.Duration(intn(spanMs+1))*time.Millisecond,
			Description: fmt.Sprintf("%s %s %s animation for %s (%d)", b.Page, b.Component, action, variant, i+1),
		})
	}
	return out
}

// normalizeID lowercases and collapses whitespace runs into a single underscore
func normalizeID(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	inSpace := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsSpace(r) {
			if !inSpace {
				sb.WriteByte('_')
			}
			inSpace = true
			continue
		}
		inSpace = false
		sb.WriteRune(r)
	}
	return sb.String()
}
