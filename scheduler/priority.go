package scheduler

import "fmt"

// Priority ranks a scheduled animation, lower values are more urgent
type Priority uint8

const (
	PriorityCritical Priority = iota
	PriorityHigh
	PriorityNormal
	PriorityLow
	PriorityIdle
)

var priorityNames = [...]string{
	PriorityCritical: "critical",
	PriorityHigh:     "high",
	PriorityNormal:   "normal",
	PriorityLow:      "low",
	PriorityIdle:     "idle",
}

// String returns the lowercase priority name
func (p Priority) String() string {
	if int(p) < len(priorityNames) {
		return priorityNames[p]
	}
	return fmt.Sprintf("priority(%d)", p)
}

// ParsePriority maps a priority name to its value
func ParsePriority(s string) (Priority, error) {
	for i, name := range priorityNames {
		if name == s {
			return Priority(i), nil
		}
	}
	return PriorityNormal, fmt.Errorf("unknown priority %q", s)
}

// bypassesReducedMotion reports whether p still queues while reduced motion is active
func (p Priority) bypassesReducedMotion() bool {
	return p == PriorityCritical
}

// bypassesLowPower reports whether p still queues while low-power mode is active
func (p Priority) bypassesLowPower() bool {
	return p == PriorityCritical || p == PriorityHigh
}
