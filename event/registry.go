package event

var typeToName = map[EventType]string{}

// RegisterType maps an EventType to its wire name
func RegisterType(name string, et EventType) {
	typeToName[et] = name
}

// GetEventName returns the wire name for an EventType, empty if unregistered
func GetEventName(et EventType) string {
	return typeToName[et]
}

func init() {
	RegisterType("animation:start", EventStart)
	RegisterType("animation:pause", EventPause)
	RegisterType("animation:resume", EventResume)
	RegisterType("animation:stop", EventStop)
	RegisterType("animation:error", EventError)
	RegisterType("animation:reset-all", EventResetAll)
}
