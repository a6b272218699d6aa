package app

// State represents which surface has the keyboard. Whether a reply is
// pending is tracked by the conversation, not here.
type State int

const (
	StateConnecting State = iota // Waiting for the first backend health check
	StateChat                    // Input has focus
	StateSidebar                 // Session sidebar has focus
	StateSchemes                 // Scheme browser overlay
	StatePalette                 // Quick-action palette overlay
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateChat:
		return "chat"
	case StateSidebar:
		return "sidebar"
	case StateSchemes:
		return "schemes"
	case StatePalette:
		return "palette"
	default:
		return "unknown"
	}
}
