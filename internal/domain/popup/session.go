// internal/domain/popup/session.go
package popup

type SessionState int

const (
	StateIdle SessionState = iota
	StateLoading
	StateDisplaying
	StateClosing
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateDisplaying:
		return "displaying"
	case StateClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// CloseReason says why a displayed session ended.
type CloseReason string

const (
	CloseReasonTimeout  CloseReason = "timeout"
	CloseReasonManual   CloseReason = "manual"
	CloseReasonExternal CloseReason = "external"
	CloseReasonTeardown CloseReason = "teardown"
)

// Snapshot is a copy of the session state at one instant.
type Snapshot struct {
	SessionID    string       `json:"sessionId"`
	State        SessionState `json:"-"`
	StateName    string       `json:"state"`
	Offers       []Offer      `json:"offers,omitempty"`
	CurrentIndex int          `json:"currentIndex"`
	TimeLeft     int          `json:"timeLeft"`
	Duration     int          `json:"duration"`
	Fallback     bool         `json:"fallback"`
}

// Closing is derived from the state rather than stored separately.
func (s Snapshot) Closing() bool {
	return s.State == StateClosing
}

// Current returns the offer at CurrentIndex.
func (s Snapshot) Current() (Offer, bool) {
	if len(s.Offers) == 0 {
		return Offer{}, false
	}
	return s.Offers[s.CurrentIndex], true
}

// View renders the current frame.
func (s Snapshot) View() (PopupView, bool) {
	o, ok := s.Current()
	if !ok {
		return PopupView{}, false
	}
	return BuildView(o, s.TimeLeft, s.Duration, s.CurrentIndex, len(s.Offers)), true
}
