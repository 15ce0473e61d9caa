// Package viewstate drives the screen a client is on. Transitions are computed
// by a pure reducer; a Controller owns the state and runs the side effects.
package viewstate

import (
	"jewelshot/internal/domain"
)

// View is one of the five screens.
type View int

const (
	ViewAuth View = iota
	ViewDashboard
	ViewConfigure
	ViewProcessing
	ViewResults
)

// Views lists every view in flow order.
var Views = []View{ViewAuth, ViewDashboard, ViewConfigure, ViewProcessing, ViewResults}

func (v View) String() string {
	switch v {
	case ViewAuth:
		return "auth"
	case ViewDashboard:
		return "dashboard"
	case ViewConfigure:
		return "configure"
	case ViewProcessing:
		return "processing"
	case ViewResults:
		return "results"
	default:
		return "unknown"
	}
}

// MarshalText renders the view name in JSON payloads.
func (v View) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// Notice is a message shown on the current view until dismissed.
type Notice struct {
	Kind    domain.ErrorKind
	Message string
	Err     error
}

// NoticeFor wraps err for display.
func NoticeFor(err error) *Notice {
	if err == nil {
		return nil
	}
	return &Notice{Kind: domain.KindOf(err), Message: err.Error(), Err: err}
}

// State is a snapshot of one client's screen.
type State struct {
	View        View
	Session     *domain.Session
	Results     []domain.ImagePayload
	LastRequest *domain.PhotoshootRequest
	Notice      *Notice
	// Epoch identifies the current synthesis. Results tagged with an older
	// epoch are discarded.
	Epoch uint64
	// Ready is set once the initial session lookup has finished.
	Ready bool
}

// SignedIn reports whether a session is attached.
func (s State) SignedIn() bool {
	return s.Session != nil
}

// Initial is the state of a fresh client.
func Initial() State {
	return State{View: ViewAuth}
}
