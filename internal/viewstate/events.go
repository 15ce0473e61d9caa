package viewstate

import (
	"jewelshot/internal/domain"
	"jewelshot/internal/session"
)

// Event is an input to the reducer.
type Event interface {
	eventName() string
}

// SessionRestored carries the result of the startup session lookup.
type SessionRestored struct{ Session *domain.Session }

// SessionChanged mirrors a notification from the session store.
type SessionChanged struct {
	Kind    session.ChangeKind
	Session *domain.Session
}

// LoginSucceeded is raised after an explicit sign-in.
type LoginSucceeded struct{ Session *domain.Session }

type LogoutRequested struct{}

type CreateNewRequested struct{}

type BackRequested struct{}

// Submitted carries the built request, or the reason it could not be built.
type Submitted struct {
	Request *domain.PhotoshootRequest
	Err     error
}

type SynthesisSucceeded struct {
	Epoch  uint64
	Images []domain.ImagePayload
}

type SynthesisFailed struct {
	Epoch uint64
	Err   error
}

type NewPhotoshootRequested struct{}

type HomeRequested struct{}

type NoticeDismissed struct{}

func (SessionRestored) eventName() string        { return "session_restored" }
func (SessionChanged) eventName() string         { return "session_changed" }
func (LoginSucceeded) eventName() string         { return "login_succeeded" }
func (LogoutRequested) eventName() string        { return "logout_requested" }
func (CreateNewRequested) eventName() string     { return "create_new" }
func (BackRequested) eventName() string          { return "back" }
func (Submitted) eventName() string              { return "submitted" }
func (SynthesisSucceeded) eventName() string     { return "synthesis_succeeded" }
func (SynthesisFailed) eventName() string        { return "synthesis_failed" }
func (NewPhotoshootRequested) eventName() string { return "new_photoshoot" }
func (HomeRequested) eventName() string          { return "home" }
func (NoticeDismissed) eventName() string        { return "notice_dismissed" }

// EventName returns a stable identifier for logging.
func EventName(ev Event) string {
	if ev == nil {
		return ""
	}
	return ev.eventName()
}

// Effect is work the controller performs after a transition.
type Effect interface {
	effectName() string
}

// StartSynthesis launches the gateway for Request under Epoch.
type StartSynthesis struct {
	Epoch   uint64
	Request *domain.PhotoshootRequest
}

// RecordProject appends a ledger entry for a completed photoshoot.
type RecordProject struct {
	Request *domain.PhotoshootRequest
	Images  []domain.ImagePayload
}

// SignOut revokes Session, the session that was current when the user
// logged out, at the provider.
type SignOut struct {
	Session *domain.Session
}

// ResetDraft empties the reference image set.
type ResetDraft struct{}

func (StartSynthesis) effectName() string { return "start_synthesis" }
func (RecordProject) effectName() string  { return "record_project" }
func (SignOut) effectName() string        { return "sign_out" }
func (ResetDraft) effectName() string     { return "reset_draft" }
