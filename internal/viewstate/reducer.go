package viewstate

import (
	"fmt"

	"jewelshot/internal/domain"
	"jewelshot/internal/session"
)

var errEmptyOutcome = fmt.Errorf("%w (empty outcome)", domain.ErrNoUsableResult)

// Allowed reports whether ev is a legal input while on v. Session and
// synthesis events are always accepted; the reducer decides whether they
// change anything.
func Allowed(v View, ev Event) bool {
	switch ev.(type) {
	case CreateNewRequested:
		return v == ViewDashboard
	case BackRequested, Submitted:
		return v == ViewConfigure
	case NewPhotoshootRequested, HomeRequested:
		return v == ViewResults
	case SessionRestored, SessionChanged, LoginSucceeded, LogoutRequested,
		SynthesisSucceeded, SynthesisFailed, NoticeDismissed:
		return true
	default:
		return false
	}
}

// Reduce computes the next state and the effects to run. Events that are
// not Allowed leave the state unchanged and yield no effects.
func Reduce(s State, ev Event) (State, []Effect) {
	if !Allowed(s.View, ev) {
		return s, nil
	}

	switch e := ev.(type) {
	case SessionRestored:
		s.Ready = true
		if e.Session != nil {
			return signedIn(s, e.Session), nil
		}
		return s, nil

	case SessionChanged:
		switch {
		case e.Kind == session.SignedOut:
			return signedOut(s)
		case e.Session == nil && e.Kind == session.SignedIn:
			return signedOut(s)
		case e.Session == nil:
			s.Ready = true
			return s, nil
		default:
			s.Ready = true
			return signedIn(s, e.Session), nil
		}

	case LoginSucceeded:
		if e.Session == nil {
			return s, nil
		}
		return signedIn(s, e.Session), nil

	case LogoutRequested:
		next, effects := signedOut(s)
		return next, append([]Effect{SignOut{Session: s.Session}}, effects...)

	case CreateNewRequested:
		s.View = ViewConfigure
		s.Notice = nil
		return s, []Effect{ResetDraft{}}

	case BackRequested:
		s.View = ViewDashboard
		s.Notice = nil
		return s, nil

	case Submitted:
		if e.Err != nil {
			s.Notice = NoticeFor(e.Err)
			return s, nil
		}
		if e.Request == nil {
			return s, nil
		}
		s.Epoch++
		s.View = ViewProcessing
		s.LastRequest = e.Request
		s.Results = nil
		s.Notice = nil
		return s, []Effect{StartSynthesis{Epoch: s.Epoch, Request: e.Request}}

	case SynthesisSucceeded:
		if s.View != ViewProcessing || e.Epoch != s.Epoch {
			return s, nil
		}
		if len(e.Images) == 0 {
			s.View = ViewConfigure
			s.Notice = NoticeFor(errEmptyOutcome)
			return s, nil
		}
		s.View = ViewResults
		s.Results = e.Images
		return s, []Effect{RecordProject{Request: s.LastRequest, Images: e.Images}}

	case SynthesisFailed:
		if s.View != ViewProcessing || e.Epoch != s.Epoch {
			return s, nil
		}
		s.View = ViewConfigure
		s.Notice = NoticeFor(e.Err)
		return s, nil

	case NewPhotoshootRequested:
		s.View = ViewConfigure
		s.Notice = nil
		return s, []Effect{ResetDraft{}}

	case HomeRequested:
		s.View = ViewDashboard
		s.Notice = nil
		return s, nil

	case NoticeDismissed:
		s.Notice = nil
		return s, nil
	}
	return s, nil
}

// signedIn attaches the session. Only the Auth view moves, to Dashboard; a
// late notification never pulls the user off another screen.
func signedIn(s State, sess *domain.Session) State {
	s.Session = sess
	if s.View == ViewAuth {
		s.View = ViewDashboard
		s.Notice = nil
	}
	return s
}

// signedOut returns to Auth from any view and forgets everything tied to
// the previous user.
func signedOut(s State) (State, []Effect) {
	s.View = ViewAuth
	s.Session = nil
	s.Results = nil
	s.LastRequest = nil
	s.Notice = nil
	s.Ready = true
	s.Epoch++
	return s, []Effect{ResetDraft{}}
}
