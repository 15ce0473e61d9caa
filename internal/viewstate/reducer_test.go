package viewstate

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jewelshot/internal/domain"
	"jewelshot/internal/session"
)

func testSession() *domain.Session {
	return &domain.Session{UserID: "u1", Email: "ana@example.com", AccessToken: "at"}
}

func testRequest() *domain.PhotoshootRequest {
	images := []domain.ReferenceImage{
		{Name: "a.png", MIMEType: "image/png", Data: []byte("a")},
		{Name: "b.png", MIMEType: "image/png", Data: []byte("b")},
	}
	return domain.NewPhotoshootRequest("req-1", domain.PlacementRing, domain.StyleWhite, "", images, time.Unix(0, 0))
}

func testImages(n int) []domain.ImagePayload {
	out := make([]domain.ImagePayload, n)
	for i := range out {
		out[i] = domain.ImagePayload{VariantID: domain.Variants[i].ID, MIMEType: "image/png", Data: []byte{byte(i)}}
	}
	return out
}

func stateOn(v View) State {
	s := State{View: v, Ready: true}
	if v != ViewAuth {
		s.Session = testSession()
	}
	if v == ViewProcessing || v == ViewResults {
		s.Epoch = 1
		s.LastRequest = testRequest()
	}
	if v == ViewResults {
		s.Results = testImages(3)
	}
	return s
}

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		name string
		from View
		ev   Event
		to   View
	}{
		{"login", ViewAuth, LoginSucceeded{Session: testSession()}, ViewDashboard},
		{"create new", ViewDashboard, CreateNewRequested{}, ViewConfigure},
		{"back", ViewConfigure, BackRequested{}, ViewDashboard},
		{"submit", ViewConfigure, Submitted{Request: testRequest()}, ViewProcessing},
		{"submit invalid", ViewConfigure, Submitted{Err: domain.ErrTooFewImages}, ViewConfigure},
		{"synthesis ok", ViewProcessing, SynthesisSucceeded{Epoch: 1, Images: testImages(3)}, ViewResults},
		{"synthesis failed", ViewProcessing, SynthesisFailed{Epoch: 1, Err: domain.ErrNoUsableResult}, ViewConfigure},
		{"new photoshoot", ViewResults, NewPhotoshootRequested{}, ViewConfigure},
		{"home", ViewResults, HomeRequested{}, ViewDashboard},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.True(t, Allowed(tc.from, tc.ev))
			next, _ := Reduce(stateOn(tc.from), tc.ev)
			assert.Equal(t, tc.to, next.View)
		})
	}
}

func TestDisallowedEventsLeaveStateUnchanged(t *testing.T) {
	navigation := []Event{CreateNewRequested{}, BackRequested{}, Submitted{Request: testRequest()}, NewPhotoshootRequested{}, HomeRequested{}}
	for _, v := range Views {
		for _, ev := range navigation {
			if Allowed(v, ev) {
				continue
			}
			s := stateOn(v)
			next, effects := Reduce(s, ev)
			assert.Equal(t, s, next, "%s on %s", EventName(ev), v)
			assert.Empty(t, effects)
		}
	}
	assert.False(t, Allowed(ViewAuth, CreateNewRequested{}))
	assert.False(t, Allowed(ViewProcessing, BackRequested{}))
	assert.False(t, Allowed(ViewDashboard, Submitted{}))
}

func TestSignedOutFromEveryView(t *testing.T) {
	for _, v := range Views {
		s := stateOn(v)
		next, effects := Reduce(s, SessionChanged{Kind: session.SignedOut})
		assert.Equal(t, ViewAuth, next.View, "from %s", v)
		assert.Nil(t, next.Session)
		assert.Nil(t, next.Results)
		assert.Nil(t, next.LastRequest)
		assert.Greater(t, next.Epoch, s.Epoch)
		assert.Contains(t, effects, Effect(ResetDraft{}))
	}
}

func TestLogoutRequestedSignsOutAtProvider(t *testing.T) {
	for _, v := range Views {
		s := stateOn(v)
		next, effects := Reduce(s, LogoutRequested{})
		assert.Equal(t, ViewAuth, next.View)
		require.NotEmpty(t, effects)
		assert.Equal(t, Effect(SignOut{Session: s.Session}), effects[0])
	}
}

func TestLateSignedInDoesNotMoveUser(t *testing.T) {
	for _, v := range []View{ViewDashboard, ViewConfigure, ViewProcessing, ViewResults} {
		s := stateOn(v)
		next, effects := Reduce(s, SessionChanged{Kind: session.SignedIn, Session: testSession()})
		assert.Equal(t, v, next.View)
		assert.Empty(t, effects)

		next, _ = Reduce(s, SessionRestored{Session: testSession()})
		assert.Equal(t, v, next.View)
	}
}

func TestRestoredSessionLeavesAuth(t *testing.T) {
	next, _ := Reduce(Initial(), SessionRestored{Session: testSession()})
	assert.Equal(t, ViewDashboard, next.View)
	assert.True(t, next.Ready)
	assert.True(t, next.SignedIn())

	next, _ = Reduce(Initial(), SessionRestored{})
	assert.Equal(t, ViewAuth, next.View)
	assert.True(t, next.Ready)
}

func TestInitialSessionWithoutUserIsNoop(t *testing.T) {
	s := stateOn(ViewConfigure)
	next, effects := Reduce(s, SessionChanged{Kind: session.InitialSession})
	assert.Equal(t, ViewConfigure, next.View)
	assert.Equal(t, s.Epoch, next.Epoch)
	assert.Empty(t, effects)
}

func TestSignedInWithoutSessionIsSignOut(t *testing.T) {
	next, _ := Reduce(stateOn(ViewDashboard), SessionChanged{Kind: session.SignedIn})
	assert.Equal(t, ViewAuth, next.View)
}

func TestSubmitBumpsEpochAndStartsSynthesis(t *testing.T) {
	s := stateOn(ViewConfigure)
	req := testRequest()
	next, effects := Reduce(s, Submitted{Request: req})
	assert.Equal(t, s.Epoch+1, next.Epoch)
	assert.Same(t, req, next.LastRequest)
	require.Len(t, effects, 1)
	assert.Equal(t, StartSynthesis{Epoch: next.Epoch, Request: req}, effects[0])
}

func TestSubmitErrorRaisesNotice(t *testing.T) {
	next, effects := Reduce(stateOn(ViewConfigure), Submitted{Err: domain.ErrTooFewImages})
	require.NotNil(t, next.Notice)
	assert.Equal(t, domain.KindValidation, next.Notice.Kind)
	assert.Empty(t, effects)

	next, _ = Reduce(next, NoticeDismissed{})
	assert.Nil(t, next.Notice)
}

func TestStaleSynthesisIsDiscarded(t *testing.T) {
	s := stateOn(ViewProcessing)
	s.Epoch = 5

	next, effects := Reduce(s, SynthesisSucceeded{Epoch: 4, Images: testImages(3)})
	assert.Equal(t, s, next)
	assert.Empty(t, effects)

	next, _ = Reduce(s, SynthesisFailed{Epoch: 4, Err: errors.New("late")})
	assert.Equal(t, s, next)
}

func TestSynthesisOutsideProcessingIsDiscarded(t *testing.T) {
	for _, v := range []View{ViewAuth, ViewDashboard, ViewConfigure, ViewResults} {
		s := stateOn(v)
		next, effects := Reduce(s, SynthesisSucceeded{Epoch: s.Epoch, Images: testImages(1)})
		assert.Equal(t, s, next, "on %s", v)
		assert.Empty(t, effects)
	}
}

func TestSynthesisSuccessRecordsProject(t *testing.T) {
	s := stateOn(ViewProcessing)
	images := testImages(3)
	next, effects := Reduce(s, SynthesisSucceeded{Epoch: s.Epoch, Images: images})
	assert.Equal(t, images, next.Results)
	require.Len(t, effects, 1)
	assert.Equal(t, RecordProject{Request: s.LastRequest, Images: images}, effects[0])
}

func TestEmptySynthesisSuccessIsTreatedAsFailure(t *testing.T) {
	s := stateOn(ViewProcessing)
	next, effects := Reduce(s, SynthesisSucceeded{Epoch: s.Epoch})
	assert.Equal(t, ViewConfigure, next.View)
	require.NotNil(t, next.Notice)
	assert.Equal(t, domain.KindNoUsableResult, next.Notice.Kind)
	assert.Empty(t, effects)
}

func TestSynthesisFailureNoticeKinds(t *testing.T) {
	cases := map[error]domain.ErrorKind{
		domain.ErrNetworkUnavailable: domain.KindNetwork,
		domain.ErrNoUsableResult:     domain.KindNoUsableResult,
		domain.ErrMissingCredential:  domain.KindConfiguration,
	}
	for err, kind := range cases {
		s := stateOn(ViewProcessing)
		next, _ := Reduce(s, SynthesisFailed{Epoch: s.Epoch, Err: err})
		require.NotNil(t, next.Notice)
		assert.Equal(t, kind, next.Notice.Kind)
		assert.Equal(t, s.LastRequest, next.LastRequest)
	}
}

func TestEnteringConfigureResetsDraft(t *testing.T) {
	_, effects := Reduce(stateOn(ViewDashboard), CreateNewRequested{})
	assert.Equal(t, []Effect{ResetDraft{}}, effects)
	_, effects = Reduce(stateOn(ViewResults), NewPhotoshootRequested{})
	assert.Equal(t, []Effect{ResetDraft{}}, effects)
}

func TestViewText(t *testing.T) {
	b, err := ViewProcessing.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "processing", string(b))
	assert.Equal(t, "unknown", View(42).String())
}
