package studio

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jewelshot/internal/domain"
	"jewelshot/internal/imagegen"
	"jewelshot/internal/session"
	"jewelshot/internal/storage"
	"jewelshot/internal/viewstate"
)

type stubProvider struct{}

func (stubProvider) SignInWithPassword(_ context.Context, email, _ string) (*domain.Session, error) {
	return &domain.Session{UserID: "u1", Email: email, AccessToken: "at"}, nil
}

func (stubProvider) SignUp(context.Context, string, string) (*domain.Session, error) { return nil, nil }

func (stubProvider) SignOut(context.Context, string) error { return nil }

func (stubProvider) ResetPasswordForEmail(context.Context, string) error { return nil }

func (stubProvider) User(_ context.Context, token string) (*domain.Session, error) {
	return &domain.Session{UserID: "u1", Email: "ana@example.com", AccessToken: token}, nil
}

type stubSynth struct{}

func (stubSynth) Ready() error { return nil }

func (stubSynth) Synthesize(_ context.Context, call imagegen.Call) (*domain.ImagePayload, error) {
	return &domain.ImagePayload{VariantID: call.VariantID, MIMEType: "image/png", Data: []byte(call.VariantID)}, nil
}

type fixture struct {
	model *Model
	ctrl  *viewstate.Controller
	store *storage.FileStore
	saved []Prefs
}

func newFixture(t *testing.T, prefs Prefs) *fixture {
	t.Helper()
	ctrl := viewstate.New(viewstate.Options{
		ClientID: "studio-test",
		Sessions: session.NewStore(stubProvider{}),
		Gateway:  imagegen.NewGateway(stubSynth{}),
	})
	ctrl.Start(context.Background())
	t.Cleanup(ctrl.Close)

	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)

	f := &fixture{ctrl: ctrl, store: store}
	f.model = New(Options{
		Controller: ctrl,
		Store:      store,
		Prefs:      prefs,
		SavePrefs: func(p Prefs) error {
			f.saved = append(f.saved, p)
			return nil
		},
		Logger: zerolog.Nop(),
	})
	t.Cleanup(f.model.Close)

	require.Eventually(t, func() bool { return ctrl.State().Ready }, time.Second, 5*time.Millisecond)
	f.model.Update(stateChangedMsg{})
	return f
}

// press feeds msg to the model and runs the command it returns once.
func (f *fixture) press(t *testing.T, msg tea.Msg) {
	t.Helper()
	_, cmd := f.model.Update(msg)
	if cmd == nil {
		return
	}
	if next := cmd(); next != nil {
		f.model.Update(next)
	}
}

func (f *fixture) typeText(t *testing.T, s string) {
	t.Helper()
	f.press(t, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func (f *fixture) key(t *testing.T, k tea.KeyType) {
	t.Helper()
	f.press(t, tea.KeyMsg{Type: k})
}

func (f *fixture) waitView(t *testing.T, v viewstate.View) {
	t.Helper()
	require.Eventually(t, func() bool { return f.ctrl.State().View == v }, 2*time.Second, 5*time.Millisecond)
	f.model.Update(stateChangedMsg{})
	require.Equal(t, v, f.model.state.View)
}

func writePNGs(t *testing.T, dir string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		img := image.NewRGBA(image.Rect(0, 0, 3, 3))
		img.Set(1, 1, color.RGBA{B: 200, A: 255})
		var buf bytes.Buffer
		require.NoError(t, png.Encode(&buf, img))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "angle"+string(rune('a'+i))+".png"), buf.Bytes(), 0o644))
	}
}

func TestStudioPhotoshootFlow(t *testing.T) {
	f := newFixture(t, Prefs{})
	assert.Contains(t, f.model.View(), "Sign in to start a photoshoot")

	f.typeText(t, "ana@example.com")
	f.key(t, tea.KeyTab)
	f.typeText(t, "secret123")
	f.key(t, tea.KeyEnter)
	f.waitView(t, viewstate.ViewDashboard)
	require.NotEmpty(t, f.saved)
	assert.Equal(t, "ana@example.com", f.saved[len(f.saved)-1].Email)
	assert.Contains(t, f.model.View(), "No photoshoots yet.")

	f.typeText(t, "n")
	f.waitView(t, viewstate.ViewConfigure)

	dir := t.TempDir()
	writePNGs(t, dir, 2)
	f.typeText(t, filepath.Join(dir, "*.png"))
	f.key(t, tea.KeyEnter)
	assert.Equal(t, 2, f.ctrl.Draft().Len())
	assert.Contains(t, f.model.status, "2 added")

	f.key(t, tea.KeyCtrlG)
	f.waitView(t, viewstate.ViewResults)
	assert.Contains(t, f.model.View(), "3 images ready")

	f.typeText(t, "s")
	require.NoError(t, f.model.err)
	assert.Contains(t, f.model.status, "Saved 3 images")
	entries, err := os.ReadDir(f.store.BasePath())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "ring-"))

	f.typeText(t, "h")
	f.waitView(t, viewstate.ViewDashboard)
	assert.Contains(t, f.model.View(), "Ring Photoshoot 1")
}

func TestStudioSubmitWithoutImagesShowsNotice(t *testing.T) {
	f := newFixture(t, Prefs{Email: "ana@example.com"})
	assert.Equal(t, fieldPassword, f.model.authFocus)
	f.typeText(t, "secret123")
	f.key(t, tea.KeyEnter)
	f.waitView(t, viewstate.ViewDashboard)
	f.typeText(t, "n")
	f.waitView(t, viewstate.ViewConfigure)

	f.key(t, tea.KeyCtrlG)
	require.NotNil(t, f.model.state.Notice)
	assert.NoError(t, f.model.err)
	assert.Contains(t, f.model.View(), "Please upload at least 2 reference photos")

	f.key(t, tea.KeyEsc)
	assert.Nil(t, f.model.state.Notice)
	assert.Equal(t, viewstate.ViewConfigure, f.model.state.View)

	f.key(t, tea.KeyEsc)
	f.waitView(t, viewstate.ViewDashboard)
}

func TestStudioCyclesPlacementAndStyle(t *testing.T) {
	f := newFixture(t, Prefs{Email: "ana@example.com"})
	f.typeText(t, "secret123")
	f.key(t, tea.KeyEnter)
	f.waitView(t, viewstate.ViewDashboard)
	f.typeText(t, "n")
	f.waitView(t, viewstate.ViewConfigure)

	f.key(t, tea.KeyCtrlP)
	f.key(t, tea.KeyCtrlB)
	assert.Equal(t, domain.Placements[1], f.model.selectedPlacement())
	assert.Equal(t, domain.Styles[1], f.model.selectedStyle())
	last := f.saved[len(f.saved)-1]
	assert.Equal(t, string(domain.Placements[1]), last.Placement)
	assert.Equal(t, string(domain.Styles[1]), last.Style)
}

func TestStudioSignOutFromDashboard(t *testing.T) {
	f := newFixture(t, Prefs{Email: "ana@example.com"})
	f.typeText(t, "secret123")
	f.key(t, tea.KeyEnter)
	f.waitView(t, viewstate.ViewDashboard)

	f.typeText(t, "l")
	f.waitView(t, viewstate.ViewAuth)
	assert.Empty(t, f.model.password.Value())
	assert.Equal(t, "ana@example.com", f.model.email.Value())
}

func TestExpandPaths(t *testing.T) {
	dir := t.TempDir()
	writePNGs(t, dir, 3)

	uploads, err := expandPaths(filepath.Join(dir, "*.png") + ", " + filepath.Join(dir, "missing.jpg"))
	require.NoError(t, err)
	require.Len(t, uploads, 4)
	assert.Equal(t, "anglea.png", uploads[0].Name)
	assert.Equal(t, "missing.jpg", uploads[3].Name)

	uploads, err = expandPaths(" , ")
	require.NoError(t, err)
	assert.Empty(t, uploads)
}
