// Package studio is a terminal client for the photoshoot flow. It drives an
// in-process view-state controller and mirrors its views one to one.
package studio

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"jewelshot/internal/domain"
	"jewelshot/internal/i18n"
	"jewelshot/internal/photoshoot"
	"jewelshot/internal/storage"
	"jewelshot/internal/viewstate"
)

// stateChangedMsg wakes the model after the controller applied an event.
type stateChangedMsg struct{}

type authDoneMsg struct {
	err     error
	confirm bool
	reset   bool
}

type addDoneMsg struct {
	res photoshoot.AddResult
	err error
}

type submitDoneMsg struct{ err error }

type dispatchDoneMsg struct{ err error }

type savedMsg struct {
	paths []string
	err   error
}

type authField int

const (
	fieldEmail authField = iota
	fieldPassword
)

type configureField int

const (
	fieldPath configureField = iota
	fieldDirective
)

// Model is the bubbletea model of the studio.
type Model struct {
	ctrl   *viewstate.Controller
	store  *storage.FileStore
	prefs  Prefs
	save   func(Prefs) error
	logger zerolog.Logger
	locale string

	changes chan struct{}
	dispose func()

	state viewstate.State

	email     textinput.Model
	password  textinput.Model
	authFocus authField

	path      textinput.Model
	directive textinput.Model
	cfgFocus  configureField
	placement int
	style     int

	spinner spinner.Model
	cursor  int

	status string
	err    error
	busy   bool

	width  int
	height int
}

// Options wires a Model.
type Options struct {
	Controller *viewstate.Controller
	Store      *storage.FileStore
	Prefs      Prefs
	// SavePrefs persists preference changes. Nil disables saving.
	SavePrefs func(Prefs) error
	Logger    zerolog.Logger
	// Locale is "en" or "id"; messages default to English.
	Locale string
}

// New builds the model and subscribes to controller changes.
func New(opts Options) *Model {
	prefs := opts.Prefs.normalized()

	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.SetValue(prefs.Email)
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	path := textinput.New()
	path.Placeholder = "path/to/photo.jpg (comma separated or glob)"
	path.CharLimit = 1024

	directive := textinput.New()
	directive.Placeholder = "creative directive (optional)"
	directive.CharLimit = 2000

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle

	m := &Model{
		ctrl:      opts.Controller,
		store:     opts.Store,
		prefs:     prefs,
		save:      opts.SavePrefs,
		logger:    opts.Logger,
		locale:    i18n.Locale(opts.Locale),
		changes:   make(chan struct{}, 1),
		email:     email,
		password:  password,
		path:      path,
		directive: directive,
		spinner:   sp,
		placement: indexOf(domain.Placements, domain.Placement(prefs.Placement)),
		style:     indexOf(domain.Styles, domain.BackgroundStyle(prefs.Style)),
	}
	if m.ctrl != nil {
		m.state = m.ctrl.State()
		m.dispose = m.ctrl.OnChange(func(viewstate.State) {
			select {
			case m.changes <- struct{}{}:
			default:
			}
		})
	}
	if prefs.Email != "" {
		m.email.Blur()
		m.password.Focus()
		m.authFocus = fieldPassword
	}
	return m
}

func indexOf[T comparable](list []T, v T) int {
	for i, item := range list {
		if item == v {
			return i
		}
	}
	return 0
}

// Close unsubscribes from the controller.
func (m *Model) Close() {
	if m.dispose != nil {
		m.dispose()
		m.dispose = nil
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.waitForChange())
}

func (m *Model) waitForChange() tea.Cmd {
	ch := m.changes
	return func() tea.Msg {
		<-ch
		return stateChangedMsg{}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case stateChangedMsg:
		m.syncState()
		return m, m.waitForChange()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case authDoneMsg:
		m.busy = false
		m.err = msg.err
		switch {
		case msg.err != nil:
			m.status = ""
		case msg.confirm:
			m.status = "Check your email to confirm your account."
		case msg.reset:
			m.status = "Password reset email sent."
		default:
			m.status = ""
			m.password.SetValue("")
			m.rememberEmail()
		}
		m.syncState()
		return m, nil

	case addDoneMsg:
		m.busy = false
		m.err = msg.err
		if msg.err == nil {
			m.path.SetValue("")
			m.status = fmt.Sprintf("%d added", len(msg.res.Accepted))
			if n := len(msg.res.Rejected); n > 0 {
				names := make([]string, 0, n)
				for _, r := range msg.res.Rejected {
					names = append(names, r.Name)
				}
				m.status += fmt.Sprintf(", %d skipped (%s)", n, strings.Join(names, ", "))
			}
		}
		return m, nil

	case submitDoneMsg:
		m.busy = false
		m.err = msg.err
		m.syncState()
		if m.state.Notice != nil {
			m.err = nil
		}
		return m, nil

	case dispatchDoneMsg:
		m.err = msg.err
		m.syncState()
		return m, nil

	case savedMsg:
		m.busy = false
		m.err = msg.err
		if msg.err == nil && len(msg.paths) > 0 {
			m.status = fmt.Sprintf("Saved %d images to %s", len(msg.paths), filepath.Dir(msg.paths[0]))
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) syncState() {
	if m.ctrl == nil {
		return
	}
	prev := m.state.View
	m.state = m.ctrl.State()
	if m.state.View != prev {
		m.onEnter(m.state.View)
	}
}

func (m *Model) onEnter(v viewstate.View) {
	switch v {
	case viewstate.ViewAuth:
		m.password.SetValue("")
		m.focusAuth(fieldEmail)
		if m.email.Value() != "" {
			m.focusAuth(fieldPassword)
		}
	case viewstate.ViewConfigure:
		m.focusConfigure(fieldPath)
	case viewstate.ViewDashboard:
		m.cursor = 0
	}
}

func (m *Model) focusAuth(f authField) {
	m.authFocus = f
	if f == fieldEmail {
		m.email.Focus()
		m.password.Blur()
		return
	}
	m.email.Blur()
	m.password.Focus()
}

func (m *Model) focusConfigure(f configureField) {
	m.cfgFocus = f
	if f == fieldPath {
		m.path.Focus()
		m.directive.Blur()
		return
	}
	m.path.Blur()
	m.directive.Focus()
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.state.Notice != nil && msg.Type == tea.KeyEsc {
		return m, m.dispatch(viewstate.NoticeDismissed{})
	}
	if m.busy {
		return m, nil
	}

	switch m.state.View {
	case viewstate.ViewAuth:
		return m.authKey(msg)
	case viewstate.ViewDashboard:
		return m.dashboardKey(msg)
	case viewstate.ViewConfigure:
		return m.configureKey(msg)
	case viewstate.ViewProcessing:
		if msg.Type == tea.KeyCtrlL {
			return m, m.signOut()
		}
	case viewstate.ViewResults:
		return m.resultsKey(msg)
	}
	return m, nil
}

func (m *Model) authKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		if m.authFocus == fieldEmail {
			m.focusAuth(fieldPassword)
		} else {
			m.focusAuth(fieldEmail)
		}
		return m, nil
	case tea.KeyEnter:
		return m, m.signIn()
	case tea.KeyCtrlN:
		return m, m.signUp()
	case tea.KeyCtrlR:
		return m, m.resetPassword()
	case tea.KeyEsc:
		return m, tea.Quit
	}
	var cmd tea.Cmd
	if m.authFocus == fieldEmail {
		m.email, cmd = m.email.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m *Model) dashboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	projects := m.ctrl.Ledger().List()
	switch msg.String() {
	case "n", "enter":
		m.status = ""
		return m, m.dispatch(viewstate.CreateNewRequested{})
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(projects)-1 {
			m.cursor++
		}
	case "l":
		return m, m.signOut()
	case "q", "esc":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) configureKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyTab, tea.KeyShiftTab:
		if m.cfgFocus == fieldPath {
			m.focusConfigure(fieldDirective)
		} else {
			m.focusConfigure(fieldPath)
		}
		return m, nil
	case tea.KeyEnter:
		if m.cfgFocus == fieldPath && strings.TrimSpace(m.path.Value()) != "" {
			return m, m.addReferences()
		}
		return m, nil
	case tea.KeyCtrlP:
		m.placement = (m.placement + 1) % len(domain.Placements)
		m.directive.Placeholder = m.selectedPlacement().DefaultDirective()
		m.prefs.Placement = string(m.selectedPlacement())
		m.persistPrefs()
		return m, nil
	case tea.KeyCtrlB:
		m.style = (m.style + 1) % len(domain.Styles)
		m.prefs.Style = string(m.selectedStyle())
		m.persistPrefs()
		return m, nil
	case tea.KeyCtrlD:
		if n := m.ctrl.Draft().Len(); n > 0 {
			m.err = m.ctrl.Draft().Remove(n - 1)
		}
		return m, nil
	case tea.KeyCtrlG:
		return m, m.submit()
	case tea.KeyEsc:
		return m, m.dispatch(viewstate.BackRequested{})
	case tea.KeyCtrlL:
		return m, m.signOut()
	}
	var cmd tea.Cmd
	if m.cfgFocus == fieldPath {
		m.path, cmd = m.path.Update(msg)
	} else {
		m.directive, cmd = m.directive.Update(msg)
	}
	return m, cmd
}

func (m *Model) resultsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "s":
		return m, m.saveResults()
	case "n":
		m.status = ""
		return m, m.dispatch(viewstate.NewPhotoshootRequested{})
	case "h", "esc":
		m.status = ""
		return m, m.dispatch(viewstate.HomeRequested{})
	case "l":
		return m, m.signOut()
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) selectedPlacement() domain.Placement {
	return domain.Placements[m.placement]
}

func (m *Model) selectedStyle() domain.BackgroundStyle {
	return domain.Styles[m.style]
}

func (m *Model) rememberEmail() {
	email := strings.TrimSpace(m.email.Value())
	if email == "" || email == m.prefs.Email {
		return
	}
	m.prefs.Email = email
	m.persistPrefs()
}

func (m *Model) persistPrefs() {
	if m.save == nil {
		return
	}
	if err := m.save(m.prefs); err != nil {
		m.logger.Warn().Err(err).Msg("studio: save prefs failed")
	}
}

func (m *Model) dispatch(ev viewstate.Event) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, err := ctrl.Dispatch(ctx, ev)
		return dispatchDoneMsg{err: err}
	}
}

func (m *Model) signIn() tea.Cmd {
	m.busy, m.err, m.status = true, nil, "Signing in..."
	ctrl, email, password := m.ctrl, m.email.Value(), m.password.Value()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_, err := ctrl.SignIn(ctx, email, password)
		return authDoneMsg{err: err}
	}
}

func (m *Model) signUp() tea.Cmd {
	m.busy, m.err, m.status = true, nil, "Creating account..."
	ctrl, email, password := m.ctrl, m.email.Value(), m.password.Value()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		res, err := ctrl.SignUp(ctx, email, password)
		return authDoneMsg{err: err, confirm: err == nil && res.ConfirmationRequired}
	}
}

func (m *Model) resetPassword() tea.Cmd {
	m.busy, m.err, m.status = true, nil, "Sending reset email..."
	ctrl, email := m.ctrl, m.email.Value()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		err := ctrl.ResetPassword(ctx, email)
		return authDoneMsg{err: err, reset: err == nil}
	}
}

func (m *Model) signOut() tea.Cmd {
	m.status = ""
	ctrl := m.ctrl
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, err := ctrl.SignOut(ctx)
		return dispatchDoneMsg{err: err}
	}
}

func (m *Model) addReferences() tea.Cmd {
	m.busy, m.err, m.status = true, nil, "Reading photos..."
	uploads, err := expandPaths(m.path.Value())
	if err != nil {
		return func() tea.Msg { return addDoneMsg{err: err} }
	}
	draft := m.ctrl.Draft()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		res, err := draft.Add(ctx, uploads)
		return addDoneMsg{res: res, err: err}
	}
}

func (m *Model) submit() tea.Cmd {
	m.busy, m.err, m.status = true, nil, ""
	ctrl := m.ctrl
	placement, style, directive := string(m.selectedPlacement()), string(m.selectedStyle()), m.directive.Value()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, err := ctrl.Submit(ctx, placement, style, directive)
		return submitDoneMsg{err: err}
	}
}

func (m *Model) saveResults() tea.Cmd {
	if m.store == nil {
		m.err = fmt.Errorf("output directory: %w", domain.ErrNotFound)
		return nil
	}
	m.busy, m.err, m.status = true, nil, "Saving..."
	store, images := m.store, m.state.Results
	folder := string(m.selectedPlacement())
	if req := m.state.LastRequest; req != nil {
		folder = fmt.Sprintf("%s-%s", req.Placement(), req.CreatedAt().Format("20060102-150405"))
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		paths, err := store.SaveImages(ctx, folder, images)
		return savedMsg{paths: paths, err: err}
	}
}

// expandPaths splits a comma separated list and expands globs.
func expandPaths(raw string) ([]photoshoot.Upload, error) {
	var uploads []photoshoot.Upload
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		matches, err := filepath.Glob(part)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", part, err)
		}
		if len(matches) == 0 {
			matches = []string{part}
		}
		for _, path := range matches {
			uploads = append(uploads, photoshoot.FileUpload(path))
		}
	}
	return uploads, nil
}
