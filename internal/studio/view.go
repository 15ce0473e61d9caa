package studio

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"jewelshot/internal/domain"
	"jewelshot/internal/i18n"
	"jewelshot/internal/viewstate"
)

var (
	accentColor = lipgloss.Color("#C9A227")
	mutedColor  = lipgloss.Color("#8A8A8A")
	errorColor  = lipgloss.Color("#E5484D")

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	accentStyle = lipgloss.NewStyle().Foreground(accentColor)
	mutedStyle  = lipgloss.NewStyle().Foreground(mutedColor)
	errorStyle  = lipgloss.NewStyle().Foreground(errorColor)
	boxStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(1, 2)
	noticeStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(errorColor).
			Padding(0, 1)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
)

func (m *Model) View() string {
	var body string
	switch m.state.View {
	case viewstate.ViewAuth:
		body = m.viewAuth()
	case viewstate.ViewDashboard:
		body = m.viewDashboard()
	case viewstate.ViewConfigure:
		body = m.viewConfigure()
	case viewstate.ViewProcessing:
		body = m.viewProcessing()
	case viewstate.ViewResults:
		body = m.viewResults()
	}

	sections := []string{titleStyle.Render("◆ JewelShot Studio"), body}
	if n := m.state.Notice; n != nil {
		msg := n.Message
		if n.Err != nil {
			msg = i18n.ErrorMessage(m.locale, n.Err)
		}
		sections = append(sections, noticeStyle.Render(msg+"\n"+mutedStyle.Render("esc to dismiss")))
	}
	if m.err != nil {
		sections = append(sections, errorStyle.Render(m.errorText(m.err)))
	}
	if m.status != "" {
		sections = append(sections, mutedStyle.Render(m.status))
	}

	out := lipgloss.JoinVertical(lipgloss.Left, sections...)
	if m.width > 0 {
		out = lipgloss.NewStyle().MaxWidth(m.width).Render(out)
	}
	return out + "\n"
}

// errorText localizes known errors and shows anything else verbatim, since
// the terminal user can act on file and path errors.
func (m *Model) errorText(err error) string {
	if i18n.KeyFor(err) == i18n.MsgInternal {
		return err.Error()
	}
	return i18n.ErrorMessage(m.locale, err)
}

func (m *Model) viewAuth() string {
	if !m.state.Ready {
		return boxStyle.Render("Checking session...")
	}
	var b strings.Builder
	b.WriteString("Sign in to start a photoshoot\n\n")
	b.WriteString("Email\n" + m.email.View() + "\n\n")
	b.WriteString("Password\n" + m.password.View() + "\n\n")
	b.WriteString(mutedStyle.Render("enter sign in · ctrl+n create account · ctrl+r reset password · esc quit"))
	return boxStyle.Render(b.String())
}

func (m *Model) viewDashboard() string {
	var b strings.Builder
	email := ""
	if m.state.Session != nil {
		email = m.state.Session.Email
	}
	fmt.Fprintf(&b, "Signed in as %s\n\n", accentStyle.Render(email))

	projects := m.ctrl.Ledger().List()
	if len(projects) == 0 {
		b.WriteString(mutedStyle.Render("No photoshoots yet.") + "\n")
	}
	for i, p := range projects {
		line := fmt.Sprintf("%-28s %2d renders  %s  %s", p.Name, p.RenderCount, p.Status, p.LastEdited)
		if i == m.cursor {
			line = selectedStyle.Render("› " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n" + mutedStyle.Render("n new photoshoot · ↑/↓ browse · l sign out · q quit"))
	return boxStyle.Render(b.String())
}

func (m *Model) viewConfigure() string {
	var b strings.Builder
	images := m.ctrl.Draft().Images()
	fmt.Fprintf(&b, "Reference photos (%d of %d-%d)\n", len(images), domain.MinImages, domain.MaxImages)
	for i, img := range images {
		fmt.Fprintf(&b, "  %d. %s  %dx%d  %s\n", i+1, img.Name, img.Width, img.Height, humanBytes(img.Size()))
	}
	b.WriteString(m.path.View() + "\n\n")

	b.WriteString("Jewelry  " + m.choices(len(domain.Placements), m.placement, func(i int) string {
		return domain.Placements[i].Label()
	}) + "\n")
	b.WriteString("Backdrop " + m.choices(len(domain.Styles), m.style, func(i int) string {
		return domain.Styles[i].Label()
	}) + "\n\n")

	b.WriteString("Directive\n" + m.directive.View() + "\n")
	if strings.TrimSpace(m.directive.Value()) == "" {
		b.WriteString(mutedStyle.Render("default: "+m.selectedPlacement().DefaultDirective()) + "\n")
	}
	b.WriteString("\n" + mutedStyle.Render("enter add · tab switch field · ctrl+p jewelry · ctrl+b backdrop · ctrl+d drop last · ctrl+g generate · esc back"))
	return boxStyle.Render(b.String())
}

func (m *Model) choices(n, selected int, label func(int) string) string {
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if i == selected {
			parts = append(parts, selectedStyle.Render("["+label(i)+"]"))
			continue
		}
		parts = append(parts, mutedStyle.Render(label(i)))
	}
	return strings.Join(parts, " ")
}

func (m *Model) viewProcessing() string {
	var b strings.Builder
	b.WriteString(m.spinner.View() + " Generating photoshoot")
	if req := m.state.LastRequest; req != nil {
		fmt.Fprintf(&b, " for %s on %s", req.Placement().Label(), strings.ToLower(req.Style().Label()))
	}
	b.WriteString("\n\n")
	for _, v := range domain.Variants {
		b.WriteString("  · " + v.Label + "\n")
	}
	b.WriteString("\n" + mutedStyle.Render("ctrl+l sign out · ctrl+c quit"))
	return boxStyle.Render(b.String())
}

func (m *Model) viewResults() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d images ready\n\n", len(m.state.Results))
	for _, img := range m.state.Results {
		fmt.Fprintf(&b, "  ✓ %-22s %s  %s\n", domain.VariantLabel(img.VariantID), img.MIMEType, humanBytes(len(img.Data)))
	}
	b.WriteString("\n" + mutedStyle.Render("s save to disk · n new photoshoot · h home · l sign out · q quit"))
	return boxStyle.Render(b.String())
}

func humanBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.0f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
