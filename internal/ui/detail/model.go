// Package detail implements the conversation detail view: the full
// member listing plus, when the active source can resolve bodies, the
// text of the newest message.
package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/nhle/inbox-reader/internal/keys"
	"github.com/nhle/inbox-reader/internal/model"
	"github.com/nhle/inbox-reader/internal/theme"
)

// BackMsg signals the parent to navigate back to the list view.
type BackMsg struct{}

// BodyLoadedMsg carries the fetched body of the newest member, or the
// fetch error.
type BodyLoadedMsg struct {
	Ref  string
	Body string
	Err  error
}

// Model is the conversation detail view component.
type Model struct {
	conv     *model.Conversation
	body     string
	bodyErr  error
	loading  bool
	tsFormat string

	viewport viewport.Model
	keys     *keys.KeyMap
	width    int
	height   int
}

// New creates a new detail view model.
func New(k *keys.KeyMap, tsFormat string, width, height int) Model {
	if tsFormat == "" {
		tsFormat = model.DefaultTimestampFormat
	}

	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		tsFormat: tsFormat,
		viewport: vp,
		keys:     k,
		width:    width,
		height:   height,
	}
}

// Init returns the initial command for the detail view.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case BodyLoadedMsg:
		m.loading = false
		m.body = msg.Body
		m.bodyErr = msg.Err
		m.viewport.SetContent(m.renderContent())
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Back) {
			return m, func() tea.Msg {
				return BackMsg{}
			}
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the detail view.
func (m Model) View() string {
	if m.conv == nil {
		emptyStyle := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.Active.Gray)
		return emptyStyle.Render("No conversation selected")
	}

	return m.viewport.View()
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	if m.conv == nil {
		return ""
	}

	conv := m.conv
	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.Active.White)
	sections = append(sections, titleStyle.Render(conv.Subject))

	metaStyle := lipgloss.NewStyle().Foreground(theme.Active.Gray)
	sections = append(sections, metaStyle.Render(
		fmt.Sprintf("%d message(s)", conv.Count()),
	))
	sections = append(sections, "")

	sepStyle := lipgloss.NewStyle().Foreground(theme.Active.Subtle)
	separator := sepStyle.Render(strings.Repeat("─", min(m.width-4, 80)))
	sections = append(sections, separator)
	sections = append(sections, "")

	senderStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.Active.Accent)
	timeStyle := lipgloss.NewStyle().Foreground(theme.Active.Gray)
	unreadStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.Active.Yellow)

	for _, msg := range conv.Messages {
		ts := model.PlaceholderTimestamp
		if !msg.Received.IsZero() {
			ts = msg.Received.Format(m.tsFormat)
		}
		header := fmt.Sprintf(
			"%s  %s",
			senderStyle.Render(msg.Sender),
			timeStyle.Render(ts),
		)
		if msg.Unread {
			header += unreadStyle.Render("  unread")
		}
		sections = append(sections, header)
		if msg.SenderEmail != "" {
			sections = append(sections, metaStyle.Render("  <"+msg.SenderEmail+">"))
		}
		sections = append(sections, "")
	}

	sections = append(sections, separator)
	sections = append(sections, "")

	switch {
	case m.loading:
		sections = append(sections, metaStyle.Render("Loading message body..."))
	case m.bodyErr != nil:
		sections = append(sections, theme.ErrorStyle.Render(
			"Could not load message body: "+m.bodyErr.Error(),
		))
	case m.body != "":
		bodyHeader := lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Active.White).
			MarginBottom(1)
		sections = append(sections, bodyHeader.Render("Latest message"))
		sections = append(sections, wrapText(m.body, min(m.width-4, 100)))
	default:
		sections = append(sections, metaStyle.Render("No message body available."))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetConversation switches the view to a new conversation, clearing any
// previously loaded body.
func (m *Model) SetConversation(conv model.Conversation) {
	c := conv
	m.conv = &c
	m.body = ""
	m.bodyErr = nil
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

// SetLoading marks the body fetch as in flight.
func (m *Model) SetLoading(loading bool) {
	m.loading = loading
	m.viewport.SetContent(m.renderContent())
}

// Conversation returns the conversation being displayed, or nil.
func (m Model) Conversation() *model.Conversation {
	return m.conv
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	if m.conv != nil {
		m.viewport.SetContent(m.renderContent())
	}
}

// wrapText re-wraps body text to the given width, preserving paragraph
// breaks.
func wrapText(text string, width int) string {
	if width < 20 {
		width = 20
	}

	var out []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}

		line := words[0]
		lineWidth := runewidth.StringWidth(line)
		for _, word := range words[1:] {
			w := runewidth.StringWidth(word)
			if lineWidth+1+w > width {
				out = append(out, line)
				line = word
				lineWidth = w
				continue
			}
			line += " " + word
			lineWidth += 1 + w
		}
		out = append(out, line)
	}

	return strings.Join(out, "\n")
}
