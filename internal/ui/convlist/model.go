// Package convlist implements the conversation list view: a scrollable
// stack of conversation cards with reactive search and an unread-only
// toggle. The view owns no mail data; it renders whatever snapshot the
// application hands it.
package convlist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/inbox-reader/internal/conversation"
	"github.com/nhle/inbox-reader/internal/keys"
	"github.com/nhle/inbox-reader/internal/model"
	"github.com/nhle/inbox-reader/internal/theme"
)

// SelectedConversationMsg is sent when the user opens a conversation.
type SelectedConversationMsg struct {
	Conv model.Conversation
}

// Model is the conversation list view component.
type Model struct {
	list        list.Model
	keys        *keys.KeyMap
	snapshot    []model.Conversation
	query       string
	unreadOnly  bool
	searchMode  bool
	searchInput textinput.Model

	previewCount int
	tsFormat     string
	skipped      int

	width  int
	height int
}

// New creates a conversation list sized for the given content area.
func New(k *keys.KeyMap, previewCount int, tsFormat string, width, height int) Model {
	if previewCount < 1 {
		previewCount = 3
	}
	if tsFormat == "" {
		tsFormat = model.DefaultTimestampFormat
	}

	l := list.New([]list.Item{}, NewDelegate(previewCount), width, height-2)
	l.Title = "Inbox"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "subject or sender..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:         l,
		keys:         k,
		searchInput:  si,
		previewCount: previewCount,
		tsFormat:     tsFormat,
		width:        width,
		height:       height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// SetConversations replaces the snapshot the view renders. The current
// search query and unread toggle are re-applied to the new snapshot.
func (m *Model) SetConversations(convs []model.Conversation) tea.Cmd {
	m.snapshot = convs
	return m.applyFilter()
}

// applyFilter rebuilds the visible items from the snapshot, the query,
// and the unread toggle. Selection resets to the top on every rebuild.
func (m *Model) applyFilter() tea.Cmd {
	visible := conversation.Filter(m.snapshot, m.query)
	if m.unreadOnly {
		visible = conversation.FilterUnread(visible)
	}

	items := make([]list.Item, 0, len(visible))
	skipped := 0
	for _, c := range visible {
		if c.Count() == 0 {
			skipped++
			continue
		}
		items = append(items, Item{
			Conv:   c,
			Record: conversation.BuildRecord(c, m.previewCount, m.tsFormat),
		})
	}
	m.skipped = skipped

	cmd := m.list.SetItems(items)
	m.list.ResetSelected()
	return cmd
}

// Update handles messages for the conversation list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if m.searchMode {
			return m.handleSearchKeys(keyMsg)
		}
		return m.handleNormalKeys(keyMsg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKeys processes input while the search bar has focus. The
// visible set narrows on every keystroke; enter keeps the query and
// returns focus to the list, esc clears it.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.searchInput.Blur()
		return m, nil

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.searchInput.Blur()
		m.query = ""
		return m, m.applyFilter()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)

	if q := m.searchInput.Value(); q != m.query {
		m.query = q
		return m, tea.Batch(cmd, m.applyFilter())
	}
	return m, cmd
}

// handleNormalKeys processes key input when the list has focus.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		item, ok := m.list.SelectedItem().(Item)
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return SelectedConversationMsg{Conv: item.Conv}
		}

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.Unread):
		m.unreadOnly = !m.unreadOnly
		return m, m.applyFilter()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the conversation list.
func (m Model) View() string {
	if m.searchMode || m.query != "" {
		searchBar := lipgloss.NewStyle().
			Foreground(theme.Active.White).
			Padding(0, 1).
			Render(m.searchInput.View())
		body := m.list.View()
		if len(m.list.Items()) == 0 {
			body = m.renderEmptyState()
		}
		return lipgloss.JoinVertical(lipgloss.Left, searchBar, body)
	}

	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}

	return m.list.View()
}

// renderEmptyState shows guidance text when no conversations are visible.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.list.Height()).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.Active.Gray)

	switch {
	case m.query != "":
		return style.Render(fmt.Sprintf("No conversations match %q.", m.query))
	case m.unreadOnly:
		return style.Render("No unread conversations.")
	case len(m.snapshot) == 0:
		return style.Render(
			"No conversations.\n\n" +
				"Press r to refresh, or c to configure an account.",
		)
	default:
		return style.Render("No conversations.")
	}
}

// Query returns the active search query.
func (m Model) Query() string {
	return m.query
}

// UnreadOnly reports whether the unread-only toggle is on.
func (m Model) UnreadOnly() bool {
	return m.unreadOnly
}

// Searching reports whether the search bar has keyboard focus.
func (m Model) Searching() bool {
	return m.searchMode
}

// VisibleCount returns how many conversations the list currently shows.
func (m Model) VisibleCount() int {
	return len(m.list.Items())
}

// SkippedCount returns how many conversations the last rebuild dropped
// as unrenderable.
func (m Model) SkippedCount() int {
	return m.skipped
}

// SetDisplay updates the rendering preferences and rebuilds the cards.
func (m *Model) SetDisplay(previewCount int, tsFormat string) tea.Cmd {
	if previewCount >= 1 {
		m.previewCount = previewCount
	}
	if tsFormat != "" {
		m.tsFormat = tsFormat
	}
	m.list.SetDelegate(NewDelegate(m.previewCount))
	return m.applyFilter()
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.searchInput.Width = width - 4
}
