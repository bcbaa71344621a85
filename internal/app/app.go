// Package app wires the views, the account registry, and the mail
// source into the root Bubble Tea model. The model owns the only
// mutable snapshot of conversations; views render projections of it.
package app

import (
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/inbox-reader/internal/keys"
	"github.com/nhle/inbox-reader/internal/logging"
	"github.com/nhle/inbox-reader/internal/model"
	"github.com/nhle/inbox-reader/internal/source"
	"github.com/nhle/inbox-reader/internal/store"
	"github.com/nhle/inbox-reader/internal/theme"
	"github.com/nhle/inbox-reader/internal/ui"
	"github.com/nhle/inbox-reader/internal/ui/command"
	"github.com/nhle/inbox-reader/internal/ui/convlist"
	"github.com/nhle/inbox-reader/internal/ui/detail"
	helpview "github.com/nhle/inbox-reader/internal/ui/help"
	"github.com/nhle/inbox-reader/internal/ui/setup"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewDetail
	ViewSetup
	ViewHelp
	ViewCommand
)

// ConnState tracks the mail session lifecycle. Exactly one refresh
// worker runs at a time; a refresh request during Connecting or
// Refreshing is rejected rather than queued.
type ConnState int

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
	StateRefreshing
	StateConnectionFailed
	StateRefreshFailed
)

// busy reports whether a worker is in flight.
func (s ConnState) busy() bool {
	return s == StateConnecting || s == StateRefreshing
}

// hasSession reports whether a usable session exists. A failed refresh
// keeps its session; a failed connect does not.
func (s ConnState) hasSession() bool {
	return s == StateConnected || s == StateRefreshing || s == StateRefreshFailed
}

// Model is the root Bubble Tea model that manages view routing, the
// connection state machine, and the conversation snapshot.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	store        store.Store
	cfg          *model.AppConfig
	keys         *keys.KeyMap
	log          *slog.Logger

	convList    convlist.Model
	detailView  detail.Model
	setupView   setup.Model
	helpView    helpview.Model
	commandView command.Model

	conn    ConnState
	connErr error
	session *session

	// Snapshot state, replaced wholesale on every successful refresh.
	messages []model.RawMessage
	convs    []model.Conversation
	report   source.FetchReport

	summary   string
	statusMsg string
	ready     bool
}

// New creates the root application model.
func New(s store.Store, cfg *model.AppConfig, log *slog.Logger) Model {
	k := keys.DefaultKeyMap()
	theme.Apply(cfg.Display.Theme)

	return Model{
		currentView: ViewList,
		store:       s,
		cfg:         cfg,
		keys:        k,
		log:         logging.For(log, "app"),

		convList: convlist.New(
			k, cfg.Display.PreviewCount, cfg.Display.TimestampFormat, 80, 24,
		),
		detailView:  detail.New(k, cfg.Display.TimestampFormat, 80, 24),
		setupView:   setup.New(s, k, log, 80, 24),
		helpView:    helpview.New(k, 80, 24),
		commandView: command.New(80, 24),
	}
}

// Init checks the account registry: with no accounts it opens setup,
// otherwise it connects and runs the first refresh.
func (m Model) Init() tea.Cmd {
	return m.checkAccounts()
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.convList.SetSize(contentWidth, contentHeight)
		m.detailView.SetSize(contentWidth, contentHeight)
		m.setupView.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		m.commandView.SetSize(contentWidth, contentHeight)
		// Forward to the active view so huh forms can lay themselves out.
		return m.updateActiveView(msg)

	case accountsCheckedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error reading accounts: %v", msg.err)
			return m, nil
		}
		// First run: no accounts yet, go straight to setup.
		if msg.count == 0 {
			m.previousView = m.currentView
			m.currentView = ViewSetup
			return m, m.setupView.Init()
		}
		return m.startRefresh()

	case connectResultMsg:
		// Same staleness rule as refresh results: only the connect the
		// state machine is waiting on may install a session.
		if m.conn != StateConnecting {
			m.log.Warn("dropping connect result from a discarded attempt")
			return m, nil
		}
		if msg.err != nil {
			m.conn = StateConnectionFailed
			m.connErr = msg.err
			m.session = nil
			m.log.Error("connect failed", "error", msg.err)
			return m, nil
		}
		m.conn = StateRefreshing
		m.connErr = nil
		m.session = msg.session
		m.log.Info("connected",
			"account", msg.session.account.Name,
			"mailbox", msg.session.info.Mailbox,
			"messages", msg.session.info.MessageCount,
		)
		return m, fetchCmd(m.session)

	case refreshResultMsg:
		// A worker can outlive its session: saving or deleting an account
		// mid-refresh discards the session, and the result that arrives
		// afterwards belongs to nobody. Drop it.
		if m.session == nil {
			m.log.Warn("dropping refresh result from a discarded session")
			return m, nil
		}
		if msg.err != nil {
			m.conn = StateRefreshFailed
			m.connErr = msg.err
			m.log.Error("refresh failed", "error", msg.err)
			return m, nil
		}
		m.conn = StateConnected
		m.connErr = nil
		m.messages = msg.messages
		m.convs = msg.convs
		m.report = msg.report
		unread := 0
		for _, c := range msg.convs {
			if c.HasUnread {
				unread++
			}
		}
		m.summary = fmt.Sprintf(
			"%d conversations, %d unread (%d messages, %d skipped)",
			len(msg.convs), unread, msg.report.Fetched, msg.report.Skipped,
		)
		m.statusMsg = ""
		m.log.Info("refresh complete",
			"conversations", len(msg.convs),
			"fetched", msg.report.Fetched,
			"skipped", msg.report.Skipped,
			"defaulted", msg.report.Defaulted,
		)
		return m, m.convList.SetConversations(m.convs)

	case convlist.SelectedConversationMsg:
		m.previousView = m.currentView
		m.currentView = ViewDetail
		m.detailView.SetConversation(msg.Conv)
		if cmd := m.fetchBody(msg.Conv); cmd != nil {
			m.detailView.SetLoading(true)
			return m, cmd
		}
		return m, nil

	case detail.BodyLoadedMsg:
		var cmd tea.Cmd
		m.detailView, cmd = m.detailView.Update(msg)
		return m, cmd

	case detail.BackMsg:
		m.currentView = ViewList
		return m, nil

	case command.CommandMsg:
		m.currentView = m.previousView
		return m.executeCommand(string(msg))

	case setup.DoneMsg:
		m.currentView = ViewList
		return m, nil

	case setup.AccountSavedMsg:
		// A saved account invalidates the active session; reconnect so
		// the next snapshot comes from the new configuration.
		m.session = nil
		m.conn = StateDisconnected
		return m, nil

	case setup.AccountDeletedMsg:
		if m.session != nil && m.session.account.ID == msg.ID {
			m.session = nil
			m.conn = StateDisconnected
			m.messages = nil
			m.convs = nil
			m.summary = ""
			return m, m.convList.SetConversations(nil)
		}
		return m, nil

	case tea.KeyMsg:
		if handled, mdl, cmd := m.handleGlobalKeys(msg); handled {
			return mdl, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKeys processes keys that work from the list view
// regardless of what the sub-views do. Returns handled=false when the
// key should flow to the active view instead.
func (m Model) handleGlobalKeys(msg tea.KeyMsg) (bool, tea.Model, tea.Cmd) {
	// Text inputs own the keyboard: only ctrl+c is global there.
	typing := m.currentView == ViewSetup ||
		m.currentView == ViewCommand ||
		(m.currentView == ViewList && m.convList.Searching())

	if msg.String() == "ctrl+c" {
		return true, m, tea.Quit
	}
	if typing {
		// The palette closes with the key that opened it, or esc.
		if m.currentView == ViewCommand {
			switch msg.String() {
			case ":", "esc":
				m.commandView.Reset()
				m.currentView = m.previousView
				return true, m, nil
			}
		}
		return false, m, nil
	}

	switch msg.String() {
	case "q":
		if m.currentView == ViewList {
			return true, m, tea.Quit
		}

	case "?":
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return true, m, nil
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return true, m, nil

	case ":":
		if m.currentView == ViewCommand {
			m.currentView = m.previousView
			return true, m, nil
		}
		m.previousView = m.currentView
		m.currentView = ViewCommand
		return true, m, m.commandView.Focus()

	case "c":
		if m.currentView == ViewList {
			m.previousView = m.currentView
			m.currentView = ViewSetup
			return true, m, m.setupView.Init()
		}

	case "r":
		if m.currentView == ViewList {
			mdl, cmd := m.startRefresh()
			return true, mdl, cmd
		}

	case "t":
		if m.currentView == ViewList {
			mdl, cmd := m.switchTheme(theme.Next())
			return true, mdl, cmd
		}
	}

	return false, m, nil
}

// startRefresh kicks off the refresh pipeline: connect first when no
// session exists, otherwise fetch directly. A request while a worker is
// already in flight is rejected, never queued.
func (m Model) startRefresh() (tea.Model, tea.Cmd) {
	if m.conn.busy() {
		m.statusMsg = "Already loading, please wait..."
		return m, nil
	}

	m.statusMsg = ""
	if m.session == nil || !m.conn.hasSession() {
		m.conn = StateConnecting
		return m, connectCmd(m.store, m.log)
	}

	m.conn = StateRefreshing
	return m, fetchCmd(m.session)
}

// fetchBody returns a command loading the newest member's body when the
// active source supports it, or nil.
func (m Model) fetchBody(conv model.Conversation) tea.Cmd {
	if m.session == nil || len(conv.Messages) == 0 {
		return nil
	}
	reader, ok := m.session.src.(source.BodyReader)
	if !ok {
		return nil
	}
	newest := conv.Messages[len(conv.Messages)-1]
	if newest.ItemRef == "" {
		return nil
	}
	return fetchBodyCmd(reader, newest.ItemRef)
}

// switchTheme applies the named palette and persists the choice.
func (m Model) switchTheme(name string) (tea.Model, tea.Cmd) {
	applied := theme.Apply(name)
	m.cfg.Display.Theme = applied
	m.statusMsg = "Theme: " + applied

	if err := model.SaveConfig(model.DefaultConfigPath(), m.cfg); err != nil {
		m.log.Warn("could not persist theme", "error", err)
	}
	return m, nil
}

// executeCommand handles a command string from the command palette.
func (m Model) executeCommand(cmd string) (tea.Model, tea.Cmd) {
	switch cmd {
	case "refresh", "sync":
		return m.startRefresh()
	case "quit", "q":
		return m, tea.Quit
	case "accounts", "config", "configure":
		m.previousView = m.currentView
		m.currentView = ViewSetup
		return m, m.setupView.Init()
	case "help":
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil
	case "theme":
		return m.switchTheme(theme.Next())
	default:
		for _, name := range theme.Names() {
			if cmd == "theme "+name {
				return m.switchTheme(name)
			}
		}
		m.statusMsg = fmt.Sprintf("Unknown command: %s", cmd)
		return m, nil
	}
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.convList, cmd = m.convList.Update(msg)
	case ViewDetail:
		m.detailView, cmd = m.detailView.Update(msg)
	case ViewSetup:
		m.setupView, cmd = m.setupView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("Inbox Reader", m.connStatus())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.statusLine())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewList:
		return m.convList.View()
	case ViewDetail:
		return m.detailView.View()
	case ViewSetup:
		return m.setupView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	default:
		return ""
	}
}

// connStatus returns a short string describing the session state for
// the header's right side.
func (m Model) connStatus() string {
	switch m.conn {
	case StateConnecting:
		return "connecting..."
	case StateRefreshing:
		return "refreshing..."
	case StateConnected:
		if m.session != nil {
			return m.session.account.Name
		}
		return "connected"
	case StateConnectionFailed:
		return "⚠ connection failed"
	case StateRefreshFailed:
		return "⚠ refresh failed"
	default:
		return "disconnected"
	}
}

// statusLine returns the status bar content: a transient message, an
// error, or the per-view summary and hints.
func (m Model) statusLine() string {
	if m.statusMsg != "" {
		return m.statusMsg
	}
	if m.connErr != nil && m.currentView == ViewList {
		return "Error: " + m.connErr.Error()
	}

	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return ": close | enter execute"
	case ViewDetail:
		return "esc back | j/k scroll"
	case ViewSetup:
		return "a add | e edit | d delete | enter test | esc back"
	default:
		line := m.summary
		if m.convList.UnreadOnly() {
			line += " | unread only"
		}
		if q := m.convList.Query(); q != "" {
			line += fmt.Sprintf(" | %d match(es)", m.convList.VisibleCount())
		}
		if sc := m.convList.SkippedCount(); sc > 0 {
			line += fmt.Sprintf(" | %d not shown", sc)
		}
		if line != "" {
			return line + " | ? help"
		}
		return "q quit | ? help | r refresh | / search | c accounts"
	}
}
