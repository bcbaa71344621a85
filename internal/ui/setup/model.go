// Package setup implements the account management view: listing
// configured mailbox accounts, adding or editing them through a form,
// testing connections, and deleting them.
package setup

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/nhle/inbox-reader/internal/credential"
	"github.com/nhle/inbox-reader/internal/keys"
	"github.com/nhle/inbox-reader/internal/model"
	"github.com/nhle/inbox-reader/internal/source/imap"
	"github.com/nhle/inbox-reader/internal/store"
	"github.com/nhle/inbox-reader/internal/theme"
)

// Mode represents the current state of the setup view.
type Mode int

const (
	ModeList           Mode = iota // List configured accounts
	ModeForm                       // Add / edit account form
	ModeValidating                 // Testing the connection
	ModeValidateResult             // Show validation result
	ModeConfirmDelete              // Confirm account deletion
)

// DoneMsg signals the setup view should close and return to the list.
type DoneMsg struct{}

// AccountSavedMsg signals an account was saved successfully.
type AccountSavedMsg struct {
	Account model.AccountConfig
}

// AccountDeletedMsg signals an account was deleted.
type AccountDeletedMsg struct {
	ID string
}

// validateResultMsg carries the result of a connection test.
type validateResultMsg struct {
	mailbox string
	count   int
	err     error
}

// accountsLoadedMsg is sent when accounts have been loaded from the store.
type accountsLoadedMsg struct {
	accounts []model.AccountConfig
	err      error
}

// accountSavedInternalMsg is sent after an account is persisted.
type accountSavedInternalMsg struct {
	account model.AccountConfig
	err     error
}

// accountDeletedInternalMsg is sent after an account is removed.
type accountDeletedInternalMsg struct {
	id  string
	err error
}

// Model is the Bubble Tea model for the account setup UI.
type Model struct {
	mode        Mode
	store       store.Store
	log         *slog.Logger
	accounts    []model.AccountConfig
	selectedIdx int
	editing     *model.AccountConfig

	form *huh.Form

	// Form field values (huh binds to these)
	formName     string
	formHost     string
	formPort     string
	formUsername string
	formPassword string
	formTLS      bool
	formWindow   string
	formLimit    string

	// Validation
	validMailbox string
	validCount   int
	validError   error
	spinner      spinner.Model

	// Delete confirmation
	confirmDelete *huh.Form
	deleteConfirm bool

	// Status message for transient feedback
	statusMsg string

	keys          *keys.KeyMap
	width, height int
}

// New creates a new setup view model.
func New(s store.Store, k *keys.KeyMap, log *slog.Logger, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		mode:    ModeList,
		store:   s,
		log:     log,
		keys:    k,
		spinner: sp,
		width:   width,
		height:  height,
	}
}

// Init loads accounts from the store on first render.
func (m Model) Init() tea.Cmd {
	return m.loadAccounts()
}

// Update handles messages and dispatches based on current mode.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case accountsLoadedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error loading accounts: %v", msg.err)
			return m, nil
		}
		m.accounts = msg.accounts
		return m, nil

	case accountSavedInternalMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error saving account: %v", msg.err)
			m.mode = ModeList
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("Account %q saved", msg.account.Name)
		m.mode = ModeList
		return m, tea.Batch(
			m.loadAccounts(),
			func() tea.Msg { return AccountSavedMsg{Account: msg.account} },
		)

	case accountDeletedInternalMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error deleting account: %v", msg.err)
			m.mode = ModeList
			return m, nil
		}
		m.statusMsg = "Account deleted"
		m.mode = ModeList
		if m.selectedIdx >= len(m.accounts)-1 && m.selectedIdx > 0 {
			m.selectedIdx--
		}
		return m, tea.Batch(
			m.loadAccounts(),
			func() tea.Msg { return AccountDeletedMsg{ID: msg.id} },
		)

	case validateResultMsg:
		m.validMailbox = msg.mailbox
		m.validCount = msg.count
		m.validError = msg.err
		m.mode = ModeValidateResult
		return m, nil

	case spinner.TickMsg:
		if m.mode == ModeValidating {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m.updateActiveForm(msg)
}

// handleKeyMsg processes key messages based on the current mode.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.mode {
	case ModeList:
		return m.handleListKeys(msg)
	case ModeForm:
		return m.updateForm(msg)
	case ModeValidateResult:
		return m.handleValidateResultKeys(msg)
	case ModeConfirmDelete:
		return m.updateConfirmDelete(msg)
	case ModeValidating:
		// Only allow escape during validation
		if msg.String() == "esc" {
			m.mode = ModeList
			return m, nil
		}
		return m, nil
	}
	return m, nil
}

// handleListKeys processes key events in the account list mode.
func (m Model) handleListKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return DoneMsg{} }

	case msg.String() == "a":
		m.editing = nil
		m.resetFormFields()
		m.mode = ModeForm
		m.form = m.buildAccountForm()
		return m, m.form.Init()

	case msg.String() == "e":
		if len(m.accounts) == 0 {
			return m, nil
		}
		acct := m.accounts[m.selectedIdx]
		m.editing = &acct
		m.fillFormFields(acct)
		m.mode = ModeForm
		m.form = m.buildAccountForm()
		return m, m.form.Init()

	case msg.String() == "d":
		if len(m.accounts) == 0 {
			return m, nil
		}
		m.deleteConfirm = false
		m.confirmDelete = m.buildDeleteConfirmForm()
		m.mode = ModeConfirmDelete
		return m, m.confirmDelete.Init()

	case msg.String() == "enter":
		if len(m.accounts) == 0 {
			return m, nil
		}
		acct := m.accounts[m.selectedIdx]
		m.mode = ModeValidating
		return m, tea.Batch(
			m.spinner.Tick,
			m.validateAccount(acct),
		)

	case key.Matches(msg, m.keys.Down):
		if len(m.accounts) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.accounts)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(m.accounts) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(m.accounts) - 1
			}
		}
		return m, nil
	}

	return m, nil
}

// handleValidateResultKeys processes keys on the validation result screen.
func (m Model) handleValidateResultKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.mode = ModeList
		m.validMailbox = ""
		m.validError = nil
		return m, nil
	case "r":
		if m.validError != nil && len(m.accounts) > 0 {
			acct := m.accounts[m.selectedIdx]
			m.mode = ModeValidating
			return m, tea.Batch(
				m.spinner.Tick,
				m.validateAccount(acct),
			)
		}
		return m, nil
	}
	return m, nil
}

// updateActiveForm dispatches non-key messages to the active form.
func (m Model) updateActiveForm(msg tea.Msg) (Model, tea.Cmd) {
	switch m.mode {
	case ModeForm:
		return m.updateForm(msg)
	case ModeConfirmDelete:
		return m.updateConfirmDelete(msg)
	}
	return m, nil
}

// --- Account Form ---

func (m *Model) buildAccountForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Description("A label for this mailbox").
				Placeholder("Work Mail").
				Value(&m.formName).
				Validate(validateRequired("Name")),
			huh.NewInput().
				Title("IMAP Host").
				Description("IMAP server hostname").
				Placeholder("imap.example.com").
				Value(&m.formHost).
				Validate(validateRequired("IMAP Host")),
			huh.NewInput().
				Title("IMAP Port").
				Description("IMAP server port (e.g., 993)").
				Placeholder("993").
				Value(&m.formPort).
				Validate(validatePort),
			huh.NewInput().
				Title("Username").
				Description("Mailbox login, usually the address").
				Placeholder("user@example.com").
				Value(&m.formUsername).
				Validate(validateRequired("Username")),
			huh.NewInput().
				Title("Password").
				Description("Account password or app password").
				EchoMode(huh.EchoModePassword).
				Value(&m.formPassword).
				Validate(validateRequired("Password")),
			huh.NewConfirm().
				Title("Use TLS").
				Description("Implicit TLS; answer No for STARTTLS").
				Affirmative("Yes").
				Negative("No").
				Value(&m.formTLS),
			huh.NewInput().
				Title("Fetch Window (days)").
				Description("How far back a refresh looks").
				Placeholder("7").
				Value(&m.formWindow).
				Validate(validateOptionalNumber),
			huh.NewInput().
				Title("Fetch Limit").
				Description("Maximum messages per refresh").
				Placeholder("200").
				Value(&m.formLimit).
				Validate(validateOptionalNumber),
		),
	).WithWidth(m.formWidth())
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m.saveAccount()
	}
	if m.form.State == huh.StateAborted {
		m.mode = ModeList
		return m, nil
	}

	return m, cmd
}

func (m Model) saveAccount() (Model, tea.Cmd) {
	acct := m.buildAccountConfig()
	m.mode = ModeValidating
	return m, tea.Batch(
		m.spinner.Tick,
		m.validateAndSave(acct),
	)
}

// --- Delete Confirmation ---

func (m *Model) buildDeleteConfirmForm() *huh.Form {
	accountName := ""
	if m.selectedIdx < len(m.accounts) {
		accountName = m.accounts[m.selectedIdx].Name
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete account %q?", accountName)).
				Description(
					"This removes the account configuration and its " +
						"stored credential. Mail on the server is untouched.",
				).
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(&m.deleteConfirm),
		),
	).WithWidth(m.formWidth())
}

func (m Model) updateConfirmDelete(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirmDelete == nil {
		return m, nil
	}

	mdl, cmd := m.confirmDelete.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmDelete = f
	}

	if m.confirmDelete.State == huh.StateCompleted {
		if m.deleteConfirm {
			acct := m.accounts[m.selectedIdx]
			return m, m.deleteAccount(acct)
		}
		m.mode = ModeList
		return m, nil
	}
	if m.confirmDelete.State == huh.StateAborted {
		m.mode = ModeList
		return m, nil
	}

	return m, cmd
}

// --- View ---

// View renders the setup UI based on the current mode.
func (m Model) View() string {
	switch m.mode {
	case ModeList:
		return m.viewList()
	case ModeForm:
		return m.viewForm(m.form)
	case ModeValidating:
		return m.viewValidating()
	case ModeValidateResult:
		return m.viewValidateResult()
	case ModeConfirmDelete:
		return m.viewForm(m.confirmDelete)
	default:
		return ""
	}
}

func (m Model) viewList() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.Active.White).
		MarginBottom(1)

	b.WriteString(titleStyle.Render("Mailbox Accounts"))
	b.WriteString("\n\n")

	if len(m.accounts) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(theme.Active.Gray).
			Italic(true)
		b.WriteString(emptyStyle.Render(
			"No accounts configured.\nPress 'a' to add a mailbox.",
		))
	} else {
		for i, acct := range m.accounts {
			b.WriteString(m.renderAccountItem(i, acct))
			b.WriteString("\n")
		}
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		statusStyle := lipgloss.NewStyle().
			Foreground(theme.Active.Yellow).
			Italic(true)
		b.WriteString(statusStyle.Render(m.statusMsg))
	}

	b.WriteString("\n\n")
	hintStyle := lipgloss.NewStyle().Foreground(theme.Active.Gray)
	b.WriteString(hintStyle.Render(
		"a add | e edit | d delete | enter test | esc back",
	))

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height).
		Render(b.String())
}

func (m Model) renderAccountItem(idx int, acct model.AccountConfig) string {
	enabledLabel := "enabled"
	enabledColor := theme.Active.Green
	if !acct.Enabled {
		enabledLabel = "disabled"
		enabledColor = theme.Active.Gray
	}

	name := acct.Name
	if name == "" {
		name = "(unnamed)"
	}

	statusLabel := lipgloss.NewStyle().
		Foreground(enabledColor).
		Render(enabledLabel)

	line := fmt.Sprintf("%s  %s@%s:%s  %s",
		name, acct.Username, acct.Host, acct.Port, statusLabel,
	)

	if idx == m.selectedIdx {
		return theme.SelectedCardStyle.Render(line)
	}
	return theme.CardStyle.Render(line)
}

func (m Model) viewForm(f *huh.Form) string {
	if f == nil {
		return ""
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height).
		Render(f.View())
}

func (m Model) viewValidating() string {
	style := lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height)

	content := fmt.Sprintf(
		"%s Testing connection...\n\nPress esc to cancel.",
		m.spinner.View(),
	)

	return style.Render(content)
}

func (m Model) viewValidateResult() string {
	style := lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height)

	var content string
	if m.validError != nil {
		content = theme.ErrorStyle.Render("Connection failed") + "\n\n" +
			m.validError.Error() + "\n\n" +
			lipgloss.NewStyle().Foreground(theme.Active.Gray).
				Render("r retry | enter/esc back")
	} else {
		okStyle := lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Active.Green)
		content = okStyle.Render("Connection successful") + "\n\n" +
			fmt.Sprintf("%s: %d message(s)", m.validMailbox, m.validCount) +
			"\n\n" +
			lipgloss.NewStyle().Foreground(theme.Active.Gray).
				Render("enter/esc back")
	}

	return style.Render(content)
}

// --- Helpers ---

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m *Model) resetFormFields() {
	m.formName = ""
	m.formHost = ""
	m.formPort = "993"
	m.formUsername = ""
	m.formPassword = ""
	m.formTLS = true
	m.formWindow = ""
	m.formLimit = ""
}

func (m *Model) fillFormFields(acct model.AccountConfig) {
	m.formName = acct.Name
	m.formHost = acct.Host
	m.formPort = acct.Port
	m.formUsername = acct.Username
	m.formPassword = "" // Never pre-fill credentials
	m.formTLS = acct.TLS
	m.formWindow = strconv.Itoa(acct.FetchWindowDays)
	m.formLimit = strconv.Itoa(acct.FetchLimit)
}

func (m Model) buildAccountConfig() model.AccountConfig {
	acct := model.AccountConfig{
		Name:            m.formName,
		Host:            m.formHost,
		Port:            m.formPort,
		Username:        m.formUsername,
		TLS:             m.formTLS,
		Enabled:         true,
		FetchWindowDays: parseOrDefault(m.formWindow, 7),
		FetchLimit:      parseOrDefault(m.formLimit, 200),
	}

	if m.editing != nil {
		acct.ID = m.editing.ID
	} else {
		acct.ID = uuid.New().String()
	}

	return acct
}

func parseOrDefault(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return def
	}
	return n
}

// loadAccounts returns a command that loads all accounts from the store.
func (m Model) loadAccounts() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		accounts, err := s.GetAccounts(context.Background())
		return accountsLoadedMsg{accounts: accounts, err: err}
	}
}

// deleteAccount returns a command that removes an account and its
// credential.
func (m Model) deleteAccount(acct model.AccountConfig) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		// Best-effort keyring cleanup
		_ = credential.Delete(acct.ID)

		err := s.DeleteAccount(context.Background(), acct.ID)
		return accountDeletedInternalMsg{id: acct.ID, err: err}
	}
}

// validateAccount tests the connection for an existing account using its
// stored credential.
func (m Model) validateAccount(acct model.AccountConfig) tea.Cmd {
	log := m.log
	return func() tea.Msg {
		password, err := credential.Get(acct.ID)
		if err != nil {
			return validateResultMsg{err: fmt.Errorf("credential not found: %w", err)}
		}

		adapter := imap.NewAdapter(acct, password, log)
		info, err := adapter.Connect(context.Background())
		if err != nil {
			return validateResultMsg{err: err}
		}
		return validateResultMsg{mailbox: info.Mailbox, count: info.MessageCount}
	}
}

// validateAndSave tests the connection, then commits. Nothing is written
// until the test passes, so a typo never replaces a working credential
// or account row. The password goes to the keyring; only its owner ID
// is persisted in the registry.
func (m Model) validateAndSave(acct model.AccountConfig) tea.Cmd {
	s := m.store
	log := m.log
	password := m.formPassword
	return func() tea.Msg {
		ctx := context.Background()

		adapter := imap.NewAdapter(acct, password, log)
		if _, err := adapter.Connect(ctx); err != nil {
			return validateResultMsg{err: err}
		}

		if err := credential.Set(acct.ID, password); err != nil {
			return validateResultMsg{
				err: fmt.Errorf("connection OK but credential save failed: %w", err),
			}
		}
		if saveErr := s.UpsertAccount(ctx, acct); saveErr != nil {
			return validateResultMsg{
				err: fmt.Errorf("connection OK but save failed: %w", saveErr),
			}
		}

		return accountSavedInternalMsg{account: acct, err: nil}
	}
}

// --- Validators ---

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validatePort(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("port is required")
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return fmt.Errorf("port must be a number")
		}
	}
	return nil
}

func validateOptionalNumber(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := strconv.Atoi(strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("must be a number")
	}
	return nil
}
