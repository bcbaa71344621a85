package app

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/inbox-reader/internal/conversation"
	"github.com/nhle/inbox-reader/internal/model"
	"github.com/nhle/inbox-reader/internal/source"
	"github.com/nhle/inbox-reader/internal/ui/setup"
)

// fakeStore is an in-memory account registry.
type fakeStore struct {
	accounts []model.AccountConfig
}

func (f *fakeStore) UpsertAccount(_ context.Context, acct model.AccountConfig) error {
	f.accounts = append(f.accounts, acct)
	return nil
}

func (f *fakeStore) GetAccounts(_ context.Context) ([]model.AccountConfig, error) {
	return f.accounts, nil
}

func (f *fakeStore) GetAccountByID(_ context.Context, id string) (*model.AccountConfig, error) {
	for i := range f.accounts {
		if f.accounts[i].ID == id {
			return &f.accounts[i], nil
		}
	}
	return nil, nil
}

func (f *fakeStore) DeleteAccount(_ context.Context, id string) error {
	for i := range f.accounts {
		if f.accounts[i].ID == id {
			f.accounts = append(f.accounts[:i], f.accounts[i+1:]...)
			return nil
		}
	}
	return nil
}

// fakeSource is a scripted MailSource.
type fakeSource struct {
	msgs   []model.RawMessage
	report source.FetchReport
	err    error
}

func (f *fakeSource) Connect(_ context.Context) (source.SessionInfo, error) {
	if f.err != nil {
		return source.SessionInfo{}, f.err
	}
	return source.SessionInfo{Mailbox: "INBOX", MessageCount: len(f.msgs)}, nil
}

func (f *fakeSource) FetchInbox(_ context.Context) ([]model.RawMessage, source.FetchReport, error) {
	if f.err != nil {
		return nil, source.FetchReport{}, f.err
	}
	return f.msgs, f.report, nil
}

func newTestModel(t *testing.T) Model {
	t.Helper()

	cfg := &model.AppConfig{
		Display: model.DisplayConfig{
			Theme:           "ocean",
			PreviewCount:    3,
			TimestampFormat: model.DefaultTimestampFormat,
		},
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(&fakeStore{}, cfg, log)
}

func testSession() *session {
	return &session{
		src:     &fakeSource{},
		account: model.AccountConfig{ID: "acct-1", Name: "Work Mail"},
		info:    source.SessionInfo{Mailbox: "INBOX"},
	}
}

func TestStartRefresh_ConnectsWithoutSession(t *testing.T) {
	m := newTestModel(t)

	mdl, cmd := m.startRefresh()
	got := mdl.(Model)

	if got.conn != StateConnecting {
		t.Errorf("conn = %v, want StateConnecting", got.conn)
	}
	if cmd == nil {
		t.Error("expected a connect command")
	}
}

func TestStartRefresh_FetchesWithSession(t *testing.T) {
	m := newTestModel(t)
	m.conn = StateConnected
	m.session = testSession()

	mdl, cmd := m.startRefresh()
	got := mdl.(Model)

	if got.conn != StateRefreshing {
		t.Errorf("conn = %v, want StateRefreshing", got.conn)
	}
	if cmd == nil {
		t.Error("expected a fetch command")
	}
}

func TestStartRefresh_RejectedWhileConnecting(t *testing.T) {
	m := newTestModel(t)
	m.conn = StateConnecting

	mdl, cmd := m.startRefresh()
	got := mdl.(Model)

	if cmd != nil {
		t.Error("refresh while connecting must not start a second worker")
	}
	if got.conn != StateConnecting {
		t.Errorf("conn = %v, want StateConnecting unchanged", got.conn)
	}
	if got.statusMsg == "" {
		t.Error("expected an already-loading status message")
	}
}

func TestStartRefresh_RejectedWhileRefreshing(t *testing.T) {
	m := newTestModel(t)
	m.conn = StateRefreshing
	m.session = testSession()

	_, cmd := m.startRefresh()
	if cmd != nil {
		t.Error("refresh while refreshing must not start a second worker")
	}
}

func TestStartRefresh_AllowedAfterConnectionFailure(t *testing.T) {
	m := newTestModel(t)
	m.conn = StateConnectionFailed

	mdl, cmd := m.startRefresh()
	got := mdl.(Model)

	// A failed connect leaves no session, so the retry reconnects.
	if got.conn != StateConnecting {
		t.Errorf("conn = %v, want StateConnecting", got.conn)
	}
	if cmd == nil {
		t.Error("expected a connect command")
	}
}

func TestStartRefresh_AllowedAfterRefreshFailure(t *testing.T) {
	m := newTestModel(t)
	m.conn = StateRefreshFailed
	m.session = testSession()

	mdl, cmd := m.startRefresh()
	got := mdl.(Model)

	// A failed refresh keeps its session, so the retry fetches directly.
	if got.conn != StateRefreshing {
		t.Errorf("conn = %v, want StateRefreshing", got.conn)
	}
	if cmd == nil {
		t.Error("expected a fetch command")
	}
}

func TestUpdate_ConnectFailure(t *testing.T) {
	m := newTestModel(t)
	m.conn = StateConnecting

	connErr := &source.ConnectionError{Op: "dial", Message: "unreachable"}
	mdl, _ := m.Update(connectResultMsg{err: connErr})
	got := mdl.(Model)

	if got.conn != StateConnectionFailed {
		t.Errorf("conn = %v, want StateConnectionFailed", got.conn)
	}
	if got.session != nil {
		t.Error("failed connect must not leave a session")
	}
	if got.conn.hasSession() {
		t.Error("hasSession() must be false after connect failure")
	}
}

func TestUpdate_ConnectSuccessStartsFetch(t *testing.T) {
	m := newTestModel(t)
	m.conn = StateConnecting

	mdl, cmd := m.Update(connectResultMsg{session: testSession()})
	got := mdl.(Model)

	if got.conn != StateRefreshing {
		t.Errorf("conn = %v, want StateRefreshing", got.conn)
	}
	if got.session == nil {
		t.Fatal("expected a session")
	}
	if cmd == nil {
		t.Error("connect success must chain into a fetch")
	}
}

func TestUpdate_RefreshFailureKeepsSession(t *testing.T) {
	m := newTestModel(t)
	m.conn = StateRefreshing
	m.session = testSession()

	mdl, _ := m.Update(refreshResultMsg{err: &source.ConnectionError{
		Op: "fetch", Message: "timeout",
	}})
	got := mdl.(Model)

	if got.conn != StateRefreshFailed {
		t.Errorf("conn = %v, want StateRefreshFailed", got.conn)
	}
	if got.session == nil {
		t.Error("refresh failure must keep the session")
	}
	if !got.conn.hasSession() {
		t.Error("hasSession() must stay true after refresh failure")
	}
}

func TestUpdate_RefreshSuccess(t *testing.T) {
	m := newTestModel(t)
	m.conn = StateRefreshing
	m.session = testSession()

	msgs := []model.RawMessage{
		{ID: "m1", Subject: "A", ConversationKey: "C1",
			Received: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)},
		{ID: "m2", Subject: "Re: A", ConversationKey: "C1",
			Received: time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)},
		{ID: "m3", Subject: "B", Unread: true,
			Received: time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)},
	}
	convs := conversation.Group(msgs)

	mdl, _ := m.Update(refreshResultMsg{
		messages: msgs,
		convs:    convs,
		report:   source.FetchReport{Total: 4, Fetched: 3, Skipped: 1},
	})
	got := mdl.(Model)

	if got.conn != StateConnected {
		t.Errorf("conn = %v, want StateConnected", got.conn)
	}
	if len(got.convs) != 2 {
		t.Errorf("snapshot has %d conversations, want 2", len(got.convs))
	}
	wantSummary := "2 conversations, 1 unread (3 messages, 1 skipped)"
	if got.summary != wantSummary {
		t.Errorf("summary = %q, want %q", got.summary, wantSummary)
	}
	if got.connErr != nil {
		t.Errorf("connErr = %v, want nil", got.connErr)
	}
}

func TestUpdate_StaleRefreshResultDropped(t *testing.T) {
	m := newTestModel(t)
	m.conn = StateRefreshing
	m.session = testSession()

	// Saving an account mid-refresh discards the session.
	mdl, _ := m.Update(setup.AccountSavedMsg{
		Account: model.AccountConfig{ID: "acct-2"},
	})
	m = mdl.(Model)
	if m.session != nil || m.conn != StateDisconnected {
		t.Fatalf("conn = %v, want StateDisconnected with no session", m.conn)
	}

	// The worker from the old session completes afterwards.
	convs := conversation.Group([]model.RawMessage{
		{ID: "m1", ConversationKey: "C1"},
	})
	mdl, _ = m.Update(refreshResultMsg{
		convs:  convs,
		report: source.FetchReport{Total: 1, Fetched: 1},
	})
	m = mdl.(Model)

	if m.conn != StateDisconnected {
		t.Errorf("conn = %v, want StateDisconnected after a stale result", m.conn)
	}
	if m.conn.hasSession() {
		t.Error("a stale result must not resurrect hasSession()")
	}
	if len(m.convs) != 0 {
		t.Error("a stale result must not install its snapshot")
	}

	// The next refresh reconnects instead of fetching on a nil session.
	mdl, cmd := m.startRefresh()
	m = mdl.(Model)
	if m.conn != StateConnecting {
		t.Errorf("conn = %v, want StateConnecting", m.conn)
	}
	if cmd == nil {
		t.Error("expected a connect command")
	}
}

func TestUpdate_StaleRefreshErrorDropped(t *testing.T) {
	m := newTestModel(t)

	mdl, _ := m.Update(refreshResultMsg{err: &source.ConnectionError{
		Op: "fetch", Message: "gone",
	}})
	got := mdl.(Model)

	if got.conn != StateDisconnected {
		t.Errorf("conn = %v, want StateDisconnected", got.conn)
	}
	if got.conn.hasSession() {
		t.Error("a stale error must not change the session state")
	}
}

func TestCommandPaletteToggles(t *testing.T) {
	m := newTestModel(t)
	colon := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{':'}}

	mdl, _ := m.Update(colon)
	m = mdl.(Model)
	if m.currentView != ViewCommand {
		t.Fatalf("currentView = %v, want ViewCommand", m.currentView)
	}

	mdl, _ = m.Update(colon)
	m = mdl.(Model)
	if m.currentView != ViewList {
		t.Errorf("currentView = %v, want ViewList after : toggle", m.currentView)
	}

	mdl, _ = m.Update(colon)
	m = mdl.(Model)
	mdl, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = mdl.(Model)
	if m.currentView != ViewList {
		t.Errorf("currentView = %v, want ViewList after esc", m.currentView)
	}
}

func TestStatusLine_CountsUnrenderable(t *testing.T) {
	m := newTestModel(t)
	m.conn = StateRefreshing
	m.session = testSession()

	convs := conversation.Group([]model.RawMessage{
		{ID: "m1", Subject: "A",
			Received: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)},
	})
	convs = append(convs, model.Conversation{Key: "ghost"})

	mdl, _ := m.Update(refreshResultMsg{
		convs:  convs,
		report: source.FetchReport{Total: 1, Fetched: 1},
	})
	got := mdl.(Model)

	if line := got.statusLine(); !strings.Contains(line, "1 not shown") {
		t.Errorf("statusLine = %q, want it to count the dropped card", line)
	}
}

func TestFetchCmd_GroupsInWorker(t *testing.T) {
	sess := testSession()
	sess.src = &fakeSource{
		msgs: []model.RawMessage{
			{ID: "m1", ConversationKey: "C1"},
			{ID: "m2", ConversationKey: "C1"},
		},
		report: source.FetchReport{Total: 2, Fetched: 2},
	}

	msg := fetchCmd(sess)()
	result, ok := msg.(refreshResultMsg)
	if !ok {
		t.Fatalf("got %T, want refreshResultMsg", msg)
	}
	if result.err != nil {
		t.Fatalf("unexpected error: %v", result.err)
	}
	if len(result.convs) != 1 {
		t.Errorf("got %d conversations, want 1", len(result.convs))
	}
}

func TestFetchCmd_Error(t *testing.T) {
	sess := testSession()
	sess.src = &fakeSource{err: &source.ConnectionError{Op: "fetch", Message: "gone"}}

	msg := fetchCmd(sess)()
	result := msg.(refreshResultMsg)
	if result.err == nil {
		t.Fatal("expected an error result")
	}
	if !source.IsConnectionError(result.err) {
		t.Errorf("error %v is not a ConnectionError", result.err)
	}
}

func TestConnStatus(t *testing.T) {
	m := newTestModel(t)

	cases := []struct {
		conn    ConnState
		session *session
		want    string
	}{
		{StateDisconnected, nil, "disconnected"},
		{StateConnecting, nil, "connecting..."},
		{StateRefreshing, testSession(), "refreshing..."},
		{StateConnected, testSession(), "Work Mail"},
	}
	for _, tc := range cases {
		m.conn = tc.conn
		m.session = tc.session
		if got := m.connStatus(); got != tc.want {
			t.Errorf("connStatus(%v) = %q, want %q", tc.conn, got, tc.want)
		}
	}

	m.conn = StateConnectionFailed
	if got := m.connStatus(); !strings.Contains(got, "connection failed") {
		t.Errorf("connStatus = %q, want connection failed", got)
	}
	m.conn = StateRefreshFailed
	if got := m.connStatus(); !strings.Contains(got, "refresh failed") {
		t.Errorf("connStatus = %q, want refresh failed", got)
	}
}

func TestExecuteCommand_Unknown(t *testing.T) {
	m := newTestModel(t)

	mdl, cmd := m.executeCommand("frobnicate")
	got := mdl.(Model)

	if cmd != nil {
		t.Error("unknown command must not produce a command")
	}
	if !strings.Contains(got.statusMsg, "frobnicate") {
		t.Errorf("statusMsg = %q, want it to name the command", got.statusMsg)
	}
}
