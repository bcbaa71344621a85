package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/inbox-reader/internal/conversation"
	"github.com/nhle/inbox-reader/internal/model"
	"github.com/nhle/inbox-reader/internal/source"
	"github.com/nhle/inbox-reader/internal/ui/detail"
)

// accountsCheckedMsg reports how many accounts the registry holds.
type accountsCheckedMsg struct {
	count int
	err   error
}

// connectResultMsg carries the outcome of a connect worker.
type connectResultMsg struct {
	session *session
	err     error
}

// refreshResultMsg carries a complete snapshot from a refresh worker:
// the raw messages, the grouped conversations, and the fetch accounting.
type refreshResultMsg struct {
	messages []model.RawMessage
	convs    []model.Conversation
	report   source.FetchReport
	err      error
}

// checkAccounts returns a command that counts configured accounts.
func (m Model) checkAccounts() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		accounts, err := s.GetAccounts(context.Background())
		if err != nil {
			return accountsCheckedMsg{err: err}
		}
		return accountsCheckedMsg{count: len(accounts)}
	}
}

// fetchCmd runs one refresh in a worker: fetch the inbox, group the
// messages, and hand the finished snapshot back. Grouping happens in
// the worker so the UI thread only ever swaps a pointer.
func fetchCmd(sess *session) tea.Cmd {
	return func() tea.Msg {
		msgs, report, err := sess.src.FetchInbox(context.Background())
		if err != nil {
			return refreshResultMsg{err: err}
		}

		convs := conversation.Group(msgs)
		return refreshResultMsg{
			messages: msgs,
			convs:    convs,
			report:   report,
		}
	}
}

// fetchBodyCmd loads one message body for the detail view.
func fetchBodyCmd(reader source.BodyReader, itemRef string) tea.Cmd {
	return func() tea.Msg {
		body, err := reader.FetchBody(context.Background(), itemRef)
		return detail.BodyLoadedMsg{Ref: itemRef, Body: body, Err: err}
	}
}
