package app

import (
	"context"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/inbox-reader/internal/credential"
	"github.com/nhle/inbox-reader/internal/model"
	"github.com/nhle/inbox-reader/internal/source"
	"github.com/nhle/inbox-reader/internal/source/imap"
	"github.com/nhle/inbox-reader/internal/store"
)

// session is an established mail session: the adapter, the account it
// serves, and the connect-time mailbox info.
type session struct {
	src     source.MailSource
	account model.AccountConfig
	info    source.SessionInfo
}

// connectCmd builds a session for the first enabled account in the
// registry. The password is loaded from the system keyring; it never
// touches the store.
func connectCmd(s store.Store, log *slog.Logger) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		accounts, err := s.GetAccounts(ctx)
		if err != nil {
			return connectResultMsg{err: fmt.Errorf("loading accounts: %w", err)}
		}

		var account *model.AccountConfig
		for i := range accounts {
			if accounts[i].Enabled {
				account = &accounts[i]
				break
			}
		}
		if account == nil {
			return connectResultMsg{
				err: &source.ConnectionError{
					Op:      "connect",
					Message: "no enabled account configured",
				},
			}
		}

		password, err := credential.Get(account.ID)
		if err != nil {
			return connectResultMsg{
				err: &source.ConnectionError{
					Op:      "connect",
					Message: fmt.Sprintf("credential for %q not found", account.Name),
					Err:     err,
				},
			}
		}

		adapter := imap.NewAdapter(*account, password, log)
		info, err := adapter.Connect(ctx)
		if err != nil {
			return connectResultMsg{err: err}
		}

		return connectResultMsg{session: &session{
			src:     adapter,
			account: *account,
			info:    info,
		}}
	}
}
