package imap

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/emersion/go-imap/v2"

	"github.com/nhle/inbox-reader/internal/model"
	"github.com/nhle/inbox-reader/internal/source"
)

// Adapter implements source.MailSource for IMAP mailboxes.
type Adapter struct {
	client  *Client
	account model.AccountConfig
	log     *slog.Logger
}

var (
	_ source.MailSource = (*Adapter)(nil)
	_ source.BodyReader = (*Adapter)(nil)
)

// NewAdapter creates a mail source for the given account. The password
// comes from the credential store, never from the account record.
func NewAdapter(account model.AccountConfig, password string, log *slog.Logger) *Adapter {
	return &Adapter{
		client: NewClient(
			account.Host, account.Port,
			account.Username, password,
			account.TLS,
		),
		account: account,
		log:     log,
	}
}

// Connect verifies credentials and connectivity by opening INBOX, and
// reports the mailbox size.
func (a *Adapter) Connect(ctx context.Context) (source.SessionInfo, error) {
	count, err := a.client.SelectInbox(ctx)
	if err != nil {
		return source.SessionInfo{}, err
	}

	name := a.account.Name
	if name == "" {
		name = a.account.Username
	}

	return source.SessionInfo{
		Account:      name,
		Mailbox:      "INBOX",
		MessageCount: count,
	}, nil
}

// FetchInbox retrieves the account's recent inbox items and runs them
// through the defensive intake. Only transport-level failures return an
// error; per-item problems degrade to defaults or skips.
func (a *Adapter) FetchInbox(ctx context.Context) ([]model.RawMessage, source.FetchReport, error) {
	items, err := a.client.FetchItems(
		ctx, a.account.FetchWindowDays, a.account.FetchLimit,
	)
	if err != nil {
		return nil, source.FetchReport{}, fmt.Errorf("fetching inbox: %w", err)
	}

	msgs, report := source.Collect(items, a.log)
	return msgs, report, nil
}

// FetchBody resolves an ItemRef (the message UID) to its plain-text body.
func (a *Adapter) FetchBody(ctx context.Context, itemRef string) (string, error) {
	uid, err := strconv.ParseUint(itemRef, 10, 32)
	if err != nil {
		return "", fmt.Errorf("invalid item reference %q: %w", itemRef, err)
	}
	return a.client.FetchBody(ctx, imap.UID(uid))
}

// htmlTagPattern matches HTML tags for stripping.
var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// stripHTML removes HTML tags from a string and decodes common
// entities, providing a basic plain-text rendering.
func stripHTML(html string) string {
	if html == "" {
		return ""
	}

	result := html
	for _, tag := range []string{
		"<br>", "<br/>", "<br />", "</p>", "</div>", "</li>",
	} {
		result = strings.ReplaceAll(result, tag, "\n")
	}

	result = htmlTagPattern.ReplaceAllString(result, "")

	replacer := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
	)
	result = replacer.Replace(result)

	for strings.Contains(result, "\n\n\n") {
		result = strings.ReplaceAll(result, "\n\n\n", "\n\n")
	}

	return strings.TrimSpace(result)
}
