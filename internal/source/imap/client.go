package imap

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-message/textproto"

	"github.com/nhle/inbox-reader/internal/source"
)

// Client wraps go-imap v2 for connecting to and querying an IMAP server.
// Each operation opens its own short-lived connection; the server holds
// no state for us between calls.
type Client struct {
	host     string
	port     string
	username string
	password string
	tls      bool
}

// NewClient creates a new IMAP client configuration.
func NewClient(host, port, username, password string, tls bool) *Client {
	return &Client{
		host:     host,
		port:     port,
		username: username,
		password: password,
		tls:      tls,
	}
}

// connect establishes a connection, authenticates, and returns the
// connected client. The caller is responsible for Logout. All failures
// surface as source.ConnectionError: they are fatal to the session.
func (c *Client) connect(_ context.Context) (*imapclient.Client, error) {
	addr := c.host + ":" + c.port

	var client *imapclient.Client
	var err error

	if c.tls {
		client, err = imapclient.DialTLS(addr, nil)
	} else {
		client, err = imapclient.DialStartTLS(addr, nil)
	}
	if err != nil {
		return nil, &source.ConnectionError{
			Op:      "dial",
			Message: fmt.Sprintf("cannot reach mail server %s", addr),
			Err:     err,
		}
	}

	if err := client.Login(c.username, c.password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, &source.ConnectionError{
			Op:      "login",
			Message: fmt.Sprintf("authentication failed for %s", c.username),
			Err:     err,
		}
	}

	return client, nil
}

// SelectInbox connects, selects INBOX, and returns the message count.
func (c *Client) SelectInbox(ctx context.Context) (int, error) {
	client, err := c.connect(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = client.Logout().Wait() }()

	data, err := client.Select("INBOX", nil).Wait()
	if err != nil {
		return 0, &source.ConnectionError{
			Op:      "select",
			Message: "cannot open INBOX",
			Err:     err,
		}
	}

	return int(data.NumMessages), nil
}

// FetchItems retrieves recent inbox entries (envelope, flags, and body
// structure) as property-bag Items. windowDays bounds the search to
// recent messages; limit caps how many are fetched, keeping the most
// recent. Individual entries that fail to collect are dropped silently;
// the intake accounts for them via the total/fetched delta.
func (c *Client) FetchItems(ctx context.Context, windowDays, limit int) ([]source.PropertyReader, error) {
	client, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Logout().Wait() }()

	if _, err := client.Select("INBOX", nil).Wait(); err != nil {
		return nil, &source.ConnectionError{
			Op:      "select",
			Message: "cannot open INBOX",
			Err:     err,
		}
	}

	criteria := &imap.SearchCriteria{}
	if windowDays > 0 {
		criteria.Since = time.Now().AddDate(0, 0, -windowDays)
	}

	searchData, err := client.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("searching inbox: %w", err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}

	// Keep the most recent when over the limit.
	if limit > 0 && len(uids) > limit {
		uids = uids[len(uids)-limit:]
	}

	uidSet := imap.UIDSetNum(uids...)
	// The envelope carries In-Reply-To but not References; fetch that
	// one header too so threads can be keyed by their root message.
	refSection := &imap.FetchItemBodySection{
		Specifier:    imap.PartSpecifierHeader,
		HeaderFields: []string{"References"},
		Peek:         true,
	}
	fetchOpts := &imap.FetchOptions{
		Envelope:      true,
		Flags:         true,
		UID:           true,
		BodyStructure: &imap.FetchItemBodyStructure{},
		BodySection:   []*imap.FetchItemBodySection{refSection},
	}

	fetchCmd := client.Fetch(uidSet, fetchOpts)
	defer fetchCmd.Close()

	var items []source.PropertyReader
	for {
		msg := fetchCmd.Next()
		if msg == nil {
			break
		}

		buf, err := msg.Collect()
		if err != nil {
			continue
		}

		items = append(items, Item{
			uid:   buf.UID,
			env:   buf.Envelope,
			flags: buf.Flags,
			refs:  parseReferences(buf.FindBodySection(refSection)),
			class: classify(buf.BodyStructure),
		})
	}

	if err := fetchCmd.Close(); err != nil {
		return items, fmt.Errorf("fetching inbox items: %w", err)
	}

	return items, nil
}

// FetchBody retrieves and parses the full message body for a UID,
// preferring the text/plain part.
func (c *Client) FetchBody(ctx context.Context, uid imap.UID) (string, error) {
	client, err := c.connect(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = client.Logout().Wait() }()

	if _, err := client.Select("INBOX", nil).Wait(); err != nil {
		return "", &source.ConnectionError{
			Op:      "select",
			Message: "cannot open INBOX",
			Err:     err,
		}
	}

	bodySection := &imap.FetchItemBodySection{Peek: true}
	fetchOpts := &imap.FetchOptions{
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	}

	fetchCmd := client.Fetch(imap.UIDSetNum(uid), fetchOpts)
	defer fetchCmd.Close()

	msg := fetchCmd.Next()
	if msg == nil {
		return "", fmt.Errorf("message UID %d not found", uid)
	}

	buf, err := msg.Collect()
	if err != nil {
		return "", fmt.Errorf("collecting message data: %w", err)
	}

	raw := buf.FindBodySection(bodySection)
	if raw == nil {
		return "", fmt.Errorf("message UID %d has no body", uid)
	}

	body := parseTextBody(raw)

	if err := fetchCmd.Close(); err != nil {
		return body, fmt.Errorf("closing fetch: %w", err)
	}

	return body, nil
}

// parseReferences extracts the message-IDs from a fetched References
// header block, oldest first. A missing or malformed header yields nil;
// the caller falls back to In-Reply-To.
func parseReferences(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}

	hdr, err := textproto.ReadHeader(bufio.NewReader(bytes.NewReader(raw)))
	if err != nil {
		return nil
	}

	var ids []string
	for _, tok := range strings.Fields(hdr.Get("References")) {
		if strings.HasPrefix(tok, "<") && strings.HasSuffix(tok, ">") {
			ids = append(ids, tok)
		}
	}
	return ids
}

// parseTextBody extracts a plain-text rendering from a raw RFC 2822
// message using go-message, falling back to stripped HTML and finally
// to the raw bytes when MIME parsing fails.
func parseTextBody(raw []byte) string {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return string(raw)
	}
	defer mr.Close()

	var textBody, htmlBody string
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		h, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, _ := h.ContentType()
		body, readErr := io.ReadAll(part.Body)
		if readErr != nil {
			continue
		}

		switch {
		case strings.HasPrefix(contentType, "text/plain"):
			textBody = string(body)
		case strings.HasPrefix(contentType, "text/html"):
			htmlBody = string(body)
		}
	}

	if textBody != "" {
		return textBody
	}
	return stripHTML(htmlBody)
}
