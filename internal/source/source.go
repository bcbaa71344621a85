// Package source defines the contract between the application and a
// mail client. Any surface that can list inbox items and read item
// properties can be plugged in behind MailSource.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/nhle/inbox-reader/internal/model"
)

// ConnectionError indicates the mail client is unreachable, rejected the
// credentials, or timed out. It is fatal to the current session; the
// user has to retry. Every other intake failure is recovered locally.
type ConnectionError struct {
	// Op is the operation that failed (e.g. "dial", "login", "select").
	Op string

	// Message is a human-readable explanation shown to the user.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

func (e *ConnectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("connection error (%s): %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("connection error (%s): %s", e.Op, e.Message)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// IsConnectionError reports whether err (or any error in its chain) is a
// ConnectionError.
func IsConnectionError(err error) bool {
	var connErr *ConnectionError
	return errors.As(err, &connErr)
}

// SessionInfo describes an established mail session.
type SessionInfo struct {
	// Account is the label of the connected account.
	Account string

	// Mailbox is the selected folder, normally "INBOX".
	Mailbox string

	// MessageCount is the total number of items in the mailbox at
	// connect time.
	MessageCount int
}

// FetchReport accounts for one inbox fetch: how many items the source
// held, how many became RawMessages, how many were skipped as non-mail
// or unreadable, and how many individual fields fell back to defaults.
type FetchReport struct {
	Total     int
	Fetched   int
	Skipped   int
	Defaulted int
}

// MailSource is the adapter contract for a mail client. Implementations
// must be safe to call from a single worker goroutine at a time; the
// controller never issues concurrent calls.
type MailSource interface {
	// Connect establishes a read-only session with the mail client.
	// It returns a ConnectionError when the client is absent,
	// misconfigured, or unreachable.
	Connect(ctx context.Context) (SessionInfo, error)

	// FetchInbox retrieves all inbox items as RawMessages, omitting
	// non-mail items and degrading unreadable fields to defaults.
	// The report carries the skip/default accounting either way.
	FetchInbox(ctx context.Context) ([]model.RawMessage, FetchReport, error)
}

// BodyReader is an optional MailSource capability: resolving a message's
// ItemRef to its plain-text body for the detail view.
type BodyReader interface {
	FetchBody(ctx context.Context, itemRef string) (string, error)
}
