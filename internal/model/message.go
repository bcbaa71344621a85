package model

import "time"

// Placeholder values used when a source item is missing or fails to
// provide a field. Per-field degradation keeps one malformed message
// from aborting a whole fetch.
const (
	PlaceholderSubject   = "(no subject)"
	PlaceholderSender    = "Unknown"
	PlaceholderTimestamp = "Unknown date"
)

// Item classes as reported by the mail source. Only mail items are
// grouped into conversations; everything else is skipped and counted.
const (
	ClassMail     = "mail"
	ClassCalendar = "calendar"
	ClassReport   = "report"
	ClassUnknown  = "unknown"
)

// RawMessage is one inbox item as read from the mail source, with every
// field already normalized defensively (missing properties replaced by
// defaults). It lives only for the duration of one refresh cycle.
type RawMessage struct {
	// ID uniquely identifies the message within the fetch. The adapter
	// guarantees it is never empty, falling back to a generated value
	// when the source provides no identifier.
	ID string

	// Subject is the message subject, PlaceholderSubject when absent.
	Subject string

	// Sender is the display name of the sender, PlaceholderSender when
	// absent.
	Sender string

	// SenderEmail is the sender address; may be empty.
	SenderEmail string

	// Received is when the message arrived. Zero when the source could
	// not supply a timestamp.
	Received time.Time

	// Unread reports whether the message is still unread.
	Unread bool

	// ConversationKey is the identifier shared by messages of the same
	// thread. Empty when the source has no threading information, in
	// which case the message becomes a singleton conversation.
	ConversationKey string

	// Class is the item class (use Class* constants).
	Class string

	// ItemRef is an opaque reference the source can resolve back to the
	// underlying item, used for follow-up reads such as fetching a body.
	// May be empty for sources without stable item references.
	ItemRef string
}
