package model

import "time"

// Conversation is a group of messages sharing a conversation key.
// Conversations are rebuilt wholesale on every refresh; they are never
// updated incrementally and never persisted.
type Conversation struct {
	// Key is the grouping key: the shared conversation key, or a
	// synthetic singleton key derived from the message's own identity.
	Key string

	// Messages holds the members in chronological order (oldest first).
	Messages []RawMessage

	// Subject is the subject of the oldest member.
	Subject string

	// HasUnread is true when any member is unread.
	HasUnread bool

	// LatestAt is the newest member timestamp; conversations are sorted
	// descending by this value.
	LatestAt time.Time
}

// Count returns the number of member messages.
func (c Conversation) Count() int { return len(c.Messages) }

// Preview is one member line rendered inside a conversation card.
type Preview struct {
	Sender    string
	Timestamp string
	Unread    bool
}

// DisplayRecord is the read-only projection of a Conversation handed to
// the UI layer. It is created fresh per render pass and never mutated.
type DisplayRecord struct {
	Subject   string
	Sender    string
	Timestamp string
	Unread    bool
	Count     int

	// Previews covers the most recent members (chronological order,
	// at most the configured preview count).
	Previews []Preview

	// MoreCount is how many members were omitted from Previews.
	MoreCount int
}
