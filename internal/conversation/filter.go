package conversation

import (
	"strings"

	"github.com/nhle/inbox-reader/internal/model"
)

// Filter returns the conversations whose subject or any member sender
// contains query, case-insensitively, preserving input order. An empty
// or whitespace-only query returns the input unchanged.
func Filter(convs []model.Conversation, query string) []model.Conversation {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return convs
	}

	var matched []model.Conversation
	for _, c := range convs {
		if Matches(c, q) {
			matched = append(matched, c)
		}
	}
	return matched
}

// Matches reports whether a conversation matches an already-lowercased
// query: substring test against the subject or any member's sender name.
func Matches(c model.Conversation, q string) bool {
	if strings.Contains(strings.ToLower(c.Subject), q) {
		return true
	}
	for _, msg := range c.Messages {
		if strings.Contains(strings.ToLower(msg.Sender), q) {
			return true
		}
	}
	return false
}

// FilterUnread returns only conversations with at least one unread
// member, preserving input order.
func FilterUnread(convs []model.Conversation) []model.Conversation {
	var unread []model.Conversation
	for _, c := range convs {
		if c.HasUnread {
			unread = append(unread, c)
		}
	}
	return unread
}
