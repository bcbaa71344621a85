// Package conversation turns one fetch's raw messages into the
// conversation list the UI renders: grouping, search filtering, and
// display-record projection. Everything here is pure and operates on a
// single in-memory snapshot.
package conversation

import (
	"sort"

	"github.com/nhle/inbox-reader/internal/model"
)

// singletonPrefix marks grouping keys synthesized from a message's own
// identity when the source supplied no shared conversation key.
const singletonPrefix = "single-"

// Group buckets messages by conversation key and returns conversations
// sorted descending by their latest member timestamp. Messages without a
// shared key become singleton conversations keyed by their own ID, so no
// message is ever dropped. Ties on the latest timestamp keep the order
// in which the grouping pass first saw the conversations.
func Group(msgs []model.RawMessage) []model.Conversation {
	if len(msgs) == 0 {
		return nil
	}

	buckets := make(map[string]int, len(msgs))
	convs := make([]model.Conversation, 0, len(msgs))

	for _, msg := range msgs {
		key := msg.ConversationKey
		if key == "" {
			key = singletonPrefix + msg.ID
		}

		idx, ok := buckets[key]
		if !ok {
			idx = len(convs)
			buckets[key] = idx
			convs = append(convs, model.Conversation{Key: key})
		}
		convs[idx].Messages = append(convs[idx].Messages, msg)
	}

	for i := range convs {
		finalize(&convs[i])
	}

	sort.SliceStable(convs, func(a, b int) bool {
		return convs[a].LatestAt.After(convs[b].LatestAt)
	})

	return convs
}

// finalize orders a conversation's members chronologically and computes
// the derived subject, unread flag, and latest timestamp.
func finalize(c *model.Conversation) {
	sort.SliceStable(c.Messages, func(a, b int) bool {
		return c.Messages[a].Received.Before(c.Messages[b].Received)
	})

	c.Subject = model.PlaceholderSubject
	if len(c.Messages) > 0 && c.Messages[0].Subject != "" {
		c.Subject = c.Messages[0].Subject
	}

	c.HasUnread = false
	for _, msg := range c.Messages {
		if msg.Unread {
			c.HasUnread = true
		}
		if msg.Received.After(c.LatestAt) {
			c.LatestAt = msg.Received
		}
	}
}
