package conversation

import (
	"time"

	"github.com/nhle/inbox-reader/internal/model"
)

// BuildRecord maps one conversation to its display projection. The
// mapping never fails: an empty subject falls back to the placeholder,
// a zero timestamp renders as the timestamp placeholder, and previews
// cover at most previewCount of the most recent members (chronological
// order) with MoreCount carrying the rest.
func BuildRecord(c model.Conversation, previewCount int, tsFormat string) model.DisplayRecord {
	if previewCount < 1 {
		previewCount = 3
	}
	if tsFormat == "" {
		tsFormat = model.DefaultTimestampFormat
	}

	rec := model.DisplayRecord{
		Subject:   c.Subject,
		Sender:    model.PlaceholderSender,
		Timestamp: formatTime(c.LatestAt, tsFormat),
		Unread:    c.HasUnread,
		Count:     c.Count(),
	}
	if rec.Subject == "" {
		rec.Subject = model.PlaceholderSubject
	}

	if n := len(c.Messages); n > 0 {
		rec.Sender = senderOrPlaceholder(c.Messages[n-1].Sender)

		recent := c.Messages
		if n > previewCount {
			recent = c.Messages[n-previewCount:]
			rec.MoreCount = n - previewCount
		}
		rec.Previews = make([]model.Preview, 0, len(recent))
		for _, msg := range recent {
			rec.Previews = append(rec.Previews, model.Preview{
				Sender:    senderOrPlaceholder(msg.Sender),
				Timestamp: formatTime(msg.Received, tsFormat),
				Unread:    msg.Unread,
			})
		}
	}

	return rec
}

// BuildRecords maps a conversation list to display records. Conversations
// with no members cannot be rendered; they are skipped and counted rather
// than failing the whole pass.
func BuildRecords(convs []model.Conversation, previewCount int, tsFormat string) ([]model.DisplayRecord, int) {
	records := make([]model.DisplayRecord, 0, len(convs))
	skipped := 0
	for _, c := range convs {
		if c.Count() == 0 {
			skipped++
			continue
		}
		records = append(records, BuildRecord(c, previewCount, tsFormat))
	}
	return records, skipped
}

func senderOrPlaceholder(sender string) string {
	if sender == "" {
		return model.PlaceholderSender
	}
	return sender
}

// formatTime renders t with the given layout, degrading to the
// placeholder for zero timestamps instead of printing year 1.
func formatTime(t time.Time, layout string) string {
	if t.IsZero() {
		return model.PlaceholderTimestamp
	}
	return t.Format(layout)
}
