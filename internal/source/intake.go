package source

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/inbox-reader/internal/model"
)

// ReadMessage builds a RawMessage from one item's properties. Every
// field read degrades to its default instead of failing; the returned
// count says how many fields had to fall back.
func ReadMessage(r PropertyReader) (model.RawMessage, int) {
	defaulted := 0
	read := func(ok bool) {
		if !ok {
			defaulted++
		}
	}

	var msg model.RawMessage
	var ok bool

	msg.Subject, ok = StringProp(r, PropSubject, model.PlaceholderSubject)
	read(ok)
	msg.Sender, ok = StringProp(r, PropSender, model.PlaceholderSender)
	read(ok)
	msg.SenderEmail, _ = StringProp(r, PropSenderEmail, "")
	msg.Received, ok = TimeProp(r, PropReceived, time.Time{})
	read(ok)
	msg.Unread, _ = BoolProp(r, PropUnread, false)
	msg.ConversationKey, _ = StringProp(r, PropConversationKey, "")
	msg.Class, _ = StringProp(r, PropClass, model.ClassUnknown)
	msg.ItemRef, _ = StringProp(r, PropItemRef, "")

	// Every message needs an identity so that grouping can synthesize a
	// singleton key for it. Generate one when the source has none.
	msg.ID, ok = StringProp(r, PropMessageID, "")
	if !ok || msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	return msg, defaulted
}

// Collect runs the intake over a sequence of items: non-mail items
// (calendar entries, delivery reports) are skipped and counted, each
// surviving item becomes exactly one RawMessage. One malformed item can
// never abort the fetch.
func Collect(items []PropertyReader, log *slog.Logger) ([]model.RawMessage, FetchReport) {
	report := FetchReport{Total: len(items)}
	msgs := make([]model.RawMessage, 0, len(items))

	for _, item := range items {
		class, _ := StringProp(item, PropClass, model.ClassUnknown)
		if class != model.ClassMail {
			report.Skipped++
			continue
		}

		msg, defaulted := ReadMessage(item)
		report.Defaulted += defaulted
		report.Fetched++
		msgs = append(msgs, msg)
	}

	if log != nil && report.Skipped > 0 {
		log.Info("skipped non-mail items",
			"skipped", report.Skipped,
			"total", report.Total,
		)
	}

	return msgs, report
}
