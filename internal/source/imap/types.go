// Package imap implements source.MailSource on top of go-imap v2. It is
// the production adapter; tests plug property-bag fakes into the same
// intake instead.
package imap

import (
	"strconv"
	"strings"

	"github.com/emersion/go-imap/v2"

	"github.com/nhle/inbox-reader/internal/model"
	"github.com/nhle/inbox-reader/internal/source"
)

// Item is one fetched inbox entry: an envelope-backed property bag.
// Prop returns ok=false for anything the envelope cannot supply, so the
// intake's default-substitution handles truncated or malformed entries.
type Item struct {
	uid   imap.UID
	env   *imap.Envelope
	flags []imap.Flag
	refs  []string
	class string
}

var _ source.PropertyReader = Item{}

// Prop implements source.PropertyReader.
func (it Item) Prop(name string) (any, bool) {
	switch name {
	case source.PropClass:
		return it.class, it.class != ""

	case source.PropItemRef:
		if it.uid == 0 {
			return nil, false
		}
		return strconv.FormatUint(uint64(it.uid), 10), true

	case source.PropUnread:
		for _, f := range it.flags {
			if f == imap.FlagSeen {
				return false, true
			}
		}
		return true, true
	}

	if it.env == nil {
		return nil, false
	}

	switch name {
	case source.PropSubject:
		return it.env.Subject, it.env.Subject != ""

	case source.PropMessageID:
		return it.env.MessageID, it.env.MessageID != ""

	case source.PropReceived:
		if it.env.Date.IsZero() {
			return nil, false
		}
		return it.env.Date, true

	case source.PropSender:
		if len(it.env.From) == 0 {
			return nil, false
		}
		from := it.env.From[0]
		if from.Name != "" {
			return from.Name, true
		}
		return from.Addr(), from.Addr() != ""

	case source.PropSenderEmail:
		if len(it.env.From) == 0 {
			return nil, false
		}
		return it.env.From[0].Addr(), true

	case source.PropConversationKey:
		// Thread identity is the root of the reference chain: the first
		// References entry when that header was fetched, else the direct
		// parent from In-Reply-To. Deep threads all share the root.
		if len(it.refs) > 0 && it.refs[0] != "" {
			return it.refs[0], true
		}
		if len(it.env.InReplyTo) > 0 && it.env.InReplyTo[0] != "" {
			return it.env.InReplyTo[0], true
		}
		return nil, false
	}

	return nil, false
}

// classify derives the item class from the body structure. Meeting
// invites and delivery reports arrive in the inbox alongside mail and
// must be skipped by the intake.
func classify(bs imap.BodyStructure) string {
	class := model.ClassMail
	if bs == nil {
		return class
	}

	bs.Walk(func(_ []int, part imap.BodyStructure) bool {
		switch strings.ToLower(part.MediaType()) {
		case "text/calendar", "application/ics":
			class = model.ClassCalendar
		case "multipart/report", "message/delivery-status":
			class = model.ClassReport
		}
		return true
	})

	return class
}
