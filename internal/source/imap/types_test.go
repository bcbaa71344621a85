package imap

import (
	"testing"
	"time"

	goimap "github.com/emersion/go-imap/v2"

	"github.com/nhle/inbox-reader/internal/model"
	"github.com/nhle/inbox-reader/internal/source"
)

func testEnvelope() *goimap.Envelope {
	return &goimap.Envelope{
		Date:      time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC),
		Subject:   "Hello",
		MessageID: "<m1@example.com>",
		From: []goimap.Address{
			{Name: "Alice", Mailbox: "alice", Host: "example.com"},
		},
	}
}

func TestItemProp_Envelope(t *testing.T) {
	it := Item{uid: 42, env: testEnvelope(), class: model.ClassMail}

	msg, defaulted := source.ReadMessage(it)
	if defaulted != 0 {
		t.Errorf("defaulted = %d, want 0", defaulted)
	}
	if msg.ID != "<m1@example.com>" {
		t.Errorf("ID = %q", msg.ID)
	}
	if msg.Subject != "Hello" || msg.Sender != "Alice" {
		t.Errorf("Subject/Sender = %q/%q", msg.Subject, msg.Sender)
	}
	if msg.SenderEmail != "alice@example.com" {
		t.Errorf("SenderEmail = %q", msg.SenderEmail)
	}
	if msg.ItemRef != "42" {
		t.Errorf("ItemRef = %q, want 42", msg.ItemRef)
	}
}

func TestItemProp_NilEnvelopeDegrades(t *testing.T) {
	it := Item{uid: 7, class: model.ClassMail}

	msg, defaulted := source.ReadMessage(it)
	if msg.Subject != model.PlaceholderSubject {
		t.Errorf("Subject = %q, want placeholder", msg.Subject)
	}
	if msg.Sender != model.PlaceholderSender {
		t.Errorf("Sender = %q, want placeholder", msg.Sender)
	}
	if msg.ID == "" {
		t.Error("ID must be generated when the envelope is missing")
	}
	if defaulted == 0 {
		t.Error("expected defaulted fields")
	}
}

func TestItemProp_UnreadFromSeenFlag(t *testing.T) {
	unseen := Item{env: testEnvelope(), class: model.ClassMail}
	seen := Item{
		env:   testEnvelope(),
		flags: []goimap.Flag{goimap.FlagSeen},
		class: model.ClassMail,
	}

	a, _ := source.ReadMessage(unseen)
	b, _ := source.ReadMessage(seen)
	if !a.Unread {
		t.Error("message without \\Seen must be unread")
	}
	if b.Unread {
		t.Error("message with \\Seen must be read")
	}
}

func TestItemProp_ConversationKeyFromInReplyTo(t *testing.T) {
	env := testEnvelope()
	env.InReplyTo = []string{"<root@example.com>"}

	msg, _ := source.ReadMessage(Item{env: env, class: model.ClassMail})
	if msg.ConversationKey != "<root@example.com>" {
		t.Errorf("ConversationKey = %q", msg.ConversationKey)
	}

	// No reply chain: no shared key, grouping makes it a singleton.
	msg, _ = source.ReadMessage(Item{env: testEnvelope(), class: model.ClassMail})
	if msg.ConversationKey != "" {
		t.Errorf("ConversationKey = %q, want empty", msg.ConversationKey)
	}
}

func TestItemProp_ConversationKeyPrefersReferencesRoot(t *testing.T) {
	env := testEnvelope()
	env.InReplyTo = []string{"<parent@example.com>"}
	it := Item{
		env:   env,
		refs:  []string{"<root@example.com>", "<parent@example.com>"},
		class: model.ClassMail,
	}

	// Every message in a deep thread references the same root, so they
	// all land in one conversation instead of one bucket per parent.
	msg, _ := source.ReadMessage(it)
	if msg.ConversationKey != "<root@example.com>" {
		t.Errorf("ConversationKey = %q, want the References root", msg.ConversationKey)
	}
}

func TestItemProp_SenderFallsBackToAddress(t *testing.T) {
	env := testEnvelope()
	env.From = []goimap.Address{{Mailbox: "bob", Host: "example.com"}}

	msg, _ := source.ReadMessage(Item{env: env, class: model.ClassMail})
	if msg.Sender != "bob@example.com" {
		t.Errorf("Sender = %q, want address fallback", msg.Sender)
	}
}
