package conversation

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nhle/inbox-reader/internal/model"
)

var base = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

func msg(id, key, subject string, offset time.Duration, unread bool) model.RawMessage {
	return model.RawMessage{
		ID:              id,
		Subject:         subject,
		Sender:          "Sender " + id,
		Received:        base.Add(offset),
		Unread:          unread,
		ConversationKey: key,
		Class:           model.ClassMail,
	}
}

func TestGroup_PartitionsByKey(t *testing.T) {
	msgs := []model.RawMessage{
		msg("m1", "C1", "Planning", 0, false),
		msg("m2", "C1", "Re: Planning", time.Hour, false),
		msg("m3", "C1", "Re: Planning", 2*time.Hour, true),
		msg("m4", "", "Lunch?", 30*time.Minute, false),
		msg("m5", "", "Invoice", 90*time.Minute, true),
	}

	convs := Group(msgs)
	if len(convs) != 3 {
		t.Fatalf("got %d conversations, want 3", len(convs))
	}

	total := 0
	for _, c := range convs {
		total += c.Count()
	}
	if total != len(msgs) {
		t.Errorf("member total = %d, want %d (no message dropped)", total, len(msgs))
	}

	var shared *model.Conversation
	for i := range convs {
		if convs[i].Key == "C1" {
			shared = &convs[i]
		}
	}
	if shared == nil {
		t.Fatal("no conversation with key C1")
	}
	if shared.Count() != 3 {
		t.Errorf("C1 members = %d, want 3", shared.Count())
	}
}

func TestGroup_SingletonsKeyedByID(t *testing.T) {
	msgs := []model.RawMessage{
		msg("a", "", "One", 0, false),
		msg("b", "", "Two", time.Hour, false),
	}

	convs := Group(msgs)
	if len(convs) != 2 {
		t.Fatalf("got %d conversations, want 2", len(convs))
	}
	keys := map[string]bool{}
	for _, c := range convs {
		keys[c.Key] = true
		if c.Count() != 1 {
			t.Errorf("singleton %q has %d members", c.Key, c.Count())
		}
	}
	if !keys["single-a"] || !keys["single-b"] {
		t.Errorf("keys = %v, want single-a and single-b", keys)
	}
}

func TestGroup_MembersChronological(t *testing.T) {
	msgs := []model.RawMessage{
		msg("late", "C1", "Re: Re: Topic", 2*time.Hour, false),
		msg("early", "C1", "Topic", 0, false),
		msg("mid", "C1", "Re: Topic", time.Hour, false),
	}

	convs := Group(msgs)
	if len(convs) != 1 {
		t.Fatalf("got %d conversations, want 1", len(convs))
	}

	var got []string
	for _, m := range convs[0].Messages {
		got = append(got, m.ID)
	}
	want := []string{"early", "mid", "late"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("member order mismatch (-want +got):\n%s", diff)
	}
}

func TestGroup_SubjectFromOldestMember(t *testing.T) {
	msgs := []model.RawMessage{
		msg("m2", "C1", "Re: Kickoff", time.Hour, false),
		msg("m1", "C1", "Kickoff", 0, false),
	}

	convs := Group(msgs)
	if convs[0].Subject != "Kickoff" {
		t.Errorf("subject = %q, want %q", convs[0].Subject, "Kickoff")
	}
}

func TestGroup_EmptySubjectGetsPlaceholder(t *testing.T) {
	convs := Group([]model.RawMessage{msg("m1", "", "", 0, false)})
	if convs[0].Subject != model.PlaceholderSubject {
		t.Errorf("subject = %q, want placeholder", convs[0].Subject)
	}
}

func TestGroup_SortedByLatestDescending(t *testing.T) {
	msgs := []model.RawMessage{
		msg("old", "", "Old", 0, false),
		msg("m1", "C1", "Thread", time.Hour, false),
		msg("m2", "C1", "Re: Thread", 3*time.Hour, false),
		msg("new", "", "New", 2*time.Hour, false),
	}

	convs := Group(msgs)

	var got []string
	for _, c := range convs {
		got = append(got, c.Key)
	}
	// The thread's latest member is newest overall.
	want := []string{"C1", "single-new", "single-old"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestGroup_TimestampTiesKeepEncounterOrder(t *testing.T) {
	msgs := []model.RawMessage{
		msg("first", "", "First seen", time.Hour, false),
		msg("second", "", "Second seen", time.Hour, false),
		msg("third", "", "Third seen", time.Hour, false),
	}

	convs := Group(msgs)

	var got []string
	for _, c := range convs {
		got = append(got, c.Key)
	}
	want := []string{"single-first", "single-second", "single-third"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tie order mismatch (-want +got):\n%s", diff)
	}
}

func TestGroup_UnreadPropagates(t *testing.T) {
	msgs := []model.RawMessage{
		msg("m1", "C1", "Thread", 0, false),
		msg("m2", "C1", "Re: Thread", time.Hour, true),
		msg("m3", "", "Read one", 2*time.Hour, false),
	}

	convs := Group(msgs)
	for _, c := range convs {
		want := c.Key == "C1"
		if c.HasUnread != want {
			t.Errorf("HasUnread for %q = %v, want %v", c.Key, c.HasUnread, want)
		}
	}
}

func TestGroup_Empty(t *testing.T) {
	if convs := Group(nil); convs != nil {
		t.Errorf("Group(nil) = %v, want nil", convs)
	}
}

func TestGroup_LatestAt(t *testing.T) {
	msgs := []model.RawMessage{
		msg("m1", "C1", "Thread", 0, false),
		msg("m2", "C1", "Re: Thread", 5*time.Hour, false),
	}

	convs := Group(msgs)
	want := base.Add(5 * time.Hour)
	if !convs[0].LatestAt.Equal(want) {
		t.Errorf("LatestAt = %v, want %v", convs[0].LatestAt, want)
	}
}
