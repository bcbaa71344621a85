package source

import "time"

// PropertyReader provides tolerant access to the named properties of a
// raw mailbox item. Implementations return ok=false for properties they
// cannot supply; they never panic and never return errors. Callers go
// through the typed helpers below, which substitute a default for any
// missing or mistyped value.
type PropertyReader interface {
	Prop(name string) (value any, ok bool)
}

// Well-known property names understood by the adapters.
const (
	PropSubject         = "Subject"
	PropSender          = "SenderName"
	PropSenderEmail     = "SenderEmailAddress"
	PropReceived        = "ReceivedTime"
	PropUnread          = "Unread"
	PropConversationKey = "ConversationKey"
	PropMessageID       = "MessageID"
	PropClass           = "Class"
	PropItemRef         = "ItemRef"
)

// StringProp reads a string property, returning def when the property is
// absent, nil, empty, or not a string.
func StringProp(r PropertyReader, name, def string) (string, bool) {
	v, ok := r.Prop(name)
	if !ok {
		return def, false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return def, false
	}
	return s, true
}

// TimeProp reads a time property, returning def when the property is
// absent or not a time.Time.
func TimeProp(r PropertyReader, name string, def time.Time) (time.Time, bool) {
	v, ok := r.Prop(name)
	if !ok {
		return def, false
	}
	t, ok := v.(time.Time)
	if !ok {
		return def, false
	}
	return t, true
}

// BoolProp reads a boolean property, returning def when the property is
// absent or not a bool.
func BoolProp(r PropertyReader, name string, def bool) (bool, bool) {
	v, ok := r.Prop(name)
	if !ok {
		return def, false
	}
	b, ok := v.(bool)
	if !ok {
		return def, false
	}
	return b, true
}
