package domain

import "fmt"

// Event is one inbound chat-channel occurrence, already stripped of
// transport framing. Exactly one of Text or Callback is meaningful:
// Callback carries the data token of a pressed inline button.
type Event struct {
	ChatID     int64
	Text       string
	Command    string // bare command name ("start", "new", "cancel"), "" otherwise
	Callback   string // inline-button token ("save", "edit", "cancel_inline")
	CallbackID string // transport id used to acknowledge the button press
	SenderName string
	UpdateID   int64
	MessageID  int64
}

// IsCallback reports whether the event came from an inline button rather
// than typed text.
func (e Event) IsCallback() bool { return e.Callback != "" }

// MsgKey derives the idempotency key for the event. The key is a pure
// function of the transport identifiers, so retries of the same user
// action always produce the same key.
func (e Event) MsgKey() string {
	return fmt.Sprintf("%d|%d:%d", e.UpdateID, e.ChatID, e.MessageID)
}
