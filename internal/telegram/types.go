// Package telegram implements the Bot API surface the intake bot needs:
// the inbound update wire types delivered to the webhook and a small
// outbound client for sending, editing, and acknowledging messages.
package telegram

import "github.com/fleetops/repair-intake/internal/domain"

// Update is one inbound webhook payload. Exactly one of Message or
// CallbackQuery is set for the updates this bot subscribes to.
type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *Message       `json:"message,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

// Message is an inbound chat message.
type Message struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from,omitempty"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text,omitempty"`
}

// Chat identifies the conversation a message belongs to.
type Chat struct {
	ID int64 `json:"id"`
}

// User is the sender of a message or button press.
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// DisplayName renders the sender the way the bot records a reporter:
// full name when present, else the @username, else empty.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" && u.Username != "" {
		name = "@" + u.Username
	}
	return name
}

// CallbackQuery is an inline button press.
type CallbackQuery struct {
	ID      string   `json:"id"`
	From    *User    `json:"from,omitempty"`
	Message *Message `json:"message,omitempty"`
	Data    string   `json:"data,omitempty"`
}

// ReplyKeyboardMarkup renders a reply keyboard under the input field.
type ReplyKeyboardMarkup struct {
	Keyboard        [][]KeyboardButton `json:"keyboard"`
	ResizeKeyboard  bool               `json:"resize_keyboard"`
	OneTimeKeyboard bool               `json:"one_time_keyboard,omitempty"`
}

// KeyboardButton is one reply-keyboard cell.
type KeyboardButton struct {
	Text string `json:"text"`
}

// ReplyKeyboardRemove tells the client to drop the current keyboard.
type ReplyKeyboardRemove struct {
	RemoveKeyboard bool `json:"remove_keyboard"`
}

// InlineKeyboardMarkup renders buttons attached to a message.
type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

// InlineKeyboardButton is one inline button with its callback payload.
type InlineKeyboardButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

// ToEvent flattens an update into the transport-neutral event the intake
// service consumes. Updates without a chat (channel posts, edits the bot
// does not subscribe to) yield ok=false.
func (u *Update) ToEvent() (domain.Event, bool) {
	switch {
	case u.Message != nil:
		m := u.Message
		ev := domain.Event{
			ChatID:     m.Chat.ID,
			Text:       m.Text,
			SenderName: m.From.DisplayName(),
			UpdateID:   u.UpdateID,
			MessageID:  m.MessageID,
		}
		ev.Command = parseCommand(m.Text)
		return ev, true
	case u.CallbackQuery != nil:
		cb := u.CallbackQuery
		ev := domain.Event{
			ChatID:     0,
			Callback:   cb.Data,
			CallbackID: cb.ID,
			SenderName: cb.From.DisplayName(),
			UpdateID:   u.UpdateID,
		}
		if cb.Message == nil {
			return domain.Event{}, false
		}
		ev.ChatID = cb.Message.Chat.ID
		ev.MessageID = cb.Message.MessageID
		return ev, true
	default:
		return domain.Event{}, false
	}
}

// parseCommand extracts a leading bot command ("/start", "/new@MyBot")
// without its slash or bot mention; non-commands return "".
func parseCommand(text string) string {
	if len(text) < 2 || text[0] != '/' {
		return ""
	}
	cmd := text[1:]
	for i := 0; i < len(cmd); i++ {
		if cmd[i] == ' ' {
			cmd = cmd[:i]
			break
		}
	}
	for i := 0; i < len(cmd); i++ {
		if cmd[i] == '@' {
			cmd = cmd[:i]
			break
		}
	}
	return cmd
}
