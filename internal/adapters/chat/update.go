// Package chat turns chat transport updates into scoreboard operations and
// renders the bot's replies.
package chat

// Update is an inbound webhook update in the Telegram Bot API shape.
// Only the fields the bot reads are declared.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

// Message is a chat message carried by an Update.
type Message struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from,omitempty"`
	Chat      Chat   `json:"chat"`
	Date      int64  `json:"date"`
	Text      string `json:"text"`
}

// User is the sender of a message.
type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	Username  string `json:"username,omitempty"`
}

// Chat identifies the conversation a message belongs to.
type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

// Reply is an outbound sendMessage call. It is returned inline in the
// webhook response, which the transport executes on the bot's behalf.
type Reply struct {
	Method    string `json:"method"`
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

func newReply(chatID int64, text string) Reply {
	return Reply{Method: "sendMessage", ChatID: chatID, Text: text, ParseMode: "Markdown"}
}
