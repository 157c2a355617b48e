package conversation

import (
	"context"
	"errors"
	"strings"

	"vipbot/internal/domain"
)

// FetchFileText rejects documents that cannot serve as a prompt
var (
	ErrFileTooLarge = errors.New("file is too large")
	ErrNotText      = errors.New("file is not valid UTF-8 text")
)

// Messenger is the chat transport used by the engine
type Messenger interface {
	Send(ctx context.Context, chatID int64, msg Message) error
	Forward(ctx context.Context, to, from int64, messageID int) error
	FetchFileText(ctx context.Context, fileID string) (string, error)
}

// Message is an outbound message. Upload, when set, is sent as a new document
// instead of the payload file reference.
type Message struct {
	Payload  domain.Payload
	HTML     bool
	Keyboard *Keyboard
	Upload   *Upload
}

// Keyboard is a reply keyboard
type Keyboard struct {
	Rows        [][]string
	OneTime     bool
	Placeholder string
	// Contact, when set, adds a button that shares the user's phone number
	Contact string
	Remove  bool
}

// Upload is an in-memory file
type Upload struct {
	Name string
	Data []byte
}

// Inbound is a message received from a chat
type Inbound struct {
	ChatID    int64
	MessageID int
	Username  string
	FirstName string
	Payload   domain.Payload
	// Phone is set when the user shared a contact
	Phone string
}

// Text returns the trimmed text of a text message, empty otherwise
func (in Inbound) Text() string {
	if in.Payload.Kind != domain.MediaText {
		return ""
	}
	return strings.TrimSpace(in.Payload.Text)
}

// IsText reports whether the message is plain text
func (in Inbound) IsText() bool {
	return in.Payload.Kind == domain.MediaText
}

// answer returns the reply to a profile question. A shared contact only
// answers the phone question.
func (in Inbound) answer(field domain.ProfileField) (string, bool) {
	if in.Phone != "" {
		return in.Phone, field == domain.FieldPhone
	}
	if !in.IsText() {
		return "", false
	}
	return in.Text(), true
}

// DisplayName returns the best available human name for logs and reports
func (in Inbound) DisplayName() string {
	switch {
	case in.FirstName != "":
		return in.FirstName
	case in.Username != "":
		return "@" + in.Username
	}
	return "user"
}

func textMessage(text string, kb *Keyboard) Message {
	return Message{
		Payload:  domain.Payload{Kind: domain.MediaText, Text: text},
		HTML:     true,
		Keyboard: kb,
	}
}
