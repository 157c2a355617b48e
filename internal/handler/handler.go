package handler

import (
	"context"
	"strings"
	"unicode"

	"vipbot/internal/conversation"
	"vipbot/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Conversation consumes normalized inbound messages. Dispatch must not block;
// the bot runs synchronously so calls arrive in update order.
type Conversation interface {
	Dispatch(ctx context.Context, in conversation.Inbound)
}

// Handler feeds telegram updates into the conversation engine
type Handler struct {
	bot    *tele.Bot
	engine Conversation
	ctx    context.Context
	logger *zap.Logger
}

// NewHandler creates a new handler instance. ctx bounds every handled update.
func NewHandler(ctx context.Context, bot *tele.Bot, engine Conversation, logger *zap.Logger) *Handler {
	return &Handler{
		bot:    bot,
		engine: engine,
		ctx:    ctx,
		logger: logger,
	}
}

// RegisterHandlers registers all bot handlers
func (h *Handler) RegisterHandlers() {
	// Commands and menu buttons arrive as text
	h.bot.Handle(tele.OnText, h.handleMessage)

	// Media
	h.bot.Handle(tele.OnPhoto, h.handleMessage)
	h.bot.Handle(tele.OnVideo, h.handleMessage)
	h.bot.Handle(tele.OnDocument, h.handleMessage)
	h.bot.Handle(tele.OnAnimation, h.handleMessage)

	// Shared phone number during registration
	h.bot.Handle(tele.OnContact, h.handleMessage)
}

func (h *Handler) handleMessage(c tele.Context) error {
	in, ok := ToInbound(c.Message())
	if !ok {
		return nil
	}
	h.logger.Debug("Inbound message",
		zap.Int64("chat_id", in.ChatID),
		zap.String("kind", string(in.Payload.Kind)),
	)
	h.engine.Dispatch(h.ctx, in)
	return nil
}

// ToInbound converts a private chat message. Other chats and unsupported
// message types are skipped.
func ToInbound(m *tele.Message) (conversation.Inbound, bool) {
	if m == nil || m.Chat == nil || m.Sender == nil || !m.Private() {
		return conversation.Inbound{}, false
	}

	in := conversation.Inbound{
		ChatID:    m.Chat.ID,
		MessageID: m.ID,
		Username:  m.Sender.Username,
		FirstName: m.Sender.FirstName,
	}

	switch {
	case m.Photo != nil:
		in.Payload = media(domain.MediaPhoto, m.Photo.FileID, m.Caption)
	case m.Video != nil:
		in.Payload = media(domain.MediaVideo, m.Video.FileID, m.Caption)
	// animations also carry a document
	case m.Animation != nil:
		in.Payload = media(domain.MediaAnimation, m.Animation.FileID, m.Caption)
	case m.Document != nil:
		in.Payload = media(domain.MediaDocument, m.Document.FileID, m.Caption)
	case m.Contact != nil:
		in.Phone = m.Contact.PhoneNumber
	case m.Text != "":
		text := m.Text
		if strings.HasPrefix(strings.TrimSpace(text), "/") {
			text = cleanCommand(text)
		}
		in.Payload = domain.Payload{Kind: domain.MediaText, Text: text}
	default:
		return conversation.Inbound{}, false
	}
	return in, true
}

func media(kind domain.MediaKind, fileID, caption string) domain.Payload {
	return domain.Payload{Kind: kind, FileID: fileID, Text: caption}
}

// cleanCommand drops whitespace and unprintable runes some clients add to commands
func cleanCommand(text string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(text))
}
