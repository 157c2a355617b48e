package conversation

import (
	"context"
	"errors"
	"fmt"

	"vipbot/internal/domain"
	"vipbot/internal/service"

	"go.uber.org/zap"
)

// handleMenu handles a message of a chat without an active flow
func (e *Engine) handleMenu(ctx context.Context, in Inbound) error {
	text := in.Text()

	if e.isAdmin(in.ChatID) {
		switch text {
		case BtnStats:
			return e.showStats(ctx, in.ChatID)
		case BtnExport:
			return e.exportUsers(ctx, in.ChatID)
		case BtnBroadcast:
			return e.enterBroadcastMenu(ctx, in.ChatID)
		case BtnSettings:
			return e.enterSettingsMenu(ctx, in.ChatID, "⚙️ <b>Channel settings</b>")
		case BtnAISettings:
			return e.enterAIMenu(ctx, in.ChatID, "🧠 <b>AI settings</b>")
		case BtnResetDB:
			return e.enterConfirmReset(ctx, in.ChatID)
		}
	}

	switch text {
	case BtnRegister:
		return e.startRegistration(ctx, in.ChatID)
	case BtnEditProfile:
		return e.enterEditMenu(ctx, in.ChatID, "✏️ Which field do you want to change?")
	case BtnMyProfile:
		return e.showProfile(ctx, in.ChatID)
	case BtnVIP:
		return e.enterVip(ctx, in.ChatID)
	case BtnAIChat:
		return e.enterAIChat(ctx, in.ChatID)
	case BtnContactAdmin:
		return e.enterContactAdmin(ctx, in.ChatID)
	}

	return e.showMenu(ctx, in.ChatID, msgUseMenu)
}

func (e *Engine) showProfile(ctx context.Context, chatID int64) error {
	user, err := e.users.Get(ctx, chatID)
	if err != nil {
		return err
	}
	if !user.Registered() {
		return e.showMenu(ctx, chatID, "You are not registered yet. Tap "+BtnRegister+" to start.")
	}
	rec, err := e.vip.Get(ctx, chatID)
	if err != nil {
		return fmt.Errorf("get vip: %w", err)
	}
	return e.showMenu(ctx, chatID, profileReport(user, rec, e.now()))
}

func (e *Engine) enterContactAdmin(ctx context.Context, chatID int64) error {
	if err := e.setState(ctx, chatID, domain.ContactAdminState{}); err != nil {
		return err
	}
	return e.reply(ctx, chatID, "📨 Send your message for the admin. Text, photo, video or document.", cancelKeyboard())
}

// handleContactAdmin forwards the message and gives the admin reply shortcuts
func (e *Engine) handleContactAdmin(ctx context.Context, in Inbound) error {
	if isAbort(in.Text()) {
		return e.resetToMenu(ctx, in.ChatID, msgCancelled)
	}
	if in.Payload.Kind == "" {
		return e.reply(ctx, in.ChatID, "This message type is not supported. Send text or media.", cancelKeyboard())
	}

	if err := e.messenger.Forward(ctx, e.adminID, in.ChatID, in.MessageID); err != nil {
		return fmt.Errorf("forward to admin: %w", err)
	}
	e.notifyAdmin(ctx, fmt.Sprintf("📨 Message from %s (<code>%d</code>)\n/reply_%d  /user_%d",
		escape(in.DisplayName()), in.ChatID, in.ChatID, in.ChatID))

	if err := e.messages.Log(ctx, in.ChatID, domain.FromUser, in.Payload); err != nil {
		e.logger.Warn("Failed to archive message", zap.Int64("chat_id", in.ChatID), zap.Error(err))
	}
	return e.resetToMenu(ctx, in.ChatID, "✅ Your message was sent to the admin.")
}

func (e *Engine) enterAIChat(ctx context.Context, chatID int64) error {
	err := e.ai.CheckQuota(ctx, chatID)
	var quotaErr *service.QuotaError
	if errors.As(err, &quotaErr) {
		e.alertQuota(ctx, chatID, quotaErr.Used)
		return e.showMenu(ctx, chatID, msgAIQuotaReached)
	}
	if err != nil {
		return err
	}
	if err := e.setState(ctx, chatID, domain.AIChatState{}); err != nil {
		return err
	}
	return e.reply(ctx, chatID, "🤖 Ask me anything. Tap "+TokenBack+" to leave the chat.", backKeyboard())
}

// handleAIChat answers one question and keeps the chat open
func (e *Engine) handleAIChat(ctx context.Context, in Inbound) error {
	text := in.Text()
	if isAbort(text) {
		return e.resetToMenu(ctx, in.ChatID, "You left the AI chat.")
	}
	if text == "" {
		return e.reply(ctx, in.ChatID, msgTextExpected, backKeyboard())
	}

	answer, err := e.ai.Ask(ctx, in.ChatID, text)
	var quotaErr *service.QuotaError
	switch {
	case errors.As(err, &quotaErr):
		e.alertQuota(ctx, in.ChatID, quotaErr.Used)
		return e.resetToMenu(ctx, in.ChatID, msgAIQuotaReached)
	case errors.Is(err, service.ErrAINotConfigured):
		return e.resetToMenu(ctx, in.ChatID, msgAINotConfigured)
	case err != nil:
		return err
	}

	parts := chunkLines(answer, maxMessageLen)
	for i, part := range parts {
		msg := Message{Payload: domain.Payload{Kind: domain.MediaText, Text: part}}
		if i == len(parts)-1 {
			msg.Keyboard = backKeyboard()
		}
		if err := e.messenger.Send(ctx, in.ChatID, msg); err != nil {
			return fmt.Errorf("send answer: %w", err)
		}
	}
	return nil
}

func (e *Engine) alertQuota(ctx context.Context, chatID int64, used int) {
	e.logger.Info("AI quota reached", zap.Int64("chat_id", chatID), zap.Int("used", used))
	e.notifyAdmin(ctx, fmt.Sprintf("🤖 User <code>%d</code> used all free AI questions (%d/%d).\n/user_%d",
		chatID, used, service.FreeQuota, chatID))
}
