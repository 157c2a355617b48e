package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vipbot/internal/domain"

	"go.uber.org/zap"
)

func (e *Engine) showStats(ctx context.Context, chatID int64) error {
	stats, err := e.admin.Stats(ctx)
	if err != nil {
		return err
	}
	return e.showMenu(ctx, chatID, statsReport(stats))
}

func (e *Engine) exportUsers(ctx context.Context, chatID int64) error {
	data, err := e.admin.ExportUsers(ctx)
	if err != nil {
		return err
	}
	msg := Message{
		Payload:  domain.Payload{Kind: domain.MediaDocument, Text: "📤 Users export"},
		Upload:   &Upload{Name: fmt.Sprintf("users_%s.xlsx", e.now().Format(dateLayout)), Data: data},
		Keyboard: adminKeyboard(),
	}
	if err := e.messenger.Send(ctx, chatID, msg); err != nil {
		return fmt.Errorf("send export: %w", err)
	}
	return nil
}

// Settings

func (e *Engine) enterSettingsMenu(ctx context.Context, chatID int64, title string) error {
	settings, err := e.settings.Get(ctx)
	if err != nil {
		return err
	}
	if err := e.setState(ctx, chatID, domain.SettingsMenuState{}); err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n\n")
	for _, f := range domain.ChannelSettings {
		fmt.Fprintf(&b, "%s: %s\n", settingLabels[f], orDash(settings.Value(f)))
	}
	return e.reply(ctx, chatID, b.String(), settingsKeyboard())
}

func (e *Engine) handleSettingsMenu(ctx context.Context, in Inbound) error {
	text := in.Text()
	if isAbort(text) {
		return e.resetToMenu(ctx, in.ChatID, msgUseMenu)
	}
	field, ok := settingFieldByLabel(text)
	if !ok {
		return nil
	}

	settings, err := e.settings.Get(ctx)
	if err != nil {
		return err
	}
	if err := e.setState(ctx, in.ChatID, domain.SetSettingState{Field: field}); err != nil {
		return err
	}
	return e.reply(ctx, in.ChatID, fmt.Sprintf("%s\nCurrent value: %s\n\nSend the new value.",
		settingLabels[field], orDash(settings.Value(field))), cancelKeyboard())
}

// handleSetSetting writes the value verbatim and re-enters the settings menu
func (e *Engine) handleSetSetting(ctx context.Context, in Inbound, st domain.SetSettingState) error {
	if isAbort(in.Text()) {
		return e.enterSettingsMenu(ctx, in.ChatID, msgCancelled)
	}
	if !in.IsText() {
		return e.reply(ctx, in.ChatID, msgTextExpected, cancelKeyboard())
	}

	if err := e.settings.Set(ctx, st.Field, in.Payload.Text); err != nil {
		return err
	}
	return e.enterSettingsMenu(ctx, in.ChatID, fmt.Sprintf("✅ %s updated.", settingLabels[st.Field]))
}

// AI settings

func (e *Engine) enterAIMenu(ctx context.Context, chatID int64, title string) error {
	settings, err := e.settings.Get(ctx)
	if err != nil {
		return err
	}
	if err := e.setState(ctx, chatID, domain.AIMenuState{}); err != nil {
		return err
	}

	token := "not set"
	if strings.TrimSpace(settings.Value(domain.SettingAIToken)) != "" {
		token = "set"
	}
	prompt := "not set"
	if p := settings.Value(domain.SettingPrompt); p != "" {
		prompt = fmt.Sprintf("%d characters", len([]rune(p)))
	}
	return e.reply(ctx, chatID, fmt.Sprintf("%s\n\nToken: %s\nPrompt: %s", title, token, prompt), aiMenuKeyboard())
}

func (e *Engine) handleAIMenu(ctx context.Context, in Inbound) error {
	switch in.Text() {
	case TokenBack, TokenCancel:
		return e.resetToMenu(ctx, in.ChatID, msgUseMenu)
	case BtnSetAIToken:
		if err := e.setState(ctx, in.ChatID, domain.SetAITokenState{}); err != nil {
			return err
		}
		return e.reply(ctx, in.ChatID, "🔑 Send the new AI API key.", cancelKeyboard())
	case BtnUploadPrompt:
		if err := e.setState(ctx, in.ChatID, domain.UploadPromptState{}); err != nil {
			return err
		}
		return e.reply(ctx, in.ChatID, "📄 Send the system prompt as a .txt document.", cancelKeyboard())
	case BtnDeletePrompt:
		if err := e.setState(ctx, in.ChatID, domain.ConfirmDeletePromptState{}); err != nil {
			return err
		}
		return e.reply(ctx, in.ChatID, fmt.Sprintf(
			"⚠️ Type <code>%s</code> to delete the prompt. Anything else cancels.", ConfirmDeletePromptPhrase), &Keyboard{Remove: true})
	}
	return nil
}

func (e *Engine) handleSetAIToken(ctx context.Context, in Inbound) error {
	text := in.Text()
	if isAbort(text) {
		return e.enterAIMenu(ctx, in.ChatID, msgCancelled)
	}
	if text == "" {
		return e.reply(ctx, in.ChatID, msgTextExpected, cancelKeyboard())
	}

	if err := e.settings.SetAIToken(ctx, text); err != nil {
		return err
	}
	return e.enterAIMenu(ctx, in.ChatID, "✅ AI token updated.")
}

// handleUploadPrompt reads the prompt from an uploaded text document
func (e *Engine) handleUploadPrompt(ctx context.Context, in Inbound) error {
	if isAbort(in.Text()) {
		return e.enterAIMenu(ctx, in.ChatID, msgCancelled)
	}
	if in.Payload.Kind != domain.MediaDocument || in.Payload.FileID == "" {
		return e.reply(ctx, in.ChatID, "Please send the prompt as a .txt document.", cancelKeyboard())
	}

	text, err := e.messenger.FetchFileText(ctx, in.Payload.FileID)
	if errors.Is(err, ErrFileTooLarge) || errors.Is(err, ErrNotText) {
		return e.reply(ctx, in.ChatID, msgPromptFileRejected, cancelKeyboard())
	}
	if err != nil {
		return fmt.Errorf("fetch prompt file: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return e.reply(ctx, in.ChatID, "The document is empty. Send another one.", cancelKeyboard())
	}

	if err := e.settings.SetPrompt(ctx, text); err != nil {
		return err
	}
	return e.enterAIMenu(ctx, in.ChatID, fmt.Sprintf("✅ Prompt updated (%d characters).", len([]rune(text))))
}

func (e *Engine) handleConfirmDeletePrompt(ctx context.Context, in Inbound) error {
	if in.Text() != ConfirmDeletePromptPhrase {
		return e.enterAIMenu(ctx, in.ChatID, msgCancelled)
	}
	if err := e.settings.ClearPrompt(ctx); err != nil {
		return err
	}
	return e.enterAIMenu(ctx, in.ChatID, "🗑 Prompt deleted.")
}

// Database reset

func (e *Engine) enterConfirmReset(ctx context.Context, chatID int64) error {
	if err := e.setState(ctx, chatID, domain.ConfirmResetState{}); err != nil {
		return err
	}
	return e.reply(ctx, chatID, fmt.Sprintf(
		"⚠️ This deletes ALL data. Type <code>%s</code> to continue. Anything else cancels.", ConfirmResetPhrase), &Keyboard{Remove: true})
}

func (e *Engine) handleConfirmReset(ctx context.Context, in Inbound) error {
	if in.Text() != ConfirmResetPhrase {
		return e.resetToMenu(ctx, in.ChatID, msgCancelled)
	}
	// the state row goes away with the tables when sessions are persisted
	if err := e.sessions.Delete(ctx, in.ChatID); err != nil {
		return fmt.Errorf("clear state: %w", err)
	}
	if err := e.admin.ResetDatabase(ctx); err != nil {
		return err
	}
	e.logger.Warn("Database reset by admin", zap.Int64("chat_id", in.ChatID))
	return e.showMenu(ctx, in.ChatID, "🗑 Database was reset.")
}

// Broadcast

func (e *Engine) enterBroadcastMenu(ctx context.Context, chatID int64) error {
	if err := e.setState(ctx, chatID, domain.BroadcastMenuState{}); err != nil {
		return err
	}
	return e.reply(ctx, chatID, "📢 Who should receive the broadcast?", broadcastKeyboard())
}

func (e *Engine) handleBroadcastMenu(ctx context.Context, in Inbound) error {
	text := in.Text()
	if isAbort(text) {
		return e.resetToMenu(ctx, in.ChatID, msgUseMenu)
	}
	target, ok := audienceLabels[text]
	if !ok {
		return nil
	}
	if err := e.setState(ctx, in.ChatID, domain.BroadcastState{Target: target}); err != nil {
		return err
	}
	return e.reply(ctx, in.ChatID, "Send the message to broadcast. Text, photo, video, document or animation.", cancelKeyboard())
}

// handleBroadcast is one-shot: the state is cleared before the fan-out starts
func (e *Engine) handleBroadcast(ctx context.Context, in Inbound, st domain.BroadcastState) error {
	if isAbort(in.Text()) {
		return e.resetToMenu(ctx, in.ChatID, msgCancelled)
	}
	if err := e.sessions.Delete(ctx, in.ChatID); err != nil {
		return fmt.Errorf("clear state: %w", err)
	}
	if in.Payload.Kind == "" {
		return e.showMenu(ctx, in.ChatID, "This message type cannot be broadcast.")
	}

	b, err := e.broadcasts.Send(ctx, st.Target, in.Payload)
	if err != nil {
		return err
	}
	return e.showMenu(ctx, in.ChatID, broadcastReport(b))
}

// Reply to user

func (e *Engine) enterReply(ctx context.Context, chatID, userID int64) error {
	if err := e.setState(ctx, chatID, domain.ReplyState{UserID: userID}); err != nil {
		return err
	}
	return e.reply(ctx, chatID, fmt.Sprintf("✍️ Send your reply to <code>%d</code>.", userID), cancelKeyboard())
}

// handleReply delivers the admin answer as a fresh message to the user
func (e *Engine) handleReply(ctx context.Context, in Inbound, st domain.ReplyState) error {
	if isAbort(in.Text()) {
		return e.resetToMenu(ctx, in.ChatID, msgCancelled)
	}
	if in.Payload.Kind == "" {
		return e.reply(ctx, in.ChatID, "This message type is not supported. Send text or media.", cancelKeyboard())
	}

	msg := Message{Payload: in.Payload}
	if in.IsText() {
		msg = textMessage("📩 <b>Message from admin</b>\n\n"+escape(in.Payload.Text), nil)
	}
	if err := e.messenger.Send(ctx, st.UserID, msg); err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	if err := e.messages.Log(ctx, st.UserID, domain.FromAdmin, in.Payload); err != nil {
		e.logger.Warn("Failed to archive message", zap.Int64("chat_id", st.UserID), zap.Error(err))
	}
	return e.resetToMenu(ctx, in.ChatID, "✅ Reply delivered.")
}
