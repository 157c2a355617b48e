package conversation

import (
	"context"
	"fmt"

	"vipbot/internal/domain"
	"vipbot/internal/service"
)

func (e *Engine) enterEditMenu(ctx context.Context, chatID int64, text string) error {
	if err := e.setState(ctx, chatID, domain.EditMenuState{}); err != nil {
		return err
	}
	return e.reply(ctx, chatID, text, editKeyboard())
}

func (e *Engine) handleEditMenu(ctx context.Context, in Inbound) error {
	text := in.Text()
	if isAbort(text) {
		return e.resetToMenu(ctx, in.ChatID, msgUseMenu)
	}
	field, ok := profileFieldByLabel(text)
	if !ok {
		return nil
	}

	user, err := e.users.Get(ctx, in.ChatID)
	if err != nil {
		return err
	}
	if err := e.setState(ctx, in.ChatID, domain.EditFieldState{Field: field}); err != nil {
		return err
	}

	kb := cancelKeyboard()
	if field == domain.FieldPhone {
		kb = phoneKeyboard()
	}
	return e.reply(ctx, in.ChatID, fmt.Sprintf("Current %s: %s\n\n%s",
		fieldLabels[field], orDash(user.Profile().Value(field)), fieldQuestions[field]), kb)
}

// handleEditField saves one field and returns to the edit menu
func (e *Engine) handleEditField(ctx context.Context, in Inbound, st domain.EditFieldState) error {
	text := in.Text()
	if isAbort(text) {
		return e.enterEditMenu(ctx, in.ChatID, msgCancelled)
	}
	if !st.Field.Valid() {
		return fmt.Errorf("edit of unknown field %q", st.Field)
	}

	answer, ok := in.answer(st.Field)
	if !ok {
		return e.reply(ctx, in.ChatID, msgTextExpected, cancelKeyboard())
	}

	user, err := e.users.UpdateField(ctx, in.ChatID, st.Field, answer)
	if err != nil {
		return err
	}
	rec, err := e.vip.Get(ctx, in.ChatID)
	if err != nil {
		return fmt.Errorf("get vip: %w", err)
	}
	e.notifyAdmin(ctx, userReport(fmt.Sprintf("✏️ Profile updated: %s", fieldLabels[st.Field]), user, rec, e.now()))

	return e.enterEditMenu(ctx, in.ChatID, fmt.Sprintf(
		"✅ %s updated. +%d points, score %d.", fieldLabels[st.Field], service.EditBonus, user.Score))
}
