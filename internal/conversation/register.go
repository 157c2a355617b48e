package conversation

import (
	"context"
	"fmt"

	"vipbot/internal/domain"
	"vipbot/internal/service"
)

func (e *Engine) startRegistration(ctx context.Context, chatID int64) error {
	if err := e.setState(ctx, chatID, domain.RegisterState{}); err != nil {
		return err
	}
	return e.askRegistration(ctx, chatID, 0)
}

func (e *Engine) askRegistration(ctx context.Context, chatID int64, step int) error {
	field := domain.ProfileFields[step]
	text := fmt.Sprintf("📝 Step %d/%d\n%s", step+1, len(domain.ProfileFields), fieldQuestions[field])
	kb := cancelKeyboard()
	if field == domain.FieldPhone {
		kb = phoneKeyboard()
	}
	return e.reply(ctx, chatID, text, kb)
}

// handleRegister stores one answer and advances the wizard.
// The profile is written only after the last answer.
func (e *Engine) handleRegister(ctx context.Context, in Inbound, st domain.RegisterState) error {
	text := in.Text()
	if isAbort(text) {
		return e.resetToMenu(ctx, in.ChatID, "Registration cancelled.")
	}
	if st.Step < 0 || st.Step >= len(domain.ProfileFields) {
		return fmt.Errorf("registration step %d out of range", st.Step)
	}

	field := domain.ProfileFields[st.Step]
	answer, ok := in.answer(field)
	if !ok {
		if err := e.reply(ctx, in.ChatID, msgTextExpected, nil); err != nil {
			return err
		}
		return e.askRegistration(ctx, in.ChatID, st.Step)
	}

	st.Profile.Set(field, answer)
	st.Step++
	if st.Step < len(domain.ProfileFields) {
		if err := e.setState(ctx, in.ChatID, st); err != nil {
			return err
		}
		return e.askRegistration(ctx, in.ChatID, st.Step)
	}

	user, err := e.users.CompleteRegistration(ctx, in.ChatID, st.Profile)
	if err != nil {
		return err
	}
	rec, err := e.vip.Get(ctx, in.ChatID)
	if err != nil {
		return fmt.Errorf("get vip: %w", err)
	}
	e.notifyAdmin(ctx, userReport("🆕 New registration", user, rec, e.now()))

	return e.resetToMenu(ctx, in.ChatID, fmt.Sprintf(
		"✅ Registration complete! You earned %d points.\nScore: %d (level %d)",
		service.RegistrationBonus, user.Score, user.Level(),
	))
}
