package conversation

import (
	"context"
	"fmt"
	"strings"

	"vipbot/internal/domain"
)

func (e *Engine) enterVip(ctx context.Context, chatID int64) error {
	rec, err := e.vip.Get(ctx, chatID)
	if err != nil {
		return fmt.Errorf("get vip: %w", err)
	}
	settings, err := e.settings.Get(ctx)
	if err != nil {
		return err
	}

	if rec.ActiveAt(e.now()) {
		text := fmt.Sprintf("💎 Your VIP membership is active until %s.", rec.EndDate.Format(dateLayout))
		if link := settings.Value(domain.SettingVipChannelLink); link != "" {
			text += "\nVIP channel: " + escape(link)
		}
		return e.showMenu(ctx, chatID, text)
	}

	var b strings.Builder
	b.WriteString("💎 <b>VIP membership</b>\n\n")
	b.WriteString("Unlimited AI questions and access to the private channel for one month.\n\n")
	fmt.Fprintf(&b, "Fee: %s\n", orDash(settings.Value(domain.SettingMembershipFee)))
	fmt.Fprintf(&b, "Wallet: <code>%s</code>\n", orDash(settings.Value(domain.SettingWalletAddress)))
	fmt.Fprintf(&b, "Network: %s\n", orDash(settings.Value(domain.SettingWalletNetwork)))
	if rec != nil && !rec.Approved && rec.PaymentReceipt != nil {
		b.WriteString("\n⏳ Your previous receipt is still under review. Sending a new one replaces it.\n")
	}
	b.WriteString("\nAfter paying tap " + BtnSendReceipt + ".")

	if err := e.setState(ctx, chatID, domain.VipWaitingState{}); err != nil {
		return err
	}
	return e.reply(ctx, chatID, b.String(), vipWaitingKeyboard())
}

func (e *Engine) handleVipWaiting(ctx context.Context, in Inbound) error {
	switch in.Text() {
	case TokenBack, TokenCancel:
		return e.resetToMenu(ctx, in.ChatID, msgUseMenu)
	case BtnSendReceipt:
		if err := e.setState(ctx, in.ChatID, domain.VipReceiptState{}); err != nil {
			return err
		}
		return e.reply(ctx, in.ChatID, "🧾 Send a photo of the payment receipt.", backKeyboard())
	}
	return nil
}

// handleVipReceipt stores the receipt and hands it to the admin for review
func (e *Engine) handleVipReceipt(ctx context.Context, in Inbound) error {
	if isAbort(in.Text()) {
		return e.resetToMenu(ctx, in.ChatID, msgUseMenu)
	}
	if in.Payload.Kind != domain.MediaPhoto || in.Payload.FileID == "" {
		return e.reply(ctx, in.ChatID, "Please send the receipt as a photo.", backKeyboard())
	}

	if err := e.vip.SubmitReceipt(ctx, in.ChatID, in.Payload.FileID); err != nil {
		return err
	}
	if err := e.messenger.Forward(ctx, e.adminID, in.ChatID, in.MessageID); err != nil {
		return fmt.Errorf("forward receipt: %w", err)
	}
	e.notifyAdmin(ctx, fmt.Sprintf("🧾 VIP receipt from %s (<code>%d</code>)\n/approve_%d  /reject_%d  /user_%d",
		escape(in.DisplayName()), in.ChatID, in.ChatID, in.ChatID, in.ChatID))

	return e.resetToMenu(ctx, in.ChatID, "✅ Receipt received. You will be notified after review.")
}
