package conversation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"vipbot/internal/domain"

	"go.uber.org/zap"
)

// Admin command verbs. Commands look like /<verb>_<id>.
const (
	cmdUser      = "user"
	cmdReply     = "reply"
	cmdArchive   = "archive"
	cmdApprove   = "approve"
	cmdReject    = "reject"
	cmdBroadcast = "bc"
)

type command struct {
	verb string
	id   int64
}

// parseCommand recognises the admin id commands. An optional @botname suffix is ignored.
func parseCommand(text string) (command, bool) {
	if !strings.HasPrefix(text, "/") || strings.ContainsAny(text, " \n") {
		return command{}, false
	}
	body := text[1:]
	if at := strings.IndexByte(body, '@'); at >= 0 {
		body = body[:at]
	}
	verb, rawID, ok := strings.Cut(body, "_")
	if !ok {
		return command{}, false
	}
	switch verb {
	case cmdUser, cmdReply, cmdArchive, cmdApprove, cmdReject, cmdBroadcast:
	default:
		return command{}, false
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return command{}, false
	}
	return command{verb: verb, id: id}, true
}

// runCommand executes an admin command outside of the conversation state.
// Only /reply_ opens a flow; the others leave any active state untouched.
func (e *Engine) runCommand(ctx context.Context, in Inbound, cmd command) error {
	e.logger.Info("Admin command",
		zap.String("verb", cmd.verb),
		zap.Int64("id", cmd.id),
	)

	switch cmd.verb {
	case cmdUser:
		return e.inspectUser(ctx, in.ChatID, cmd.id)
	case cmdReply:
		return e.enterReply(ctx, in.ChatID, cmd.id)
	case cmdArchive:
		return e.showArchive(ctx, in.ChatID, cmd.id)
	case cmdApprove:
		return e.approveVip(ctx, in.ChatID, cmd.id)
	case cmdReject:
		return e.rejectVip(ctx, in.ChatID, cmd.id)
	case cmdBroadcast:
		return e.showBroadcast(ctx, in.ChatID, cmd.id)
	}
	return fmt.Errorf("unknown command %q", cmd.verb)
}

func (e *Engine) inspectUser(ctx context.Context, chatID, userID int64) error {
	user, err := e.users.Get(ctx, userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return e.reply(ctx, chatID, fmt.Sprintf("User <code>%d</code> not found.", userID), nil)
	}
	if err != nil {
		return err
	}
	rec, err := e.vip.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("get vip: %w", err)
	}
	return e.reply(ctx, chatID, userReport("👤 User", user, rec, e.now()), nil)
}

func (e *Engine) showArchive(ctx context.Context, chatID, userID int64) error {
	archive, err := e.messages.Archive(ctx, userID)
	if err != nil {
		return err
	}
	for _, part := range archiveReport(userID, archive) {
		if err := e.reply(ctx, chatID, part, nil); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) approveVip(ctx context.Context, chatID, userID int64) error {
	rec, err := e.vip.Approve(ctx, userID)
	if errors.Is(err, domain.ErrVipNotFound) {
		return e.reply(ctx, chatID, fmt.Sprintf("No VIP request from <code>%d</code>.", userID), nil)
	}
	if err != nil {
		return err
	}
	settings, err := e.settings.Get(ctx)
	if err != nil {
		return err
	}

	until := rec.EndDate.Format(dateLayout)
	text := fmt.Sprintf("🎉 Your VIP membership is approved until %s.", until)
	if link := settings.Value(domain.SettingVipChannelLink); link != "" {
		text += "\nVIP channel: " + escape(link)
	}
	status := "User notified."
	if err := e.messenger.Send(ctx, userID, textMessage(text, nil)); err != nil {
		e.logger.Warn("Failed to notify user", zap.Int64("chat_id", userID), zap.Error(err))
		status = "⚠️ User could not be notified."
	}
	return e.reply(ctx, chatID, fmt.Sprintf("✅ VIP approved for <code>%d</code> until %s. %s", userID, until, status), nil)
}

func (e *Engine) rejectVip(ctx context.Context, chatID, userID int64) error {
	err := e.vip.Reject(ctx, userID)
	if errors.Is(err, domain.ErrVipNotFound) {
		return e.reply(ctx, chatID, fmt.Sprintf("No VIP request from <code>%d</code>.", userID), nil)
	}
	if err != nil {
		return err
	}

	status := "User notified."
	if err := e.messenger.Send(ctx, userID, textMessage(
		"❌ Your VIP request was rejected. Contact the admin if you think this is a mistake.", nil)); err != nil {
		e.logger.Warn("Failed to notify user", zap.Int64("chat_id", userID), zap.Error(err))
		status = "⚠️ User could not be notified."
	}
	return e.reply(ctx, chatID, fmt.Sprintf("❌ VIP rejected for <code>%d</code>. %s", userID, status), nil)
}

func (e *Engine) showBroadcast(ctx context.Context, chatID, id int64) error {
	b, err := e.broadcasts.Get(ctx, id)
	if errors.Is(err, domain.ErrBroadcastNotFound) {
		return e.reply(ctx, chatID, fmt.Sprintf("Broadcast #%d not found.", id), nil)
	}
	if err != nil {
		return err
	}
	if err := e.messenger.Send(ctx, chatID, Message{Payload: b.Payload()}); err != nil {
		return fmt.Errorf("send broadcast content: %w", err)
	}
	return e.reply(ctx, chatID, broadcastReport(b), nil)
}
