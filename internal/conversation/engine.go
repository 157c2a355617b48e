package conversation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vipbot/internal/domain"
	"vipbot/internal/service"
	"vipbot/internal/session"

	"go.uber.org/zap"
)

// Deps bundles the collaborators of the engine
type Deps struct {
	Messenger  Messenger
	Sessions   session.Store
	Locker     *session.Locker
	Users      *service.UserService
	Vip        *service.VipService
	Settings   *service.SettingsService
	AI         *service.AIService
	Broadcasts *service.BroadcastService
	Messages   *service.MessageService
	Admin      *service.AdminService
	AdminID    int64
	Logger     *zap.Logger
	Now        func() time.Time
}

// Engine routes every inbound message of a chat through its conversation state
type Engine struct {
	messenger  Messenger
	sessions   session.Store
	locker     *session.Locker
	users      *service.UserService
	vip        *service.VipService
	settings   *service.SettingsService
	ai         *service.AIService
	broadcasts *service.BroadcastService
	messages   *service.MessageService
	admin      *service.AdminService
	adminID    int64
	logger     *zap.Logger
	now        func() time.Time
}

// NewEngine creates a new conversation engine
func NewEngine(d Deps) *Engine {
	locker := d.Locker
	if locker == nil {
		locker = session.NewLocker()
	}
	now := d.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		messenger:  d.Messenger,
		sessions:   d.Sessions,
		locker:     locker,
		users:      d.Users,
		vip:        d.Vip,
		settings:   d.Settings,
		ai:         d.AI,
		broadcasts: d.Broadcasts,
		messages:   d.Messages,
		admin:      d.Admin,
		adminID:    d.AdminID,
		logger:     d.Logger,
		now:        now,
	}
}

// Handle processes one inbound message. Messages of the same chat are handled
// one at a time. Any failure clears the chat state and the user gets a generic notice.
func (e *Engine) Handle(ctx context.Context, in Inbound) {
	e.run(ctx, in, e.locker.Reserve(in.ChatID))
}

// Dispatch reserves the chat's turn before returning and handles the message
// in the background. Messages of one chat are handled in Dispatch order.
func (e *Engine) Dispatch(ctx context.Context, in Inbound) {
	ticket := e.locker.Reserve(in.ChatID)
	go e.run(ctx, in, ticket)
}

func (e *Engine) run(ctx context.Context, in Inbound, ticket *session.Ticket) {
	unlock := ticket.Wait()
	defer unlock()

	if err := e.handle(ctx, in); err != nil {
		e.fail(ctx, in.ChatID, err)
	}
}

func (e *Engine) handle(ctx context.Context, in Inbound) error {
	text := in.Text()

	if e.isAdmin(in.ChatID) {
		if cmd, ok := parseCommand(text); ok {
			return e.runCommand(ctx, in, cmd)
		}
	}

	if text == "/start" {
		return e.start(ctx, in)
	}

	st, err := e.sessions.Get(ctx, in.ChatID)
	if errors.Is(err, domain.ErrUnknownState) {
		e.logger.Error("Dropping unknown conversation state",
			zap.Int64("chat_id", in.ChatID),
			zap.Error(err),
		)
		if err := e.sessions.Delete(ctx, in.ChatID); err != nil {
			return fmt.Errorf("clear state: %w", err)
		}
		return e.showMenu(ctx, in.ChatID, msgUseMenu)
	}
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	switch s := st.(type) {
	case nil:
		return e.handleMenu(ctx, in)
	case domain.RegisterState:
		return e.handleRegister(ctx, in, s)
	case domain.EditMenuState:
		return e.handleEditMenu(ctx, in)
	case domain.EditFieldState:
		return e.handleEditField(ctx, in, s)
	case domain.VipWaitingState:
		return e.handleVipWaiting(ctx, in)
	case domain.VipReceiptState:
		return e.handleVipReceipt(ctx, in)
	case domain.AIChatState:
		return e.handleAIChat(ctx, in)
	case domain.ContactAdminState:
		return e.handleContactAdmin(ctx, in)
	}

	if !e.isAdmin(in.ChatID) {
		// admin flows are never entered by regular users
		e.logger.Error("Admin state held by non-admin chat",
			zap.Int64("chat_id", in.ChatID),
			zap.String("kind", string(st.Kind())),
		)
		return e.resetToMenu(ctx, in.ChatID, msgUseMenu)
	}

	switch s := st.(type) {
	case domain.SettingsMenuState:
		return e.handleSettingsMenu(ctx, in)
	case domain.SetSettingState:
		return e.handleSetSetting(ctx, in, s)
	case domain.AIMenuState:
		return e.handleAIMenu(ctx, in)
	case domain.SetAITokenState:
		return e.handleSetAIToken(ctx, in)
	case domain.UploadPromptState:
		return e.handleUploadPrompt(ctx, in)
	case domain.BroadcastMenuState:
		return e.handleBroadcastMenu(ctx, in)
	case domain.BroadcastState:
		return e.handleBroadcast(ctx, in, s)
	case domain.ReplyState:
		return e.handleReply(ctx, in, s)
	case domain.ConfirmResetState:
		return e.handleConfirmReset(ctx, in)
	case domain.ConfirmDeletePromptState:
		return e.handleConfirmDeletePrompt(ctx, in)
	}

	e.logger.Error("Unhandled conversation state",
		zap.Int64("chat_id", in.ChatID),
		zap.String("kind", string(st.Kind())),
	)
	return e.resetToMenu(ctx, in.ChatID, msgUseMenu)
}

func (e *Engine) start(ctx context.Context, in Inbound) error {
	e.logger.Info("User started bot",
		zap.Int64("chat_id", in.ChatID),
		zap.String("username", in.Username),
	)
	if err := e.sessions.Delete(ctx, in.ChatID); err != nil {
		return fmt.Errorf("clear state: %w", err)
	}

	greeting := fmt.Sprintf("👋 Hello, %s!\n\nChoose an option from the menu below.", escape(in.DisplayName()))
	if e.isAdmin(in.ChatID) {
		greeting = "👋 Welcome to the admin panel."
	}
	return e.showMenu(ctx, in.ChatID, greeting)
}

// fail is the single error boundary of the engine
func (e *Engine) fail(ctx context.Context, chatID int64, err error) {
	e.logger.Error("Conversation handler failed",
		zap.Int64("chat_id", chatID),
		zap.Error(err),
	)
	if ctx.Err() != nil {
		ctx = context.WithoutCancel(ctx)
	}
	if err := e.sessions.Delete(ctx, chatID); err != nil {
		e.logger.Error("Failed to clear state", zap.Int64("chat_id", chatID), zap.Error(err))
	}
	if err := e.messenger.Send(ctx, chatID, textMessage(msgGenericError, e.menuKeyboard(chatID))); err != nil {
		e.logger.Warn("Failed to send error notice", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (e *Engine) isAdmin(chatID int64) bool {
	return chatID == e.adminID
}

func (e *Engine) menuKeyboard(chatID int64) *Keyboard {
	if e.isAdmin(chatID) {
		return adminKeyboard()
	}
	return mainKeyboard()
}

func (e *Engine) reply(ctx context.Context, chatID int64, text string, kb *Keyboard) error {
	if err := e.messenger.Send(ctx, chatID, textMessage(text, kb)); err != nil {
		return fmt.Errorf("send to %d: %w", chatID, err)
	}
	return nil
}

func (e *Engine) showMenu(ctx context.Context, chatID int64, text string) error {
	return e.reply(ctx, chatID, text, e.menuKeyboard(chatID))
}

func (e *Engine) setState(ctx context.Context, chatID int64, st domain.State) error {
	if err := e.sessions.Set(ctx, chatID, st); err != nil {
		return fmt.Errorf("save state %s: %w", st.Kind(), err)
	}
	return nil
}

// resetToMenu clears the state and shows the top-level menu
func (e *Engine) resetToMenu(ctx context.Context, chatID int64, text string) error {
	if err := e.sessions.Delete(ctx, chatID); err != nil {
		return fmt.Errorf("clear state: %w", err)
	}
	return e.showMenu(ctx, chatID, text)
}

// notifyAdmin is best effort: the user-facing flow does not depend on it
func (e *Engine) notifyAdmin(ctx context.Context, text string) {
	if err := e.messenger.Send(ctx, e.adminID, textMessage(text, nil)); err != nil {
		e.logger.Warn("Failed to notify admin", zap.Error(err))
	}
}
