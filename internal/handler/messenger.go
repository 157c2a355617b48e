package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"

	"vipbot/internal/conversation"
	"vipbot/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// MaxTextFileSize limits documents read as text (system prompt uploads)
const MaxTextFileSize = 1 << 20

// TeleMessenger sends messages through the bot API
type TeleMessenger struct {
	bot    *tele.Bot
	logger *zap.Logger
}

// NewTeleMessenger creates a new messenger
func NewTeleMessenger(bot *tele.Bot, logger *zap.Logger) *TeleMessenger {
	return &TeleMessenger{
		bot:    bot,
		logger: logger,
	}
}

// Send delivers one message to a chat
func (m *TeleMessenger) Send(ctx context.Context, chatID int64, msg conversation.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	what, err := content(msg)
	if err != nil {
		return err
	}
	if _, err := m.bot.Send(tele.ChatID(chatID), what, sendOptions(msg)); err != nil {
		return fmt.Errorf("send to %d: %w", chatID, err)
	}
	return nil
}

// Deliver sends a broadcast payload
func (m *TeleMessenger) Deliver(ctx context.Context, chatID int64, payload domain.Payload) error {
	return m.Send(ctx, chatID, conversation.Message{Payload: payload})
}

// Forward relays the original message
func (m *TeleMessenger) Forward(ctx context.Context, to, from int64, messageID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := &tele.StoredMessage{MessageID: strconv.Itoa(messageID), ChatID: from}
	if _, err := m.bot.Forward(tele.ChatID(to), msg); err != nil {
		return fmt.Errorf("forward %d from %d: %w", messageID, from, err)
	}
	return nil
}

// FetchFileText downloads a small uploaded document and returns its text
func (m *TeleMessenger) FetchFileText(ctx context.Context, fileID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	file, err := m.bot.FileByID(fileID)
	if err != nil {
		return "", fmt.Errorf("get file: %w", err)
	}
	if file.FileSize > MaxTextFileSize {
		return "", conversation.ErrFileTooLarge
	}

	body, err := m.bot.File(&file)
	if err != nil {
		return "", fmt.Errorf("download file: %w", err)
	}
	defer body.Close()

	return readText(body)
}

func readText(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxTextFileSize+1))
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	if len(data) > MaxTextFileSize {
		return "", conversation.ErrFileTooLarge
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return "", conversation.ErrNotText
	}
	return string(data), nil
}

func content(msg conversation.Message) (interface{}, error) {
	p := msg.Payload
	if msg.Upload != nil {
		return &tele.Document{
			File:     tele.FromReader(bytes.NewReader(msg.Upload.Data)),
			FileName: msg.Upload.Name,
			Caption:  p.Text,
		}, nil
	}

	file := tele.File{FileID: p.FileID}
	switch p.Kind {
	case domain.MediaText, "":
		if p.Text == "" {
			return nil, errors.New("empty text message")
		}
		return p.Text, nil
	case domain.MediaPhoto:
		return &tele.Photo{File: file, Caption: p.Text}, nil
	case domain.MediaVideo:
		return &tele.Video{File: file, Caption: p.Text}, nil
	case domain.MediaDocument:
		return &tele.Document{File: file, Caption: p.Text}, nil
	case domain.MediaAnimation:
		return &tele.Animation{File: file, Caption: p.Text}, nil
	}
	return nil, fmt.Errorf("unsupported media kind %q", p.Kind)
}

func sendOptions(msg conversation.Message) *tele.SendOptions {
	opts := &tele.SendOptions{ReplyMarkup: replyMarkup(msg.Keyboard)}
	if msg.HTML {
		opts.ParseMode = tele.ModeHTML
	}
	return opts
}
