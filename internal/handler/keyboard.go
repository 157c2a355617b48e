package handler

import (
	"vipbot/internal/conversation"

	tele "gopkg.in/telebot.v3"
)

// replyMarkup converts a conversation keyboard, nil keeps the current one
func replyMarkup(kb *conversation.Keyboard) *tele.ReplyMarkup {
	if kb == nil {
		return nil
	}
	if kb.Remove {
		return &tele.ReplyMarkup{RemoveKeyboard: true}
	}

	menu := &tele.ReplyMarkup{
		ResizeKeyboard:  true,
		OneTimeKeyboard: kb.OneTime,
		Placeholder:     kb.Placeholder,
	}
	rows := make([]tele.Row, 0, len(kb.Rows)+1)
	if kb.Contact != "" {
		rows = append(rows, menu.Row(menu.Contact(kb.Contact)))
	}
	for _, labels := range kb.Rows {
		btns := make([]tele.Btn, 0, len(labels))
		for _, label := range labels {
			btns = append(btns, menu.Text(label))
		}
		rows = append(rows, menu.Row(btns...))
	}
	menu.Reply(rows...)
	return menu
}
