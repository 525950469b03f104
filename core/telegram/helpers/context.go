// Package helpers carries per-update log context and sends replies through the dispatcher.
package helpers

import (
	"context"

	"github.com/examscores/scorebot/core/logger"

	tele "gopkg.in/telebot.v4"
)

const (
	keyCtx      = "scorebot.ctx"
	keyMessages = "scorebot.messages"
	keyKeyboard = "scorebot.kb"
)

// BuildContext returns the log context of the current update, creating it on
// first use with the rid and update, user and chat ids.
func BuildContext(c tele.Context) context.Context {
	if ctx, ok := c.Get(keyCtx).(context.Context); ok {
		return ctx
	}
	var userID, chatID int64
	if u := c.Sender(); u != nil {
		userID = u.ID
	}
	if ch := c.Chat(); ch != nil {
		chatID = ch.ID
	}
	updateID := c.Update().ID

	ctx := logger.WithRID(context.Background(), logger.BuildRID(updateID, chatID, userID))
	ctx = logger.WithUpdateMeta(ctx, updateID, userID, chatID)
	ctx = logger.WithLogger(ctx, logger.TG)
	c.Set(keyCtx, ctx)
	return ctx
}

// WithHandler tags the update's log context with the handler name.
func WithHandler(c tele.Context, handler string) context.Context {
	ctx := BuildContext(c)
	if handler == "" || logger.HandlerFrom(ctx) == handler {
		return ctx
	}
	ctx = logger.WithHandler(ctx, handler)
	c.Set(keyCtx, ctx)
	return ctx
}

// Counters reports how many messages were sent for the update and whether any carried a keyboard.
func Counters(c tele.Context) (messages int, keyboard bool) {
	messages, _ = c.Get(keyMessages).(int)
	keyboard, _ = c.Get(keyKeyboard).(bool)
	return messages, keyboard
}

func countSent(c tele.Context, withKeyboard bool) {
	n, _ := c.Get(keyMessages).(int)
	c.Set(keyMessages, n+1)
	if withKeyboard {
		c.Set(keyKeyboard, true)
	}
}
