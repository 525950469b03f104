package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/examscores/scorebot/core/logger"
	"github.com/examscores/scorebot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var dispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher routes helper sends through d; nil makes them synchronous.
func SetDispatcher(d *sender.Dispatcher) {
	dispatcher.Store(d)
}

// SendText sends plain text to the current chat.
func SendText(c tele.Context, text string) error {
	return send(c, text, nil)
}

// SendWithMarkup sends plain text with a reply markup; a nil markup leaves the keyboard alone.
func SendWithMarkup(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	return send(c, text, markup)
}

func send(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	run := func() error { return c.Send(text) }
	if markup != nil {
		run = func() error { return c.Send(text, &tele.SendOptions{ReplyMarkup: markup}) }
	}
	countSent(c, markup != nil)

	d := dispatcher.Load()
	if d == nil {
		return run()
	}
	ctx := BuildContext(c)
	err := d.Enqueue(ctx, recipient(c), "send.text", "sendMessage", run)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sender.ErrQueueFull), errors.Is(err, sender.ErrQueueClosed):
		logger.Warn(ctx, "tg.sender", "queue.fallback", slog.String("err", err.Error()))
		return run()
	default:
		return err
	}
}

func recipient(c tele.Context) int64 {
	if chat := c.Chat(); chat != nil {
		return chat.ID
	}
	if user := c.Sender(); user != nil {
		return user.ID
	}
	return 0
}
