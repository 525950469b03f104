package router

import (
	tg "github.com/examscores/scorebot/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// FSM owns free text while a user is in the middle of a dialog.
type FSM interface {
	InProgress(userID int64) bool
	ManagerHandler(c tele.Context) error
}

// TextOptions sets the handlers for updates nothing else claims.
type TextOptions struct {
	UnknownText     tele.HandlerFunc
	UnknownDocument tele.HandlerFunc
}

// TextRoutes routes plain text to the FSM while the sender is mid-dialog,
// then to a command typed as text (aliases, @bot suffixes), then to the
// registry fallback. Admin commands are only reachable through their own
// route. Documents only reach the FSM.
func TextRoutes(fsm FSM, reg *tg.Registry, opts TextOptions) []tg.Route {
	inDialog := func(c tele.Context) bool {
		u := c.Sender()
		return fsm != nil && u != nil && fsm.InProgress(u.ID)
	}

	onText := func(c tele.Context) error {
		if inDialog(c) {
			return handled(c, "fsm", fsm.ManagerHandler)
		}
		if reg != nil {
			if name, cmd, ok := reg.LookupCommand(c.Text()); ok && !cmd.AdminOnly {
				return handled(c, handlerName(name), cmd.Handler)
			}
			if fb := reg.TextFallback(); fb != nil {
				return handled(c, "fallback", fb)
			}
		}
		if opts.UnknownText != nil {
			return handled(c, "unknown_text", opts.UnknownText)
		}
		return nil
	}

	onDocument := func(c tele.Context) error {
		if inDialog(c) {
			return handled(c, "fsm_document", fsm.ManagerHandler)
		}
		if opts.UnknownDocument != nil {
			return handled(c, "unexpected_document", opts.UnknownDocument)
		}
		return nil
	}

	return []tg.Route{
		{Endpoint: tele.OnText, Handler: onText},
		{Endpoint: tele.OnDocument, Handler: onDocument},
	}
}
