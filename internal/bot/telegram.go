package bot

import (
	"context"
	"fmt"

	coreconfig "github.com/examscores/scorebot/core/config"
	tg "github.com/examscores/scorebot/core/telegram"
	"github.com/examscores/scorebot/core/telegram/commands"
	tghelpers "github.com/examscores/scorebot/core/telegram/helpers"
	"github.com/examscores/scorebot/core/telegram/keyboard"
	"github.com/examscores/scorebot/core/telegram/router"
	"github.com/examscores/scorebot/internal/domain"

	tele "gopkg.in/telebot.v4"
)

const (
	textAdminOnly   = "This command is for the bot admin only."
	textSlowDown    = "Too many messages, slow down a little."
	textNoDocuments = "I only understand text messages."
)

// App runs the conversation on Telegram.
type App struct {
	cfg  *coreconfig.Config
	conv *Conversation
}

// NewApp wires a conversation over api for the bot described by cfg.
func NewApp(cfg *coreconfig.Config, api API) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bot: nil config")
	}
	if api == nil {
		return nil, fmt.Errorf("bot: nil api client")
	}
	return &App{cfg: cfg, conv: NewConversation(api, nil)}, nil
}

// Run serves updates until ctx is done.
func (a *App) Run(ctx context.Context) error {
	reg := a.Registry()
	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID:       a.cfg.Telegram.AdminID,
		OnAdminReject: a.text(textAdminOnly),
	})
	routes = append(routes, router.TextRoutes(a, reg, router.TextOptions{
		UnknownDocument: a.text(textNoDocuments),
	})...)

	return tg.RunTelegram(ctx, tg.RunOptions{
		Config:   a.cfg,
		Registry: reg,
		Middlewares: tg.DefaultMiddlewares(a.cfg, tg.MiddlewareOptions{
			OnLimited: a.text(textSlowDown),
			Lanes:     a.conv.Sessions().Lanes(),
		}),
		Routes: routes,
	})
}

// Registry declares the bot commands.
func (a *App) Registry() *tg.Registry {
	reg := tg.NewRegistry()
	reg.RegisterCommand("/start", commands.Command{
		Description: "Show the main menu",
		Order:       0,
		Handler:     a.userReply(a.conv.Start),
	})
	reg.RegisterCommand("/register", commands.Command{
		Description: "Register a student",
		Order:       1,
		Handler:     a.userReply(a.conv.Register),
	})
	reg.RegisterCommand("/enter_scores", commands.Command{
		Description: "Enter scores",
		Order:       2,
		Handler:     a.userReply(a.conv.EnterScores),
	})
	reg.RegisterCommand("/view_scores", commands.Command{
		Description: "View your scores",
		Order:       3,
		Handler: func(c tele.Context) error {
			return send(c, a.conv.ViewScores(tghelpers.BuildContext(c), c.Sender().ID))
		},
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Description: "Cancel the current action",
		Order:       4,
		Handler:     a.userReply(a.conv.Cancel),
	})
	reg.RegisterCommand("/sessions", commands.Command{
		Description: "Session statistics",
		AdminOnly:   true,
		Handler: func(c tele.Context) error {
			return send(c, a.conv.Stats())
		},
	})
	reg.SetTextFallback(func(c tele.Context) error {
		return send(c, a.conv.HandleText(tghelpers.BuildContext(c), c.Sender().ID, c.Text()))
	})
	return reg
}

// InProgress reports whether free text from userID belongs to the dialog.
func (a *App) InProgress(userID int64) bool {
	return a.conv.InProgress(userID)
}

// ManagerHandler feeds the message text to the dialog.
func (a *App) ManagerHandler(c tele.Context) error {
	return send(c, a.conv.HandleText(tghelpers.BuildContext(c), c.Sender().ID, c.Text()))
}

func (a *App) userReply(fn func(userID int64) Reply) tele.HandlerFunc {
	return func(c tele.Context) error {
		return send(c, fn(c.Sender().ID))
	}
}

func (a *App) text(msg string) tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendText(c, msg)
	}
}

func send(c tele.Context, r Reply) error {
	return tghelpers.SendWithMarkup(c, r.Text, Markup(r.Keyboard))
}

// Markup renders k as a Telegram reply markup; nil keeps the current one.
func Markup(k Keyboard) *tele.ReplyMarkup {
	switch k {
	case KeyboardMain:
		return keyboard.ReplyButtons(
			[]string{"/register", "/enter_scores"},
			[]string{"/view_scores"},
		)
	case KeyboardSubjects:
		rows := keyboard.OnePerRow(domain.Subjects...)
		return keyboard.ReplyButtons(append(rows, []string{"/cancel"})...)
	case KeyboardCancel:
		return keyboard.ReplyButtons([]string{"/cancel"})
	case KeyboardRemove:
		return keyboard.RemoveKeyboard()
	default:
		return nil
	}
}
