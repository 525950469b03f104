package telegram

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/examscores/scorebot/core/logger"
	"github.com/examscores/scorebot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

// Registry maps slash commands to their definitions and keeps the
// handler for free text no command claims.
type Registry struct {
	commands     map[string]commands.Command
	aliases      map[string]string
	textFallback tele.HandlerFunc
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]commands.Command),
		aliases:  make(map[string]string),
	}
}

// commandName reduces "/cmd@bot args" or "cmd" to "/cmd".
func commandName(text string) string {
	name, _, _ := strings.Cut(strings.TrimSpace(text), " ")
	name, _, _ = strings.Cut(name, "@")
	if name == "" {
		return ""
	}
	if name[0] != '/' {
		name = "/" + name
	}
	return name
}

// RegisterCommand adds cmd under name. Invalid and duplicate entries are logged and dropped.
func (r *Registry) RegisterCommand(name string, cmd commands.Command) {
	reason := ""
	switch {
	case cmd.Handler == nil || cmd.Description == "":
		reason = "invalid"
	case !strings.HasPrefix(name, "/") || len(name) < 2:
		reason = "no_slash_prefix"
	default:
		if _, taken := r.commands[name]; taken {
			reason = "duplicate"
		} else if _, taken := r.aliases[name]; taken {
			reason = "duplicate"
		}
	}
	if reason != "" {
		logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register.command.skip",
			slog.String("name", name),
			slog.String("reason", reason),
		)
		return
	}
	r.commands[name] = cmd
	for _, alias := range cmd.Aliases {
		if a := commandName(alias); a != "" && a != name {
			r.aliases[a] = name
		}
	}
}

// ListCommands returns the commands sorted by Order, then name.
// With visibleOnly, hidden and admin-only commands are left out.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	names := make([]string, 0, len(r.commands))
	for name, cmd := range r.commands {
		if visibleOnly && (cmd.Hidden || cmd.AdminOnly) {
			continue
		}
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		return cmp.Or(cmp.Compare(r.commands[a].Order, r.commands[b].Order), strings.Compare(a, b))
	})
	out := make([]tele.Command, 0, len(names))
	for _, name := range names {
		out = append(out, tele.Command{Text: name, Description: r.commands[name].Description})
	}
	return out
}

// LookupCommand resolves text, including an alias or a trailing @botname, to a registered command.
func (r *Registry) LookupCommand(text string) (string, commands.Command, bool) {
	name := commandName(text)
	if canonical, ok := r.aliases[name]; ok {
		name = canonical
	}
	cmd, ok := r.commands[name]
	if !ok {
		return "", commands.Command{}, false
	}
	return name, cmd, true
}

// Commands returns the registered commands keyed by name.
func (r *Registry) Commands() map[string]commands.Command {
	return r.commands
}

// SetTextFallback sets the handler for text no command or dialog consumes.
func (r *Registry) SetTextFallback(h tele.HandlerFunc) {
	r.textFallback = h
}

// TextFallback returns the handler set by SetTextFallback.
func (r *Registry) TextFallback() tele.HandlerFunc {
	return r.textFallback
}

// CommandSetter publishes the command menu; *tele.Bot satisfies it.
type CommandSetter interface {
	SetCommands(opts ...interface{}) error
}

// InitBotCommands publishes the visible commands. A failure is logged, not returned.
func InitBotCommands(bot CommandSetter, reg *Registry) {
	list := reg.ListCommands(true)
	if err := bot.SetCommands(list); err != nil {
		logger.TWire.LogAttrs(context.Background(), slog.LevelError, "register.commands.set_failed",
			slog.String("err", err.Error()),
		)
		return
	}
	logger.TWire.LogAttrs(context.Background(), slog.LevelInfo, "register.commands.set",
		slog.Int("commands", len(list)),
	)
}
