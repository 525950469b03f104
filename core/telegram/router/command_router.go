// Package router turns a Registry into telebot routes.
package router

import (
	"log/slog"
	"sort"

	"github.com/examscores/scorebot/core/logger"
	tg "github.com/examscores/scorebot/core/telegram"
	"github.com/examscores/scorebot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures CommandRoutes.
type CommandRouteOptions struct {
	AdminID       int64
	OnAdminReject tele.HandlerFunc
}

// CommandRoutes returns one route per registered command; admin-only
// commands are guarded by AdminOnlyMiddleware.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}
	guard := middleware.AdminOnlyMiddleware(middleware.AdminOptions{
		AdminID:  opts.AdminID,
		OnReject: opts.OnAdminReject,
	})

	names := make([]string, 0, len(reg.Commands()))
	for name := range reg.Commands() {
		names = append(names, name)
	}
	sort.Strings(names)

	routes := make([]tg.Route, 0, len(names))
	admin := 0
	for _, name := range names {
		def := reg.Commands()[name]
		label, inner := handlerName(name), def.Handler
		h := func(c tele.Context) error { return handled(c, label, inner) }
		if def.AdminOnly {
			h = guard(h)
			admin++
		}
		routes = append(routes, tg.Route{Endpoint: name, Handler: h})
	}

	logger.TWire.Info("commands wired",
		slog.String("event", "wire.commands"),
		slog.Int("commands", len(routes)),
		slog.Int("admin", admin),
	)
	return routes
}
